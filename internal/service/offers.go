package service

import (
	"context"
	"fmt"
	"io"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var offerTracer = otel.Tracer("service/offers")

// OfferService manages the product offers a loja shows to consumers.
type OfferService struct {
	store   port.OfferStore
	storage port.ObjectStorage
	logger  *zap.Logger
}

// NewOfferService creates a new offer service.
func NewOfferService(store port.OfferStore, storage port.ObjectStorage, logger *zap.Logger) *OfferService {
	return &OfferService{store: store, storage: storage, logger: logger}
}

func (s *OfferService) Create(ctx context.Context, lojaID string, req *domain.CreateOfferRequest) (*domain.Offer, error) {
	ctx, span := offerTracer.Start(ctx, "OfferService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	if req.Titulo == "" || req.Descricao == "" || req.ImagemURL == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Preencha todos os campos da oferta"}
	}
	if req.PrecoInicial <= 0 || req.PrecoFinal <= 0 {
		return nil, &domain.ErrValidation{Field: "preco", Message: "Preços devem ser maiores que zero"}
	}
	if req.PrecoFinal > req.PrecoInicial {
		return nil, &domain.ErrValidation{Field: "precoFinal", Message: "Preço final deve ser menor ou igual ao inicial"}
	}

	offer := &domain.Offer{
		LojaID:       lojaID,
		Titulo:       req.Titulo,
		Descricao:    req.Descricao,
		PrecoInicial: req.PrecoInicial,
		PrecoFinal:   req.PrecoFinal,
		ImagemURL:    req.ImagemURL,
	}

	created, err := s.store.CreateOffer(ctx, offer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer created",
		zap.String("loja_id", lojaID),
		zap.String("offer_id", created.ID),
	)
	return created, nil
}

func (s *OfferService) ListByLoja(ctx context.Context, lojaID string) ([]domain.Offer, error) {
	ctx, span := offerTracer.Start(ctx, "OfferService.ListByLoja")
	defer span.End()

	return s.store.ListOffersByLoja(ctx, lojaID)
}

func (s *OfferService) Delete(ctx context.Context, lojaID, offerID string) error {
	ctx, span := offerTracer.Start(ctx, "OfferService.Delete")
	defer span.End()

	return s.store.DeleteOffer(ctx, lojaID, offerID)
}

// UploadImage stores a product image and returns its public URL for the
// subsequent offer creation call.
func (s *OfferService) UploadImage(ctx context.Context, lojaID, contentType string, body io.Reader) (string, error) {
	ctx, span := offerTracer.Start(ctx, "OfferService.UploadImage")
	defer span.End()

	path := fmt.Sprintf("ofertas/%s/%s", lojaID, uuid.New().String())
	return s.storage.Upload(ctx, path, contentType, body)
}
