package service

import (
	"context"
	"io"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"
	"github.com/pixinxa/cashback-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var merchantTracer = otel.Tracer("service/merchant")

// MerchantService covers the loja self-service surface: profile,
// dashboard stats and the pre-authorized CPF list.
type MerchantService struct {
	accounts  port.AccountStore
	cashback  port.CashbackStore
	offers    port.OfferStore
	allowlist port.AllowlistStore
	storage   port.ObjectStorage
	logger    *zap.Logger
}

// NewMerchantService creates a new merchant service.
func NewMerchantService(accounts port.AccountStore, cashback port.CashbackStore, offers port.OfferStore, allowlist port.AllowlistStore, storage port.ObjectStorage, logger *zap.Logger) *MerchantService {
	return &MerchantService{
		accounts:  accounts,
		cashback:  cashback,
		offers:    offers,
		allowlist: allowlist,
		storage:   storage,
		logger:    logger,
	}
}

// ============================================================
// Storefront — GET /v1/lojas
// ============================================================

// ListLojas feeds the consumer home screen.
func (s *MerchantService) ListLojas(ctx context.Context) ([]domain.Account, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.ListLojas")
	defer span.End()

	return s.accounts.ListMerchants(ctx)
}

// ============================================================
// Profile — GET/PATCH /v1/lojas/{lojaId}
// ============================================================

func (s *MerchantService) GetProfile(ctx context.Context, lojaID string) (*domain.Account, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.GetProfile")
	defer span.End()

	acc, err := s.accounts.GetAccount(ctx, lojaID)
	if err != nil {
		return nil, err
	}
	if !acc.IsMerchant() {
		return nil, &domain.ErrNotFound{Resource: "loja", ID: lojaID}
	}
	return acc, nil
}

// UpdateProfile patches only the fields present in the request, so a
// profile-modal save cannot clobber fields edited elsewhere.
func (s *MerchantService) UpdateProfile(ctx context.Context, lojaID string, req *domain.UpdateMerchantRequest) (*domain.Account, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	updates := map[string]any{}
	if req.NomeCompleto != "" {
		updates["nome_completo"] = req.NomeCompleto
	}
	if req.NomeEstabelecimento != "" {
		updates["nome_estabelecimento"] = req.NomeEstabelecimento
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Telefone != "" {
		updates["telefone"] = format.Digits(req.Telefone)
	}
	if req.CashbackPadrao != nil {
		if *req.CashbackPadrao < 0 || *req.CashbackPadrao > 100 {
			return nil, &domain.ErrValidation{Field: "cashbackPadrao", Message: "Percentual deve estar entre 0 e 100"}
		}
		updates["cashback_padrao"] = *req.CashbackPadrao
	}
	if req.LogoURL != "" {
		updates["logo_url"] = req.LogoURL
	}
	if req.Rua != "" {
		updates["rua"] = req.Rua
	}
	if req.Numero != "" {
		updates["numero"] = req.Numero
	}
	if req.Bairro != "" {
		updates["bairro"] = req.Bairro
	}
	if req.Cidade != "" {
		updates["cidade"] = req.Cidade
	}
	if req.Estado != "" {
		updates["estado"] = req.Estado
	}
	if req.Complemento != "" {
		updates["complemento"] = req.Complemento
	}
	if req.CEP != "" {
		updates["cep"] = format.Digits(req.CEP)
	}
	if req.Categoria != "" {
		updates["categoria"] = req.Categoria
	}
	if req.Subcategoria != "" {
		updates["subcategoria"] = req.Subcategoria
	}

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}

	if err := s.accounts.UpdateAccount(ctx, lojaID, updates); err != nil {
		return nil, err
	}

	s.logger.Info("loja profile updated",
		zap.String("loja_id", lojaID),
		zap.Int("fields", len(updates)),
	)

	return s.accounts.GetAccount(ctx, lojaID)
}

// UploadLogo stores the logo and points the profile at the new URL.
func (s *MerchantService) UploadLogo(ctx context.Context, lojaID, contentType string, body io.Reader) (string, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.UploadLogo")
	defer span.End()

	url, err := s.storage.Upload(ctx, "logos/"+lojaID, contentType, body)
	if err != nil {
		return "", err
	}
	if err := s.accounts.UpdateAccount(ctx, lojaID, map[string]any{"logo_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// ============================================================
// Dashboard stats — GET /v1/lojas/{lojaId}/stats
// ============================================================

func (s *MerchantService) Stats(ctx context.Context, lojaID string) (*domain.MerchantStats, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.Stats")
	defer span.End()

	offers, err := s.offers.ListOffersByLoja(ctx, lojaID)
	if err != nil {
		return nil, err
	}

	balances, err := s.cashback.ListBalancesByLoja(ctx, lojaID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, b := range balances {
		total += b.ValorCashback
	}

	return &domain.MerchantStats{
		TotalProdutos:       len(offers),
		TotalClientes:       len(balances),
		TotalCashbackGerado: total,
	}, nil
}

// ============================================================
// Allowed CPFs — /v1/lojas/{lojaId}/cpfs
// ============================================================

func (s *MerchantService) ListAllowedCPFs(ctx context.Context, lojaID string) ([]domain.AllowedCPF, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.ListAllowedCPFs")
	defer span.End()

	return s.allowlist.ListAllowedCPFs(ctx, lojaID)
}

func (s *MerchantService) AddAllowedCPF(ctx context.Context, lojaID, cpf string) (*domain.AllowedCPF, error) {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.AddAllowedCPF")
	defer span.End()

	digits := format.Digits(cpf)
	if !format.ValidCPF(digits) {
		return nil, &domain.ErrValidation{Field: "cpf", Message: "CPF inválido"}
	}
	return s.allowlist.AddAllowedCPF(ctx, lojaID, digits)
}

func (s *MerchantService) RemoveAllowedCPF(ctx context.Context, lojaID, cpf string) error {
	ctx, span := merchantTracer.Start(ctx, "MerchantService.RemoveAllowedCPF")
	defer span.End()

	return s.allowlist.RemoveAllowedCPF(ctx, lojaID, format.Digits(cpf))
}
