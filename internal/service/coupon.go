package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var couponTracer = otel.Tracer("service/coupon")

const couponCodeLength = 4

// CouponService issues merchant coupons and redeems them for consumers,
// enforcing the validity window, the usage cap and one-use-per-consumer.
type CouponService struct {
	store    port.CouponStore
	accounts port.AccountStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(store port.CouponStore, accounts port.AccountStore, metrics *observability.Metrics, logger *zap.Logger) *CouponService {
	return &CouponService{store: store, accounts: accounts, metrics: metrics, logger: logger}
}

// ============================================================
// Create — POST /v1/admin/lojas/{lojaId}/cupons
// ============================================================

func (s *CouponService) Create(ctx context.Context, lojaID string, req *domain.CreateCouponRequest) (*domain.Coupon, error) {
	ctx, span := couponTracer.Start(ctx, "CouponService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	if req.Titulo == "" {
		return nil, &domain.ErrValidation{Field: "titulo", Message: "Título é obrigatório"}
	}
	if req.Desconto <= 0 || req.Desconto > 100 {
		return nil, &domain.ErrValidation{Field: "desconto", Message: "Desconto deve estar entre 0 e 100"}
	}
	if req.LimiteUsuarios <= 0 {
		return nil, &domain.ErrValidation{Field: "limiteUsuarios", Message: "Limite de usuários deve ser maior que zero"}
	}

	inicio, err := parseDate(req.DataInicio)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "dataInicio", Message: "Data inválida"}
	}
	validade, err := parseDate(req.DataValidade)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "dataValidade", Message: "Data inválida"}
	}
	if !validade.After(inicio) {
		return nil, &domain.ErrValidation{Field: "dataValidade", Message: "Validade deve ser posterior ao início"}
	}

	loja, err := s.accounts.GetAccount(ctx, lojaID)
	if err != nil {
		return nil, err
	}
	if !loja.IsMerchant() {
		return nil, &domain.ErrValidation{Field: "lojaId", Message: "Conta não é uma loja"}
	}

	coupon := &domain.Coupon{
		Codigo:         newCouponCode(),
		Titulo:         req.Titulo,
		Descricao:      req.Descricao,
		Desconto:       req.Desconto,
		LimiteUsuarios: req.LimiteUsuarios,
		DataInicio:     inicio,
		DataValidade:   validade,
		LojaID:         lojaID,
		NomeLoja:       loja.NomeEstabelecimento,
	}

	created, err := s.store.CreateCoupon(ctx, coupon)
	if err != nil {
		// A duplicate 4-char code is rare but possible; retry once with
		// a fresh code before giving up.
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			coupon.Codigo = newCouponCode()
			created, err = s.store.CreateCoupon(ctx, coupon)
		}
		if err != nil {
			return nil, err
		}
	}

	s.metrics.IncrCouponIssued()
	s.logger.Info("coupon created",
		zap.String("loja_id", lojaID),
		zap.String("codigo", created.Codigo),
	)

	return created, nil
}

// ============================================================
// Redeem — POST /v1/cupons/{codigo}/redeem
// ============================================================

// Redeem applies a coupon for the consumer. Each consumer may use each
// coupon once; the cap counts distinct consumers.
func (s *CouponService) Redeem(ctx context.Context, userID, codigo string) (*domain.RedeemCouponResponse, error) {
	ctx, span := couponTracer.Start(ctx, "CouponService.Redeem")
	defer span.End()
	span.SetAttributes(attribute.String("coupon.codigo", codigo))

	coupon, err := s.store.GetCouponByCode(ctx, strings.ToUpper(strings.TrimSpace(codigo)))
	if err != nil {
		s.metrics.IncrCouponRedemption("not_found")
		return nil, err
	}

	now := time.Now()
	if now.Before(coupon.DataInicio) || now.After(coupon.DataValidade) {
		s.metrics.IncrCouponRedemption("expired")
		return nil, &domain.ErrCouponExpired{Code: coupon.Codigo}
	}

	// Fast checks on the snapshot; the store re-checks both rules
	// atomically, so a stale read here cannot over-admit.
	for _, u := range coupon.ListaUsuarios {
		if u == userID {
			s.metrics.IncrCouponRedemption("already_used")
			return nil, &domain.ErrConflict{Message: "Cupom já utilizado por este usuário"}
		}
	}

	if len(coupon.ListaUsuarios) >= coupon.LimiteUsuarios {
		s.metrics.IncrCouponRedemption("exhausted")
		return nil, &domain.ErrCouponExhausted{Code: coupon.Codigo}
	}

	if _, err := s.store.RedeemCoupon(ctx, coupon.ID, userID); err != nil {
		var conflict *domain.ErrConflict
		var exhausted *domain.ErrCouponExhausted
		switch {
		case errors.As(err, &conflict):
			s.metrics.IncrCouponRedemption("already_used")
			return nil, err
		case errors.As(err, &exhausted):
			s.metrics.IncrCouponRedemption("exhausted")
			return nil, &domain.ErrCouponExhausted{Code: coupon.Codigo}
		}
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}

	s.metrics.IncrCouponRedemption("redeemed")
	s.logger.Info("coupon redeemed",
		zap.String("codigo", coupon.Codigo),
		zap.String("user_id", userID),
	)

	return &domain.RedeemCouponResponse{
		Codigo:   coupon.Codigo,
		Desconto: coupon.Desconto,
	}, nil
}

// ============================================================
// Listing and removal
// ============================================================

func (s *CouponService) ListByLoja(ctx context.Context, lojaID string) ([]domain.Coupon, error) {
	ctx, span := couponTracer.Start(ctx, "CouponService.ListByLoja")
	defer span.End()

	return s.store.ListCouponsByLoja(ctx, lojaID)
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	ctx, span := couponTracer.Start(ctx, "CouponService.Delete")
	defer span.End()

	return s.store.DeleteCoupon(ctx, id)
}

// ============================================================
// Internal helpers
// ============================================================

// newCouponCode derives a short shareable code from a UUID.
func newCouponCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:couponCodeLength])
}

// parseDate accepts date-only and RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
