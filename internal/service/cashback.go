package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var cashbackTracer = otel.Tracer("service/cashback")

const tempCodeLength = 6

// CashbackService runs the redemption flow: the consumer shows a code,
// the merchant verifies it and confirms the purchase, and the consumer's
// per-loja balance is credited.
type CashbackService struct {
	store    port.CashbackStore
	accounts port.AccountStore
	codeTTL  time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCashbackService creates a new cashback service.
func NewCashbackService(store port.CashbackStore, accounts port.AccountStore, codeTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *CashbackService {
	return &CashbackService{
		store:    store,
		accounts: accounts,
		codeTTL:  codeTTL,
		metrics:  metrics,
		logger:   logger,
	}
}

// ============================================================
// IssueCode — POST /v1/lojas/{lojaId}/cashback/codes
// ============================================================

// IssueCode creates a short-lived numeric code binding the consumer to
// the loja. The consumer reads it to the cashier.
func (s *CashbackService) IssueCode(ctx context.Context, userID, lojaID string) (*domain.IssueCodeResponse, error) {
	ctx, span := cashbackTracer.Start(ctx, "CashbackService.IssueCode")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	loja, err := s.accounts.GetAccount(ctx, lojaID)
	if err != nil {
		return nil, err
	}
	if !loja.IsMerchant() {
		return nil, &domain.ErrValidation{Field: "lojaId", Message: "Conta não é uma loja"}
	}

	code, err := generateNumericCode(tempCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	created, err := s.store.CreateTempCode(ctx, &domain.TempCode{
		Code:      code,
		LojaID:    lojaID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.codeTTL),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("redemption code issued",
		zap.String("loja_id", lojaID),
		zap.String("user_id", userID),
	)

	return &domain.IssueCodeResponse{
		Code:      created.Code,
		ExpiresAt: created.ExpiresAt,
	}, nil
}

// ============================================================
// VerifyCode — POST /v1/lojas/{lojaId}/cashback/verify
// ============================================================

// VerifyCode checks a code typed by the cashier and, when valid,
// surfaces the consumer and the loja's default percentage so the form
// can preview the credit. Used, expired and unknown codes all answer
// the same way.
func (s *CashbackService) VerifyCode(ctx context.Context, lojaID string, req *domain.VerifyCodeRequest) (*domain.VerifyCodeResponse, error) {
	ctx, span := cashbackTracer.Start(ctx, "CashbackService.VerifyCode")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	tc, err := s.lookupActiveCode(ctx, req.Code, lojaID)
	if err != nil {
		s.metrics.IncrRedemption("invalid")
		return nil, err
	}

	consumer, err := s.accounts.GetAccount(ctx, tc.UserID)
	if err != nil {
		return nil, err
	}
	loja, err := s.accounts.GetAccount(ctx, lojaID)
	if err != nil {
		return nil, err
	}

	return &domain.VerifyCodeResponse{
		Valid:          true,
		UserID:         consumer.ID,
		NomeCompleto:   consumer.NomeCompleto,
		CashbackPadrao: loja.CashbackPadrao,
	}, nil
}

// ============================================================
// Confirm — POST /v1/lojas/{lojaId}/cashback/confirm
// ============================================================

// Confirm consumes the code, credits valor × cashback_padrao / 100 to
// the consumer's balance at this loja and appends the audit row.
func (s *CashbackService) Confirm(ctx context.Context, lojaID string, req *domain.ConfirmCashbackRequest) (*domain.ConfirmCashbackResponse, error) {
	ctx, span := cashbackTracer.Start(ctx, "CashbackService.Confirm")
	defer span.End()
	span.SetAttributes(attribute.String("loja.id", lojaID))

	if req.ValorTotalCompra <= 0 {
		return nil, &domain.ErrValidation{Field: "valorTotalCompra", Message: "Valor da compra deve ser maior que zero"}
	}

	tc, err := s.lookupActiveCode(ctx, req.Code, lojaID)
	if err != nil {
		s.metrics.IncrRedemption("invalid")
		return nil, err
	}

	loja, err := s.accounts.GetAccount(ctx, lojaID)
	if err != nil {
		return nil, err
	}

	// Burn the code before crediting so a concurrent confirmation of
	// the same code cannot double-credit.
	if err := s.store.MarkTempCodeUsed(ctx, tc.ID); err != nil {
		s.metrics.IncrRedemption("invalid")
		return nil, &domain.ErrInvalidCode{}
	}

	valor := roundCentavos(req.ValorTotalCompra * loja.CashbackPadrao / 100)

	balance, err := s.store.UpsertBalance(ctx, tc.UserID, lojaID, valor)
	if err != nil {
		return nil, err
	}

	mov := &domain.Movimentacao{
		Data:                  time.Now(),
		UserID:                tc.UserID,
		LojaID:                lojaID,
		ValorTotalCompra:      req.ValorTotalCompra,
		ValorRecebidoCashback: valor,
	}
	if err := s.store.AppendMovimentacao(ctx, mov); err != nil {
		// The credit already happened; losing the audit row is worth a
		// loud log but not a failed confirmation.
		s.logger.Error("failed to append movimentacao",
			zap.String("loja_id", lojaID),
			zap.String("user_id", tc.UserID),
			zap.Error(err),
		)
	}

	s.metrics.IncrRedemption("confirmed")
	s.metrics.AddCashbackGranted(valor)

	s.logger.Info("cashback confirmed",
		zap.String("loja_id", lojaID),
		zap.String("user_id", tc.UserID),
		zap.String("valor_compra", format.BRL(req.ValorTotalCompra)),
		zap.String("valor_cashback", format.BRL(valor)),
	)

	return &domain.ConfirmCashbackResponse{
		UserID:        tc.UserID,
		ValorCashback: valor,
		NovoSaldo:     balance.ValorCashback,
	}, nil
}

// ============================================================
// Balances and history
// ============================================================

func (s *CashbackService) ListBalances(ctx context.Context, userID string) ([]domain.CashbackBalance, error) {
	ctx, span := cashbackTracer.Start(ctx, "CashbackService.ListBalances")
	defer span.End()

	return s.store.ListBalances(ctx, userID)
}

func (s *CashbackService) ListMovimentacoes(ctx context.Context, lojaID string, page, pageSize int) ([]domain.Movimentacao, error) {
	ctx, span := cashbackTracer.Start(ctx, "CashbackService.ListMovimentacoes")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.store.ListMovimentacoes(ctx, lojaID, page, pageSize)
}

// ============================================================
// Internal helpers
// ============================================================

// lookupActiveCode answers ErrInvalidCode for unknown, used and expired
// codes alike so the cashier UI cannot distinguish them.
func (s *CashbackService) lookupActiveCode(ctx context.Context, code, lojaID string) (*domain.TempCode, error) {
	tc, err := s.store.GetTempCode(ctx, code, lojaID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrInvalidCode{}
		}
		return nil, err
	}
	if tc.Used || tc.Expired(time.Now()) {
		return nil, &domain.ErrInvalidCode{}
	}
	return tc, nil
}

func generateNumericCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += fmt.Sprintf("%d", n.Int64())
	}
	return code, nil
}

func roundCentavos(v float64) float64 {
	return math.Round(v*100) / 100
}
