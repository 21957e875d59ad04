package service

import (
	"context"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"
	"github.com/pixinxa/cashback-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

var adminTracer = otel.Tracer("service/admin")

// AdminService backs the admin panel: account listings, manual account
// creation, deletion and the dashboard/map aggregates.
type AdminService struct {
	accounts        port.AccountStore
	cashback        port.CashbackStore
	defaultPassword string
	logger          *zap.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(accounts port.AccountStore, cashback port.CashbackStore, defaultPassword string, logger *zap.Logger) *AdminService {
	return &AdminService{
		accounts:        accounts,
		cashback:        cashback,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

// ============================================================
// Listings — GET /v1/admin/usuarios, GET /v1/admin/lojas
// ============================================================

// ListConsumers returns consumers with display-masked documents.
func (s *AdminService) ListConsumers(ctx context.Context) ([]domain.Account, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListConsumers")
	defer span.End()

	rows, err := s.accounts.ListConsumers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CPF = format.CPF(rows[i].CPF)
		rows[i].Telefone = format.Phone(rows[i].Telefone)
	}
	return rows, nil
}

// ListMerchants returns lojas with display-masked documents.
func (s *AdminService) ListMerchants(ctx context.Context) ([]domain.Account, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListMerchants")
	defer span.End()

	rows, err := s.accounts.ListMerchants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CNPJ = format.CNPJ(rows[i].CNPJ)
		rows[i].Telefone = format.Phone(rows[i].Telefone)
	}
	return rows, nil
}

// ============================================================
// Account creation — admin panel + merchant quick-register
// ============================================================

// CreateConsumer registers a consumer with the shared starter password;
// the consumer changes it on first login.
func (s *AdminService) CreateConsumer(ctx context.Context, req *domain.CreateConsumerRequest) (*domain.Account, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateConsumer")
	defer span.End()

	cpf := format.Digits(req.CPF)
	if !format.ValidCPF(cpf) {
		return nil, &domain.ErrValidation{Field: "cpf", Message: "CPF inválido"}
	}
	if req.NomeCompleto == "" || req.Email == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nome e email são obrigatórios"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), bcryptCost)
	if err != nil {
		return nil, err
	}

	acc := &domain.Account{
		NomeCompleto: req.NomeCompleto,
		Email:        req.Email,
		Telefone:     format.Digits(req.Telefone),
		CPF:          cpf,
		IsCnpj:       false,
	}

	created, err := s.accounts.CreateAccount(ctx, acc, string(hash))
	if err != nil {
		return nil, err
	}

	s.logger.Info("consumer created", zap.String("user_id", created.ID))
	return created, nil
}

// CreateMerchant registers a loja from the admin panel, also with the
// starter password.
func (s *AdminService) CreateMerchant(ctx context.Context, req *domain.CreateMerchantRequest) (*domain.Account, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateMerchant")
	defer span.End()

	cnpj := format.Digits(req.CNPJ)
	if !format.ValidCNPJ(cnpj) {
		return nil, &domain.ErrValidation{Field: "cnpj", Message: "CNPJ inválido"}
	}
	if req.NomeCompleto == "" || req.Email == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nome e email são obrigatórios"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), bcryptCost)
	if err != nil {
		return nil, err
	}

	acc := &domain.Account{
		NomeCompleto:        req.NomeCompleto,
		NomeEstabelecimento: req.NomeCompleto,
		Email:               req.Email,
		Telefone:            format.Digits(req.Telefone),
		CNPJ:                cnpj,
		IsCnpj:              true,
		Categoria:           req.Categoria,
		Subcategoria:        req.Subcategoria,
		LogoURL:             req.LogoURL,
	}

	created, err := s.accounts.CreateAccount(ctx, acc, string(hash))
	if err != nil {
		return nil, err
	}

	s.logger.Info("merchant created",
		zap.String("loja_id", created.ID),
		zap.String("cnpj", cnpj),
	)
	return created, nil
}

// DeleteAccount removes an account and its dependent rows.
func (s *AdminService) DeleteAccount(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteAccount")
	defer span.End()

	// Make sure it exists so deletion of an unknown ID answers 404.
	if _, err := s.accounts.GetAccount(ctx, id); err != nil {
		return err
	}

	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("account_id", id))
	return nil
}

// ============================================================
// Aggregates — GET /v1/admin/stats, GET /v1/admin/geo
// ============================================================

// Stats runs the consumer and merchant aggregations concurrently.
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Stats")
	defer span.End()

	var (
		consumers []domain.Account
		merchants []domain.Account
		total     float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		consumers, err = s.accounts.ListConsumers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		merchants, err = s.accounts.ListMerchants(gctx)
		if err != nil {
			return err
		}
		for _, loja := range merchants {
			balances, err := s.cashback.ListBalancesByLoja(gctx, loja.ID)
			if err != nil {
				return err
			}
			for _, b := range balances {
				total += b.ValorCashback
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.AdminStats{
		TotalUsuarios:      len(consumers),
		TotalLojas:         len(merchants),
		TotalCashbackGeral: total,
	}, nil
}

// GeoDistribution aggregates merchant counts per estado and cidade for
// the map page. Estado and cidade filter the returned merchant list but
// not the counts.
func (s *AdminService) GeoDistribution(ctx context.Context, estado, cidade string) (*domain.GeoDistribution, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.GeoDistribution")
	defer span.End()

	merchants, err := s.accounts.ListMerchants(ctx)
	if err != nil {
		return nil, err
	}

	dist := &domain.GeoDistribution{
		PorEstado: map[string]int{},
		PorCidade: map[string]int{},
		Lojas:     []domain.GeoStore{},
	}

	for _, m := range merchants {
		if m.Estado != "" {
			dist.PorEstado[m.Estado]++
		}
		if m.Cidade != "" {
			dist.PorCidade[m.Cidade]++
		}

		if estado != "" && m.Estado != estado {
			continue
		}
		if cidade != "" && m.Cidade != cidade {
			continue
		}
		dist.Lojas = append(dist.Lojas, domain.GeoStore{
			NomeEstabelecimento: m.NomeEstabelecimento,
			Cidade:              m.Cidade,
			Estado:              m.Estado,
			CNPJ:                format.CNPJ(m.CNPJ),
		})
	}

	return dist, nil
}
