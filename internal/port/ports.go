// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// AccountStore covers account (users table) operations shared by auth,
// merchant and admin flows.
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByCPF(ctx context.Context, cpf string) (*domain.Account, error)
	GetAccountByCNPJ(ctx context.Context, cnpj string) (*domain.Account, error)

	// CreateAccount inserts a users row. Duplicate cpf/cnpj/email hit the
	// storage-level unique indexes and surface as *domain.ErrConflict.
	CreateAccount(ctx context.Context, acc *domain.Account, passwordHash string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id string, updates map[string]any) error
	DeleteAccount(ctx context.Context, id string) error

	ListConsumers(ctx context.Context) ([]domain.Account, error)
	ListMerchants(ctx context.Context) ([]domain.Account, error)
}

// AuthStore covers credentials and refresh tokens.
type AuthStore interface {
	GetCredential(ctx context.Context, userID string) (*domain.Credential, error)
	UpdateCredential(ctx context.Context, userID string, updates map[string]any) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// CashbackStore covers redemption codes, balances and the audit trail.
type CashbackStore interface {
	CreateTempCode(ctx context.Context, code *domain.TempCode) (*domain.TempCode, error)
	GetTempCode(ctx context.Context, code, lojaID string) (*domain.TempCode, error)
	// MarkTempCodeUsed consumes an unused code. It returns ErrNotFound
	// when the code was already consumed, so only one caller wins.
	MarkTempCodeUsed(ctx context.Context, id string) error

	GetBalance(ctx context.Context, userID, lojaID string) (*domain.CashbackBalance, error)
	ListBalances(ctx context.Context, userID string) ([]domain.CashbackBalance, error)
	ListBalancesByLoja(ctx context.Context, lojaID string) ([]domain.CashbackBalance, error)
	// UpsertBalance creates the (user, loja) row or increments its value
	// in place — row-scoped, no whole-array rewrite.
	UpsertBalance(ctx context.Context, userID, lojaID string, delta float64) (*domain.CashbackBalance, error)

	AppendMovimentacao(ctx context.Context, mov *domain.Movimentacao) error
	ListMovimentacoes(ctx context.Context, lojaID string, page, pageSize int) ([]domain.Movimentacao, error)
}

// CouponStore covers the cupons table.
type CouponStore interface {
	CreateCoupon(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error)
	GetCouponByCode(ctx context.Context, codigo string) (*domain.Coupon, error)
	ListCouponsByLoja(ctx context.Context, lojaID string) ([]domain.Coupon, error)
	DeleteCoupon(ctx context.Context, id string) error
	// RedeemCoupon records a consumer on lista_usuarios atomically,
	// enforcing the usage cap and once-per-consumer in the store. It
	// returns ErrConflict on reuse and ErrCouponExhausted at the cap.
	RedeemCoupon(ctx context.Context, id, userID string) (*domain.Coupon, error)
}

// OfferStore covers the ofertas table.
type OfferStore interface {
	CreateOffer(ctx context.Context, o *domain.Offer) (*domain.Offer, error)
	ListOffersByLoja(ctx context.Context, lojaID string) ([]domain.Offer, error)
	DeleteOffer(ctx context.Context, lojaID, offerID string) error
}

// RuleStore covers the business_rules table.
type RuleStore interface {
	ListRules(ctx context.Context, lojaID string) ([]domain.BusinessRule, error)
	CreateRule(ctx context.Context, r *domain.BusinessRule) (*domain.BusinessRule, error)
	UpdateRule(ctx context.Context, lojaID, ruleID string, updates map[string]any) error
	DeleteRule(ctx context.Context, lojaID, ruleID string) error
}

// AllowlistStore covers the allowed_cpfs table.
type AllowlistStore interface {
	ListAllowedCPFs(ctx context.Context, lojaID string) ([]domain.AllowedCPF, error)
	AddAllowedCPF(ctx context.Context, lojaID, cpf string) (*domain.AllowedCPF, error)
	RemoveAllowedCPF(ctx context.Context, lojaID, cpf string) error
}

// CategoryStore covers the category taxonomy.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error)
	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	CreateSubcategory(ctx context.Context, s *domain.Subcategory) (*domain.Subcategory, error)
}

// AddressLookup wraps the public address APIs (ViaCEP, IBGE).
type AddressLookup interface {
	LookupCEP(ctx context.Context, cep string) (*domain.Address, error)
	ListEstados(ctx context.Context) ([]domain.Estado, error)
	ListCidades(ctx context.Context, uf string) ([]domain.Cidade, error)
}

// ObjectStorage uploads assets (logos, product images) and returns a
// publicly retrievable URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error)
}
