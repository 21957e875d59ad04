package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/handler"
	"github.com/pixinxa/cashback-api/internal/infra/cache"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memStore is a single in-memory backend implementing every data port,
// the same shape the PostgREST client has in production.
type memStore struct {
	accounts []*domain.Account
	hashes   map[string]string
	creds    map[string]*domain.Credential
	tokens   map[string]*domain.AuthRefreshToken
	codes    []*domain.TempCode
	balances map[string]*domain.CashbackBalance
	movs     []domain.Movimentacao
	coupons  []*domain.Coupon
	offers   []domain.Offer
	rules    []domain.BusinessRule
	cpfs     []domain.AllowedCPF
	cats     []domain.Category
	subs     []domain.Subcategory
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		hashes:   map[string]string{},
		creds:    map[string]*domain.Credential{},
		tokens:   map[string]*domain.AuthRefreshToken{},
		balances: map[string]*domain.CashbackBalance{},
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// --- AccountStore ---

func (m *memStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: id}
}

func (m *memStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: email}
}

func (m *memStore) GetAccountByCPF(_ context.Context, cpf string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.CPF == cpf {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: cpf}
}

func (m *memStore) GetAccountByCNPJ(_ context.Context, cnpj string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.CNPJ == cnpj {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: cnpj}
}

func (m *memStore) CreateAccount(_ context.Context, acc *domain.Account, passwordHash string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == acc.Email || (acc.CNPJ != "" && a.CNPJ == acc.CNPJ) || (acc.CPF != "" && a.CPF == acc.CPF) {
			return nil, &domain.ErrConflict{Message: "cpf, cnpj ou email já cadastrado"}
		}
	}
	created := *acc
	created.ID = m.id("acc")
	created.CreatedAt = time.Now()
	m.accounts = append(m.accounts, &created)
	m.hashes[created.ID] = passwordHash
	m.creds[created.ID] = &domain.Credential{UserID: created.ID, PasswordHash: passwordHash}
	return &created, nil
}

func (m *memStore) UpdateAccount(_ context.Context, id string, updates map[string]any) error {
	acc, err := m.GetAccount(context.Background(), id)
	if err != nil {
		return err
	}
	if v, ok := updates["nome_estabelecimento"].(string); ok {
		acc.NomeEstabelecimento = v
	}
	if v, ok := updates["logo_url"].(string); ok {
		acc.LogoURL = v
	}
	if v, ok := updates["cashback_padrao"].(float64); ok {
		acc.CashbackPadrao = v
	}
	return nil
}

func (m *memStore) DeleteAccount(_ context.Context, id string) error {
	for i, a := range m.accounts {
		if a.ID == id {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "account", ID: id}
}

func (m *memStore) ListConsumers(_ context.Context) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range m.accounts {
		if !a.IsCnpj && !a.IsAdmin {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) ListMerchants(_ context.Context) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range m.accounts {
		if a.IsCnpj {
			out = append(out, *a)
		}
	}
	return out, nil
}

// --- AuthStore ---

func (m *memStore) GetCredential(_ context.Context, userID string) (*domain.Credential, error) {
	if c, ok := m.creds[userID]; ok {
		return c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "credential", ID: userID}
}

func (m *memStore) UpdateCredential(_ context.Context, userID string, updates map[string]any) error {
	if c, ok := m.creds[userID]; ok {
		if v, ok := updates["failed_attempts"].(int); ok {
			c.FailedAttempts = v
		}
	}
	return nil
}

func (m *memStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &domain.AuthRefreshToken{
		ID: m.id("rt"), UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt,
	}
	return nil
}

func (m *memStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	if t, ok := m.tokens[tokenHash]; ok && !t.Revoked {
		return t, nil
	}
	return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: tokenHash}
}

func (m *memStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *memStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

// --- CashbackStore ---

func (m *memStore) CreateTempCode(_ context.Context, code *domain.TempCode) (*domain.TempCode, error) {
	created := *code
	created.ID = m.id("tc")
	created.CreatedAt = time.Now()
	m.codes = append(m.codes, &created)
	return &created, nil
}

func (m *memStore) GetTempCode(_ context.Context, code, lojaID string) (*domain.TempCode, error) {
	for _, tc := range m.codes {
		if tc.Code == code && tc.LojaID == lojaID {
			return tc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "temp_code", ID: code}
}

func (m *memStore) MarkTempCodeUsed(_ context.Context, id string) error {
	for _, tc := range m.codes {
		if tc.ID == id && !tc.Used {
			tc.Used = true
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "temp_code", ID: id}
}

func (m *memStore) GetBalance(_ context.Context, userID, lojaID string) (*domain.CashbackBalance, error) {
	if b, ok := m.balances[userID+"|"+lojaID]; ok {
		return b, nil
	}
	return nil, &domain.ErrNotFound{Resource: "balance", ID: userID}
}

func (m *memStore) ListBalances(_ context.Context, userID string) ([]domain.CashbackBalance, error) {
	var out []domain.CashbackBalance
	for _, b := range m.balances {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) ListBalancesByLoja(_ context.Context, lojaID string) ([]domain.CashbackBalance, error) {
	var out []domain.CashbackBalance
	for _, b := range m.balances {
		if b.LojaID == lojaID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) UpsertBalance(_ context.Context, userID, lojaID string, delta float64) (*domain.CashbackBalance, error) {
	key := userID + "|" + lojaID
	b, ok := m.balances[key]
	if !ok {
		b = &domain.CashbackBalance{ID: m.id("bal"), UserID: userID, LojaID: lojaID}
		m.balances[key] = b
	}
	b.ValorCashback += delta
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (m *memStore) AppendMovimentacao(_ context.Context, mov *domain.Movimentacao) error {
	m.movs = append(m.movs, *mov)
	return nil
}

func (m *memStore) ListMovimentacoes(_ context.Context, lojaID string, page, pageSize int) ([]domain.Movimentacao, error) {
	var out []domain.Movimentacao
	for _, mv := range m.movs {
		if mv.LojaID == lojaID {
			out = append(out, mv)
		}
	}
	return out, nil
}

// --- CouponStore ---

func (m *memStore) CreateCoupon(_ context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	created := *c
	created.ID = m.id("cp")
	if created.ListaUsuarios == nil {
		created.ListaUsuarios = []string{}
	}
	m.coupons = append(m.coupons, &created)
	return &created, nil
}

func (m *memStore) GetCouponByCode(_ context.Context, codigo string) (*domain.Coupon, error) {
	for _, c := range m.coupons {
		if c.Codigo == codigo {
			return c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "cupom", ID: codigo}
}

func (m *memStore) ListCouponsByLoja(_ context.Context, lojaID string) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, c := range m.coupons {
		if c.LojaID == lojaID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) DeleteCoupon(_ context.Context, id string) error {
	for i, c := range m.coupons {
		if c.ID == id {
			m.coupons = append(m.coupons[:i], m.coupons[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "cupom", ID: id}
}

func (m *memStore) RedeemCoupon(_ context.Context, id, userID string) (*domain.Coupon, error) {
	for _, c := range m.coupons {
		if c.ID != id {
			continue
		}
		for _, u := range c.ListaUsuarios {
			if u == userID {
				return nil, &domain.ErrConflict{Message: "Cupom já utilizado por este usuário"}
			}
		}
		if len(c.ListaUsuarios) >= c.LimiteUsuarios {
			return nil, &domain.ErrCouponExhausted{Code: c.Codigo}
		}
		c.ListaUsuarios = append(c.ListaUsuarios, userID)
		return c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "cupom", ID: id}
}

// --- OfferStore ---

func (m *memStore) CreateOffer(_ context.Context, o *domain.Offer) (*domain.Offer, error) {
	created := *o
	created.ID = m.id("of")
	m.offers = append(m.offers, created)
	return &created, nil
}

func (m *memStore) ListOffersByLoja(_ context.Context, lojaID string) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range m.offers {
		if o.LojaID == lojaID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) DeleteOffer(_ context.Context, lojaID, offerID string) error {
	for i, o := range m.offers {
		if o.ID == offerID && o.LojaID == lojaID {
			m.offers = append(m.offers[:i], m.offers[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "oferta", ID: offerID}
}

// --- RuleStore ---

func (m *memStore) ListRules(_ context.Context, lojaID string) ([]domain.BusinessRule, error) {
	var out []domain.BusinessRule
	for _, r := range m.rules {
		if r.LojaID == lojaID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CreateRule(_ context.Context, r *domain.BusinessRule) (*domain.BusinessRule, error) {
	created := *r
	created.ID = m.id("rule")
	m.rules = append(m.rules, created)
	return &created, nil
}

func (m *memStore) UpdateRule(_ context.Context, lojaID, ruleID string, updates map[string]any) error {
	return nil
}

func (m *memStore) DeleteRule(_ context.Context, lojaID, ruleID string) error {
	for i, r := range m.rules {
		if r.ID == ruleID && r.LojaID == lojaID {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "regra", ID: ruleID}
}

// --- AllowlistStore ---

func (m *memStore) ListAllowedCPFs(_ context.Context, lojaID string) ([]domain.AllowedCPF, error) {
	var out []domain.AllowedCPF
	for _, c := range m.cpfs {
		if c.LojaID == lojaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) AddAllowedCPF(_ context.Context, lojaID, cpf string) (*domain.AllowedCPF, error) {
	row := domain.AllowedCPF{ID: m.id("cpf"), LojaID: lojaID, CPF: cpf}
	m.cpfs = append(m.cpfs, row)
	return &row, nil
}

func (m *memStore) RemoveAllowedCPF(_ context.Context, lojaID, cpf string) error {
	for i, c := range m.cpfs {
		if c.LojaID == lojaID && c.CPF == cpf {
			m.cpfs = append(m.cpfs[:i], m.cpfs[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "cpf", ID: cpf}
}

// --- CategoryStore ---

func (m *memStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	return m.cats, nil
}

func (m *memStore) ListSubcategories(_ context.Context, categoryID string) ([]domain.Subcategory, error) {
	var out []domain.Subcategory
	for _, s := range m.subs {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	created := *c
	created.ID = m.id("cat")
	m.cats = append(m.cats, created)
	return &created, nil
}

func (m *memStore) CreateSubcategory(_ context.Context, s *domain.Subcategory) (*domain.Subcategory, error) {
	created := *s
	created.ID = m.id("sub")
	m.subs = append(m.subs, created)
	return &created, nil
}

// --- AddressLookup / ObjectStorage ---

type stubLookup struct{}

func (stubLookup) LookupCEP(_ context.Context, cep string) (*domain.Address, error) {
	return &domain.Address{CEP: cep, Localidade: "Campinas", UF: "SP"}, nil
}

func (stubLookup) ListEstados(_ context.Context) ([]domain.Estado, error) {
	return []domain.Estado{{ID: 35, Sigla: "SP", Nome: "São Paulo"}}, nil
}

func (stubLookup) ListCidades(_ context.Context, uf string) ([]domain.Cidade, error) {
	return []domain.Cidade{{ID: 3509502, Nome: "Campinas"}}, nil
}

type stubStorage struct{}

func (stubStorage) Upload(_ context.Context, path, contentType string, body io.Reader) (string, error) {
	return "https://cdn.example.com/" + path, nil
}

// --- Test harness ---

func newTestRouter(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	store := newMemStore()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	svcs := handler.Services{
		Auth:     service.NewAuthService(store, store, store, "test-secret", 15*time.Minute, 24*time.Hour, logger),
		Cashback: service.NewCashbackService(store, store, 15*time.Minute, metrics, logger),
		Coupons:  service.NewCouponService(store, store, metrics, logger),
		Merchant: service.NewMerchantService(store, store, store, store, stubStorage{}, logger),
		Offers:   service.NewOfferService(store, stubStorage{}, logger),
		Rules:    service.NewRuleService(store, logger),
		Admin:    service.NewAdminService(store, store, "123456", logger),
		Categories: service.NewCategoryService(store,
			cache.New[[]domain.Category](time.Minute),
			cache.New[[]domain.Subcategory](time.Minute),
			metrics),
		Address: service.NewAddressService(stubLookup{},
			cache.New[*domain.Address](time.Minute),
			cache.New[[]domain.Estado](time.Minute),
			cache.New[[]domain.Cidade](time.Minute),
			metrics),
	}

	return handler.NewRouter(svcs, metrics, []string{"*"}, logger), store
}

func seedAccount(t *testing.T, store *memStore, acc *domain.Account, senha string) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	created, err := store.CreateAccount(context.Background(), acc, string(hash))
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return created
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, identifier, senha string) *domain.LoginResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Identifier: identifier,
		Senha:      senha,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: expected 200, got %d (%s)", identifier, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return &resp
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/lojas", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/lojas", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a bad token, got %d", rec.Code)
	}
}

func TestPublicReferenceRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{
		"/v1/enderecos/cep/13015-904",
		"/v1/enderecos/estados",
		"/v1/enderecos/estados/SP/cidades",
		"/v1/categorias",
	} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d (%s)", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRegisterThenLogin(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		NomeCompleto:        "Maria Silva",
		NomeEstabelecimento: "Padaria da Maria",
		Email:               "maria@padaria.com.br",
		CNPJ:                "12.345.678/0001-99",
		Senha:               "segredo1",
		ConfirmSenha:        "segredo1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	resp := login(t, router, "12345678000199", "segredo1")
	if !resp.IsCnpj {
		t.Error("expected a loja login")
	}
	if len(store.rules) != 4 {
		t.Errorf("expected 4 seeded rules, got %d", len(store.rules))
	}

	// Duplicate registration hits the unique index.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		NomeCompleto:        "Outra Maria",
		NomeEstabelecimento: "Outra Padaria",
		Email:               "maria@padaria.com.br",
		CNPJ:                "12.345.678/0001-99",
		Senha:               "segredo1",
		ConfirmSenha:        "segredo1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate, got %d", rec.Code)
	}
}

func TestLojaOwnerOnly(t *testing.T) {
	router, store := newTestRouter(t)
	loja := seedAccount(t, store, &domain.Account{
		NomeCompleto: "Maria", NomeEstabelecimento: "Padaria",
		Email: "maria@padaria.com.br", CNPJ: "12345678000199", IsCnpj: true,
	}, "segredo1")
	seedAccount(t, store, &domain.Account{
		NomeCompleto: "João", Email: "joao@gmail.com", CPF: "12345678901",
	}, "segredo1")

	lojaToken := login(t, router, "12345678000199", "segredo1").AccessToken
	consumerToken := login(t, router, "12345678901", "segredo1").AccessToken

	body := map[string]string{"nomeEstabelecimento": "Padaria Nova"}

	rec := doJSON(t, router, http.MethodPatch, "/v1/lojas/"+loja.ID, consumerToken, body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a non-owner, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPatch, "/v1/lojas/"+loja.ID, lojaToken, body)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for the owner, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestAdminOnly(t *testing.T) {
	router, store := newTestRouter(t)
	seedAccount(t, store, &domain.Account{
		NomeCompleto: "Admin", Email: "admin@pixinxa.com.br", IsAdmin: true,
	}, "segredo1")
	seedAccount(t, store, &domain.Account{
		NomeCompleto: "João", Email: "joao@gmail.com", CPF: "12345678901",
	}, "segredo1")

	adminToken := login(t, router, "admin@pixinxa.com.br", "segredo1").AccessToken
	consumerToken := login(t, router, "12345678901", "segredo1").AccessToken

	rec := doJSON(t, router, http.MethodGet, "/v1/admin/stats", consumerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a consumer, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/stats", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for the admin, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCashbackRedemptionFlow(t *testing.T) {
	router, store := newTestRouter(t)
	loja := seedAccount(t, store, &domain.Account{
		NomeCompleto: "Maria", NomeEstabelecimento: "Padaria",
		Email: "maria@padaria.com.br", CNPJ: "12345678000199", IsCnpj: true,
		CashbackPadrao: 10,
	}, "segredo1")
	seedAccount(t, store, &domain.Account{
		NomeCompleto: "João", Email: "joao@gmail.com", CPF: "12345678901",
	}, "segredo1")

	lojaToken := login(t, router, "12345678000199", "segredo1").AccessToken
	consumerToken := login(t, router, "12345678901", "segredo1").AccessToken

	// Consumer shows a code at the register.
	rec := doJSON(t, router, http.MethodPost, "/v1/lojas/"+loja.ID+"/cashback/codes", consumerToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue code: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var issued domain.IssueCodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatalf("decode issue response: %v", err)
	}

	// Cashier verifies the code.
	rec = doJSON(t, router, http.MethodPost, "/v1/lojas/"+loja.ID+"/cashback/verify", lojaToken,
		domain.VerifyCodeRequest{Code: issued.Code})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Cashier confirms the purchase.
	rec = doJSON(t, router, http.MethodPost, "/v1/lojas/"+loja.ID+"/cashback/confirm", lojaToken,
		domain.ConfirmCashbackRequest{Code: issued.Code, ValorTotalCompra: 200})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var confirmed domain.ConfirmCashbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("decode confirm response: %v", err)
	}
	if confirmed.ValorCashback != 20 {
		t.Errorf("expected 20 cashback on a 200 purchase at 10%%, got %v", confirmed.ValorCashback)
	}

	// The code is single-use.
	rec = doJSON(t, router, http.MethodPost, "/v1/lojas/"+loja.ID+"/cashback/confirm", lojaToken,
		domain.ConfirmCashbackRequest{Code: issued.Code, ValorTotalCompra: 200})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on replay, got %d", rec.Code)
	}

	// The consumer sees the caixinha.
	rec = doJSON(t, router, http.MethodGet, "/v1/me/caixinhas", consumerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("caixinhas: expected 200, got %d", rec.Code)
	}
	var balances []domain.CashbackBalance
	if err := json.Unmarshal(rec.Body.Bytes(), &balances); err != nil {
		t.Fatalf("decode balances: %v", err)
	}
	if len(balances) != 1 || balances[0].ValorCashback != 20 {
		t.Errorf("expected one caixinha with 20, got %v", balances)
	}
}

func TestCouponFlowOverHTTP(t *testing.T) {
	router, store := newTestRouter(t)
	loja := seedAccount(t, store, &domain.Account{
		NomeCompleto: "Maria", NomeEstabelecimento: "Padaria",
		Email: "maria@padaria.com.br", CNPJ: "12345678000199", IsCnpj: true,
	}, "segredo1")
	seedAccount(t, store, &domain.Account{
		NomeCompleto: "João", Email: "joao@gmail.com", CPF: "12345678901",
	}, "segredo1")

	lojaToken := login(t, router, "12345678000199", "segredo1").AccessToken
	consumerToken := login(t, router, "12345678901", "segredo1").AccessToken

	rec := doJSON(t, router, http.MethodPost, "/v1/lojas/"+loja.ID+"/cupons", lojaToken,
		domain.CreateCouponRequest{
			Titulo:         "Semana do Cliente",
			Desconto:       10,
			LimiteUsuarios: 1,
			DataInicio:     time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
			DataValidade:   time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create coupon: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var coupon domain.Coupon
	if err := json.Unmarshal(rec.Body.Bytes(), &coupon); err != nil {
		t.Fatalf("decode coupon: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/cupons/"+coupon.Codigo+"/redeem", consumerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("redeem: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Second redemption by the same consumer conflicts.
	rec = doJSON(t, router, http.MethodPost, "/v1/cupons/"+coupon.Codigo+"/redeem", consumerToken, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on reuse, got %d", rec.Code)
	}
}
