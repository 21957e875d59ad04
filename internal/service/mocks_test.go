package service_test

// In-memory fakes for the storage and lookup ports. Each test wires
// only the fields it needs; the zero value behaves like an empty store.

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// --- AccountStore ---

type mockAccountStore struct {
	accounts  []*domain.Account
	hashes    map[string]string
	updates   map[string]map[string]any
	createErr error
	listErr   error
	deleted   []string
	nextID    int
}

func (m *mockAccountStore) add(acc *domain.Account) *domain.Account {
	m.accounts = append(m.accounts, acc)
	return acc
}

func (m *mockAccountStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: id}
}

func (m *mockAccountStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: email}
}

func (m *mockAccountStore) GetAccountByCPF(_ context.Context, cpf string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.CPF == cpf {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: cpf}
}

func (m *mockAccountStore) GetAccountByCNPJ(_ context.Context, cnpj string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.CNPJ == cnpj {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: cnpj}
}

func (m *mockAccountStore) CreateAccount(_ context.Context, acc *domain.Account, passwordHash string) (*domain.Account, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	created := *acc
	created.ID = fmt.Sprintf("acc-%d", m.nextID)
	created.CreatedAt = time.Now()
	m.accounts = append(m.accounts, &created)
	if m.hashes == nil {
		m.hashes = map[string]string{}
	}
	m.hashes[created.ID] = passwordHash
	return &created, nil
}

func (m *mockAccountStore) UpdateAccount(_ context.Context, id string, updates map[string]any) error {
	if m.updates == nil {
		m.updates = map[string]map[string]any{}
	}
	m.updates[id] = updates
	return nil
}

func (m *mockAccountStore) DeleteAccount(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAccountStore) ListConsumers(_ context.Context) ([]domain.Account, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Account
	for _, a := range m.accounts {
		if !a.IsCnpj && !a.IsAdmin {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAccountStore) ListMerchants(_ context.Context) ([]domain.Account, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Account
	for _, a := range m.accounts {
		if a.IsCnpj {
			out = append(out, *a)
		}
	}
	return out, nil
}

// --- AuthStore ---

type mockAuthStore struct {
	creds       map[string]*domain.Credential
	credUpdates []map[string]any
	tokens      map[string]*domain.AuthRefreshToken
	revokedAll  []string
	storeErr    error
}

func (m *mockAuthStore) GetCredential(_ context.Context, userID string) (*domain.Credential, error) {
	if c, ok := m.creds[userID]; ok {
		return c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "credential", ID: userID}
}

func (m *mockAuthStore) UpdateCredential(_ context.Context, userID string, updates map[string]any) error {
	m.credUpdates = append(m.credUpdates, updates)
	return nil
}

func (m *mockAuthStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.tokens == nil {
		m.tokens = map[string]*domain.AuthRefreshToken{}
	}
	m.tokens[tokenHash] = &domain.AuthRefreshToken{
		ID:        fmt.Sprintf("rt-%d", len(m.tokens)+1),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (m *mockAuthStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	if t, ok := m.tokens[tokenHash]; ok && !t.Revoked {
		return t, nil
	}
	return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: tokenHash}
}

func (m *mockAuthStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *mockAuthStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

// --- CashbackStore ---

type mockCashbackStore struct {
	codes       []*domain.TempCode
	markUsedErr error
	markedUsed  []string
	balances    map[string]*domain.CashbackBalance
	movs        []domain.Movimentacao
	movErr      error
	nextID      int
}

func (m *mockCashbackStore) CreateTempCode(_ context.Context, code *domain.TempCode) (*domain.TempCode, error) {
	m.nextID++
	created := *code
	created.ID = fmt.Sprintf("tc-%d", m.nextID)
	created.CreatedAt = time.Now()
	m.codes = append(m.codes, &created)
	return &created, nil
}

func (m *mockCashbackStore) GetTempCode(_ context.Context, code, lojaID string) (*domain.TempCode, error) {
	for _, tc := range m.codes {
		if tc.Code == code && tc.LojaID == lojaID {
			return tc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "temp_code", ID: code}
}

func (m *mockCashbackStore) MarkTempCodeUsed(_ context.Context, id string) error {
	if m.markUsedErr != nil {
		return m.markUsedErr
	}
	for _, tc := range m.codes {
		if tc.ID == id && !tc.Used {
			tc.Used = true
			m.markedUsed = append(m.markedUsed, id)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "temp_code", ID: id}
}

func (m *mockCashbackStore) GetBalance(_ context.Context, userID, lojaID string) (*domain.CashbackBalance, error) {
	if b, ok := m.balances[userID+"|"+lojaID]; ok {
		return b, nil
	}
	return nil, &domain.ErrNotFound{Resource: "balance", ID: userID}
}

func (m *mockCashbackStore) ListBalances(_ context.Context, userID string) ([]domain.CashbackBalance, error) {
	var out []domain.CashbackBalance
	for _, b := range m.balances {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockCashbackStore) ListBalancesByLoja(_ context.Context, lojaID string) ([]domain.CashbackBalance, error) {
	var out []domain.CashbackBalance
	for _, b := range m.balances {
		if b.LojaID == lojaID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockCashbackStore) UpsertBalance(_ context.Context, userID, lojaID string, delta float64) (*domain.CashbackBalance, error) {
	if m.balances == nil {
		m.balances = map[string]*domain.CashbackBalance{}
	}
	key := userID + "|" + lojaID
	b, ok := m.balances[key]
	if !ok {
		b = &domain.CashbackBalance{
			ID:     "bal-" + key,
			UserID: userID,
			LojaID: lojaID,
		}
		m.balances[key] = b
	}
	b.ValorCashback += delta
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (m *mockCashbackStore) AppendMovimentacao(_ context.Context, mov *domain.Movimentacao) error {
	if m.movErr != nil {
		return m.movErr
	}
	m.movs = append(m.movs, *mov)
	return nil
}

func (m *mockCashbackStore) ListMovimentacoes(_ context.Context, lojaID string, page, pageSize int) ([]domain.Movimentacao, error) {
	var out []domain.Movimentacao
	for _, mv := range m.movs {
		if mv.LojaID == lojaID {
			out = append(out, mv)
		}
	}
	return out, nil
}

// --- CouponStore ---

type mockCouponStore struct {
	mu            sync.Mutex
	coupons       []*domain.Coupon
	conflictFirst bool
	createCalls   int
	deleted       []string
	nextID        int
}

func (m *mockCouponStore) CreateCoupon(_ context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	m.createCalls++
	if m.conflictFirst && m.createCalls == 1 {
		return nil, &domain.ErrConflict{Message: "código já existe"}
	}
	m.nextID++
	created := *c
	created.ID = fmt.Sprintf("cp-%d", m.nextID)
	if created.ListaUsuarios == nil {
		created.ListaUsuarios = []string{}
	}
	m.coupons = append(m.coupons, &created)
	return &created, nil
}

// GetCouponByCode returns a copy, like a row read does. Mutating the
// copy does not change the stored coupon.
func (m *mockCouponStore) GetCouponByCode(_ context.Context, codigo string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.Codigo == codigo {
			copied := *c
			copied.ListaUsuarios = append([]string(nil), c.ListaUsuarios...)
			return &copied, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "cupom", ID: codigo}
}

func (m *mockCouponStore) ListCouponsByLoja(_ context.Context, lojaID string) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, c := range m.coupons {
		if c.LojaID == lojaID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCouponStore) DeleteCoupon(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCouponStore) RedeemCoupon(_ context.Context, id, userID string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
		copied := *c
		copied.ListaUsuarios = append([]string(nil), c.ListaUsuarios...)
		return &copied, nil
	}
	return nil, &domain.ErrNotFound{Resource: "cupom", ID: id}
}

// --- RuleStore ---

type mockRuleStore struct {
	rules     []domain.BusinessRule
	createErr error
	updates   map[string]map[string]any
	deleted   []string
	nextID    int
}

func (m *mockRuleStore) ListRules(_ context.Context, lojaID string) ([]domain.BusinessRule, error) {
	var out []domain.BusinessRule
	for _, r := range m.rules {
		if r.LojaID == lojaID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleStore) CreateRule(_ context.Context, r *domain.BusinessRule) (*domain.BusinessRule, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	created := *r
	created.ID = fmt.Sprintf("rule-%d", m.nextID)
	m.rules = append(m.rules, created)
	return &created, nil
}

func (m *mockRuleStore) UpdateRule(_ context.Context, lojaID, ruleID string, updates map[string]any) error {
	if m.updates == nil {
		m.updates = map[string]map[string]any{}
	}
	m.updates[ruleID] = updates
	return nil
}

func (m *mockRuleStore) DeleteRule(_ context.Context, lojaID, ruleID string) error {
	m.deleted = append(m.deleted, ruleID)
	return nil
}

// --- OfferStore ---

type mockOfferStore struct {
	offers  []domain.Offer
	deleted []string
	nextID  int
}

func (m *mockOfferStore) CreateOffer(_ context.Context, o *domain.Offer) (*domain.Offer, error) {
	m.nextID++
	created := *o
	created.ID = fmt.Sprintf("of-%d", m.nextID)
	m.offers = append(m.offers, created)
	return &created, nil
}

func (m *mockOfferStore) ListOffersByLoja(_ context.Context, lojaID string) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range m.offers {
		if o.LojaID == lojaID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOfferStore) DeleteOffer(_ context.Context, lojaID, offerID string) error {
	m.deleted = append(m.deleted, offerID)
	return nil
}

// --- AllowlistStore ---

type mockAllowlistStore struct {
	cpfs    []domain.AllowedCPF
	removed []string
}

func (m *mockAllowlistStore) ListAllowedCPFs(_ context.Context, lojaID string) ([]domain.AllowedCPF, error) {
	var out []domain.AllowedCPF
	for _, c := range m.cpfs {
		if c.LojaID == lojaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockAllowlistStore) AddAllowedCPF(_ context.Context, lojaID, cpf string) (*domain.AllowedCPF, error) {
	row := domain.AllowedCPF{
		ID:     fmt.Sprintf("cpf-%d", len(m.cpfs)+1),
		LojaID: lojaID,
		CPF:    cpf,
	}
	m.cpfs = append(m.cpfs, row)
	return &row, nil
}

func (m *mockAllowlistStore) RemoveAllowedCPF(_ context.Context, lojaID, cpf string) error {
	m.removed = append(m.removed, cpf)
	return nil
}

// --- CategoryStore ---

type mockCategoryStore struct {
	categories []domain.Category
	subs       []domain.Subcategory
	listCalls  int
}

func (m *mockCategoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	m.listCalls++
	return m.categories, nil
}

func (m *mockCategoryStore) ListSubcategories(_ context.Context, categoryID string) ([]domain.Subcategory, error) {
	m.listCalls++
	var out []domain.Subcategory
	for _, s := range m.subs {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockCategoryStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	created := *c
	created.ID = fmt.Sprintf("cat-%d", len(m.categories)+1)
	m.categories = append(m.categories, created)
	return &created, nil
}

func (m *mockCategoryStore) CreateSubcategory(_ context.Context, s *domain.Subcategory) (*domain.Subcategory, error) {
	created := *s
	created.ID = fmt.Sprintf("sub-%d", len(m.subs)+1)
	m.subs = append(m.subs, created)
	return &created, nil
}

// --- AddressLookup ---

type mockAddressLookup struct {
	address *domain.Address
	estados []domain.Estado
	cidades []domain.Cidade
	err     error
	calls   int
}

func (m *mockAddressLookup) LookupCEP(_ context.Context, cep string) (*domain.Address, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.address, nil
}

func (m *mockAddressLookup) ListEstados(_ context.Context) ([]domain.Estado, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.estados, nil
}

func (m *mockAddressLookup) ListCidades(_ context.Context, uf string) ([]domain.Cidade, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.cidades, nil
}

// --- ObjectStorage ---

type mockStorage struct {
	uploads []string
	err     error
}

func (m *mockStorage) Upload(_ context.Context, path, contentType string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads = append(m.uploads, path)
	return "https://cdn.example.com/" + path, nil
}
