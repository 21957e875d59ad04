package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// ============================================================
// AccountStore implementation — users table via PostgREST
// ============================================================

func (c *Client) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccount")
	defer span.End()

	path := fmt.Sprintf("users?id=eq.%s&limit=1", url.QueryEscape(id))
	return c.getOneAccount(ctx, path, id)
}

func (c *Client) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccountByEmail")
	defer span.End()

	path := fmt.Sprintf("users?email=eq.%s&limit=1", url.QueryEscape(email))
	return c.getOneAccount(ctx, path, email)
}

func (c *Client) GetAccountByCPF(ctx context.Context, cpf string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccountByCPF")
	defer span.End()

	path := fmt.Sprintf("users?cpf=eq.%s&limit=1", url.QueryEscape(cpf))
	return c.getOneAccount(ctx, path, cpf)
}

func (c *Client) GetAccountByCNPJ(ctx context.Context, cnpj string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccountByCNPJ")
	defer span.End()

	path := fmt.Sprintf("users?cnpj=eq.%s&limit=1", url.QueryEscape(cnpj))
	return c.getOneAccount(ctx, path, cnpj)
}

func (c *Client) getOneAccount(ctx context.Context, path, id string) (*domain.Account, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Account
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "account", ID: id}
	}
	return &rows[0], nil
}

// CreateAccount inserts the users row and its auth_credentials row.
// The unique indexes on cpf, cnpj and email reject duplicates at the
// storage level; those surface as *domain.ErrConflict.
func (c *Client) CreateAccount(ctx context.Context, acc *domain.Account, passwordHash string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAccount")
	defer span.End()

	row := map[string]any{
		"nome_completo": acc.NomeCompleto,
		"email":         acc.Email,
		"telefone":      acc.Telefone,
		"is_cnpj":       acc.IsCnpj,
		"is_admin":      acc.IsAdmin,
	}
	if acc.CPF != "" {
		row["cpf"] = acc.CPF
	}
	if acc.CNPJ != "" {
		row["cnpj"] = acc.CNPJ
		row["nome_estabelecimento"] = acc.NomeEstabelecimento
		row["cashback_padrao"] = acc.CashbackPadrao
		row["categoria"] = acc.Categoria
		row["subcategoria"] = acc.Subcategoria
		row["logo_url"] = acc.LogoURL
	}

	body, err := c.doPost(ctx, "users", row)
	if err != nil {
		if isDuplicate(err) {
			return nil, &domain.ErrConflict{Message: "cpf, cnpj ou email já cadastrado"}
		}
		return nil, err
	}

	var results []domain.Account
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode users insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from users insert")
	}
	created := &results[0]

	cred := map[string]any{
		"user_id":       created.ID,
		"password_hash": passwordHash,
	}
	if _, err := c.doPost(ctx, "auth_credentials", cred); err != nil {
		// Roll the orphan users row back so the identifiers stay free.
		_ = c.doDelete(ctx, fmt.Sprintf("users?id=eq.%s", created.ID))
		return nil, err
	}

	return created, nil
}

func (c *Client) UpdateAccount(ctx context.Context, id string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAccount")
	defer span.End()

	err := c.doPatch(ctx, fmt.Sprintf("users?id=eq.%s", url.QueryEscape(id)), updates)
	if err != nil && isDuplicate(err) {
		return &domain.ErrConflict{Message: "email já cadastrado"}
	}
	return err
}

// DeleteAccount removes the users row and its dependent rows. Child
// tables go first so a failed delete leaves no dangling references.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAccount")
	defer span.End()

	id = url.QueryEscape(id)
	children := []string{
		fmt.Sprintf("auth_refresh_tokens?user_id=eq.%s", id),
		fmt.Sprintf("auth_credentials?user_id=eq.%s", id),
		fmt.Sprintf("cashback_balances?user_id=eq.%s", id),
		fmt.Sprintf("cashback_balances?loja_id=eq.%s", id),
		fmt.Sprintf("business_rules?loja_id=eq.%s", id),
		fmt.Sprintf("allowed_cpfs?loja_id=eq.%s", id),
		fmt.Sprintf("temp_codes?user_id=eq.%s", id),
		fmt.Sprintf("temp_codes?loja_id=eq.%s", id),
		fmt.Sprintf("cupons?loja_id=eq.%s", id),
		fmt.Sprintf("ofertas?loja_id=eq.%s", id),
	}
	for _, path := range children {
		if err := c.doDelete(ctx, path); err != nil {
			return err
		}
	}
	return c.doDelete(ctx, fmt.Sprintf("users?id=eq.%s", id))
}

func (c *Client) ListConsumers(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListConsumers")
	defer span.End()

	return c.listAccounts(ctx, "users?is_cnpj=eq.false&is_admin=eq.false&order=nome_completo.asc")
}

func (c *Client) ListMerchants(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMerchants")
	defer span.End()

	return c.listAccounts(ctx, "users?is_cnpj=eq.true&order=nome_estabelecimento.asc")
}

func (c *Client) listAccounts(ctx context.Context, path string) ([]domain.Account, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Account
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode users list: %w", err)
	}
	return rows, nil
}

// ============================================================
// AuthStore implementation — auth_credentials + auth_refresh_tokens
// ============================================================

func (c *Client) GetCredential(ctx context.Context, userID string) (*domain.Credential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredential")
	defer span.End()

	path := fmt.Sprintf("auth_credentials?user_id=eq.%s&limit=1", url.QueryEscape(userID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Credential
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_credentials: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "credential", ID: userID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateCredential(ctx context.Context, userID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCredential")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("auth_credentials?user_id=eq.%s", url.QueryEscape(userID)), updates)
}

func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	row := map[string]any{
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"revoked":    false,
	}
	_, err := c.doPost(ctx, "auth_refresh_tokens", row)
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", url.QueryEscape(tokenHash))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.AuthRefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: "(redacted)"}
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s", url.QueryEscape(tokenHash))
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?user_id=eq.%s&revoked=eq.false", url.QueryEscape(userID))
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}
