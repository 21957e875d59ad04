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
// CashbackStore implementation — temp_codes, cashback_balances,
// movimentacoes
// ============================================================

func (c *Client) CreateTempCode(ctx context.Context, code *domain.TempCode) (*domain.TempCode, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTempCode")
	defer span.End()

	row := map[string]any{
		"code":       code.Code,
		"loja_id":    code.LojaID,
		"user_id":    code.UserID,
		"used":       false,
		"expires_at": code.ExpiresAt.UTC().Format(time.RFC3339),
	}
	body, err := c.doPost(ctx, "temp_codes", row)
	if err != nil {
		if isDuplicate(err) {
			return nil, &domain.ErrConflict{Message: "código já emitido"}
		}
		return nil, err
	}

	var results []domain.TempCode
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode temp_codes insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from temp_codes insert")
	}
	return &results[0], nil
}

func (c *Client) GetTempCode(ctx context.Context, code, lojaID string) (*domain.TempCode, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTempCode")
	defer span.End()

	path := fmt.Sprintf("temp_codes?code=eq.%s&loja_id=eq.%s&limit=1",
		url.QueryEscape(code), url.QueryEscape(lojaID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.TempCode
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode temp_codes: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "temp_code", ID: code}
	}
	return &rows[0], nil
}

// MarkTempCodeUsed flips the used flag with a guard on used=false. The
// PATCH asks PostgREST to return the updated rows: an empty result means
// another confirmation already consumed the code, and the caller gets
// ErrNotFound instead of a silent no-op.
func (c *Client) MarkTempCodeUsed(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.MarkTempCodeUsed")
	defer span.End()

	path := fmt.Sprintf("temp_codes?id=eq.%s&used=eq.false", url.QueryEscape(id))
	body, err := c.doPatchReturning(ctx, path, map[string]any{"used": true})
	if err != nil {
		return err
	}

	var rows []domain.TempCode
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode temp_codes update: %w", err)
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Resource: "temp_code", ID: id}
	}
	return nil
}

// --- Balances ---

func (c *Client) GetBalance(ctx context.Context, userID, lojaID string) (*domain.CashbackBalance, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBalance")
	defer span.End()

	path := fmt.Sprintf("cashback_balances?user_id=eq.%s&loja_id=eq.%s&limit=1",
		url.QueryEscape(userID), url.QueryEscape(lojaID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.CashbackBalance
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode cashback_balances: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "cashback_balance", ID: userID}
	}
	return &rows[0], nil
}

func (c *Client) ListBalances(ctx context.Context, userID string) ([]domain.CashbackBalance, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBalances")
	defer span.End()

	path := fmt.Sprintf("cashback_balances?user_id=eq.%s&order=updated_at.desc", url.QueryEscape(userID))
	return c.listBalances(ctx, path)
}

func (c *Client) ListBalancesByLoja(ctx context.Context, lojaID string) ([]domain.CashbackBalance, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBalancesByLoja")
	defer span.End()

	path := fmt.Sprintf("cashback_balances?loja_id=eq.%s&order=valor_cashback.desc", url.QueryEscape(lojaID))
	return c.listBalances(ctx, path)
}

func (c *Client) listBalances(ctx context.Context, path string) ([]domain.CashbackBalance, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.CashbackBalance
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode cashback_balances list: %w", err)
	}
	return rows, nil
}

// UpsertBalance increments the (user, loja) balance through the
// upsert_cashback_balance database function, which inserts the row on
// first credit and adds delta in place afterwards. The increment runs
// inside the database, so concurrent confirmations never lose credits.
func (c *Client) UpsertBalance(ctx context.Context, userID, lojaID string, delta float64) (*domain.CashbackBalance, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertBalance")
	defer span.End()

	args := map[string]any{
		"p_user_id": userID,
		"p_loja_id": lojaID,
		"p_delta":   delta,
	}
	body, err := c.doPost(ctx, "rpc/upsert_cashback_balance", args)
	if err != nil {
		return nil, err
	}

	var results []domain.CashbackBalance
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode upsert_cashback_balance: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from upsert_cashback_balance")
	}
	return &results[0], nil
}

// --- Movimentações ---

func (c *Client) AppendMovimentacao(ctx context.Context, mov *domain.Movimentacao) error {
	ctx, span := tracer.Start(ctx, "Supabase.AppendMovimentacao")
	defer span.End()

	row := map[string]any{
		"data":                    mov.Data.UTC().Format(time.RFC3339),
		"user_id":                 mov.UserID,
		"loja_id":                 mov.LojaID,
		"valor_total_compra":      mov.ValorTotalCompra,
		"valor_recebido_cashback": mov.ValorRecebidoCashback,
	}
	_, err := c.doPost(ctx, "movimentacoes", row)
	return err
}

func (c *Client) ListMovimentacoes(ctx context.Context, lojaID string, page, pageSize int) ([]domain.Movimentacao, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMovimentacoes")
	defer span.End()

	offset := (page - 1) * pageSize
	path := fmt.Sprintf("movimentacoes?loja_id=eq.%s&order=data.desc&limit=%d&offset=%d",
		url.QueryEscape(lojaID), pageSize, offset)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Movimentacao
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode movimentacoes: %w", err)
	}
	return rows, nil
}
