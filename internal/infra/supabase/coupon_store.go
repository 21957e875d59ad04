package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// ============================================================
// CouponStore implementation — cupons table via PostgREST
// ============================================================

func (c *Client) CreateCoupon(ctx context.Context, cp *domain.Coupon) (*domain.Coupon, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCoupon")
	defer span.End()

	row := map[string]any{
		"codigo":          cp.Codigo,
		"titulo":          cp.Titulo,
		"descricao":       cp.Descricao,
		"desconto":        cp.Desconto,
		"limite_usuarios": cp.LimiteUsuarios,
		"lista_usuarios":  []string{},
		"data_inicio":     cp.DataInicio.UTC().Format(time.RFC3339),
		"data_validade":   cp.DataValidade.UTC().Format(time.RFC3339),
		"loja_id":         cp.LojaID,
		"nome_loja":       cp.NomeLoja,
	}
	body, err := c.doPost(ctx, "cupons", row)
	if err != nil {
		if isDuplicate(err) {
			return nil, &domain.ErrConflict{Message: "código já existe"}
		}
		return nil, err
	}

	var results []domain.Coupon
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode cupons insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from cupons insert")
	}
	return &results[0], nil
}

func (c *Client) GetCouponByCode(ctx context.Context, codigo string) (*domain.Coupon, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCouponByCode")
	defer span.End()

	path := fmt.Sprintf("cupons?codigo=eq.%s&limit=1", url.QueryEscape(codigo))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Coupon
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode cupons: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "cupom", ID: codigo}
	}
	return &rows[0], nil
}

func (c *Client) ListCouponsByLoja(ctx context.Context, lojaID string) ([]domain.Coupon, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCouponsByLoja")
	defer span.End()

	path := fmt.Sprintf("cupons?loja_id=eq.%s&order=created_at.desc", url.QueryEscape(lojaID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Coupon
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode cupons list: %w", err)
	}
	return rows, nil
}

func (c *Client) DeleteCoupon(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCoupon")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("cupons?id=eq.%s", url.QueryEscape(id)))
}

// RedeemCoupon appends the consumer to lista_usuarios through the
// redeem_coupon database function. The function re-checks the usage cap
// and once-per-consumer rule under a row lock, so two concurrent
// redemptions can never both land. It raises coupon_already_redeemed or
// coupon_exhausted when the checks fail.
func (c *Client) RedeemCoupon(ctx context.Context, id, userID string) (*domain.Coupon, error) {
	ctx, span := tracer.Start(ctx, "Supabase.RedeemCoupon")
	defer span.End()

	args := map[string]any{
		"p_coupon_id": id,
		"p_user_id":   userID,
	}
	body, err := c.doPost(ctx, "rpc/redeem_coupon", args)
	if err != nil {
		var re *requestError
		if errors.As(err, &re) {
			if strings.Contains(re.Body, "coupon_already_redeemed") || isDuplicate(err) {
				return nil, &domain.ErrConflict{Message: "Cupom já utilizado por este usuário"}
			}
			if strings.Contains(re.Body, "coupon_exhausted") {
				return nil, &domain.ErrCouponExhausted{Code: id}
			}
		}
		return nil, err
	}

	var results []domain.Coupon
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode redeem_coupon: %w", err)
	}
	if len(results) == 0 {
		return nil, &domain.ErrNotFound{Resource: "cupom", ID: id}
	}
	return &results[0], nil
}
