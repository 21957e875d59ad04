package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// ============================================================
// RuleStore implementation — business_rules table via PostgREST
// ============================================================

func (c *Client) ListRules(ctx context.Context, lojaID string) ([]domain.BusinessRule, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRules")
	defer span.End()

	path := fmt.Sprintf("business_rules?loja_id=eq.%s&order=position.asc", url.QueryEscape(lojaID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.BusinessRule
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode business_rules: %w", err)
	}
	return rows, nil
}

func (c *Client) CreateRule(ctx context.Context, r *domain.BusinessRule) (*domain.BusinessRule, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRule")
	defer span.End()

	row := map[string]any{
		"loja_id":   r.LojaID,
		"icone":     r.Icone,
		"titulo":    r.Titulo,
		"descricao": r.Descricao,
		"position":  r.Position,
	}
	body, err := c.doPost(ctx, "business_rules", row)
	if err != nil {
		return nil, err
	}

	var results []domain.BusinessRule
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode business_rules insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from business_rules insert")
	}
	return &results[0], nil
}

func (c *Client) UpdateRule(ctx context.Context, lojaID, ruleID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRule")
	defer span.End()

	path := fmt.Sprintf("business_rules?id=eq.%s&loja_id=eq.%s",
		url.QueryEscape(ruleID), url.QueryEscape(lojaID))
	return c.doPatch(ctx, path, updates)
}

func (c *Client) DeleteRule(ctx context.Context, lojaID, ruleID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRule")
	defer span.End()

	path := fmt.Sprintf("business_rules?id=eq.%s&loja_id=eq.%s",
		url.QueryEscape(ruleID), url.QueryEscape(lojaID))
	return c.doDelete(ctx, path)
}

// ============================================================
// AllowlistStore implementation — allowed_cpfs table
// ============================================================

func (c *Client) ListAllowedCPFs(ctx context.Context, lojaID string) ([]domain.AllowedCPF, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllowedCPFs")
	defer span.End()

	path := fmt.Sprintf("allowed_cpfs?loja_id=eq.%s&order=created_at.asc", url.QueryEscape(lojaID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.AllowedCPF
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode allowed_cpfs: %w", err)
	}
	return rows, nil
}

func (c *Client) AddAllowedCPF(ctx context.Context, lojaID, cpf string) (*domain.AllowedCPF, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AddAllowedCPF")
	defer span.End()

	row := map[string]any{
		"loja_id": lojaID,
		"cpf":     cpf,
	}
	body, err := c.doPost(ctx, "allowed_cpfs", row)
	if err != nil {
		if isDuplicate(err) {
			return nil, &domain.ErrConflict{Message: "CPF já autorizado"}
		}
		return nil, err
	}

	var results []domain.AllowedCPF
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode allowed_cpfs insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from allowed_cpfs insert")
	}
	return &results[0], nil
}

func (c *Client) RemoveAllowedCPF(ctx context.Context, lojaID, cpf string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RemoveAllowedCPF")
	defer span.End()

	path := fmt.Sprintf("allowed_cpfs?loja_id=eq.%s&cpf=eq.%s",
		url.QueryEscape(lojaID), url.QueryEscape(cpf))
	return c.doDelete(ctx, path)
}
