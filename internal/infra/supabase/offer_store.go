package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// ============================================================
// OfferStore implementation — ofertas table via PostgREST
// ============================================================

func (c *Client) CreateOffer(ctx context.Context, o *domain.Offer) (*domain.Offer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateOffer")
	defer span.End()

	row := map[string]any{
		"loja_id":       o.LojaID,
		"titulo":        o.Titulo,
		"descricao":     o.Descricao,
		"preco_inicial": o.PrecoInicial,
		"preco_final":   o.PrecoFinal,
		"imagem_url":    o.ImagemURL,
	}
	body, err := c.doPost(ctx, "ofertas", row)
	if err != nil {
		return nil, err
	}

	var results []domain.Offer
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode ofertas insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from ofertas insert")
	}
	return &results[0], nil
}

func (c *Client) ListOffersByLoja(ctx context.Context, lojaID string) ([]domain.Offer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListOffersByLoja")
	defer span.End()

	path := fmt.Sprintf("ofertas?loja_id=eq.%s&order=created_at.desc", url.QueryEscape(lojaID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Offer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode ofertas list: %w", err)
	}
	return rows, nil
}

// DeleteOffer is scoped by loja_id so a merchant cannot delete another
// loja's offer by guessing IDs.
func (c *Client) DeleteOffer(ctx context.Context, lojaID, offerID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteOffer")
	defer span.End()

	path := fmt.Sprintf("ofertas?id=eq.%s&loja_id=eq.%s",
		url.QueryEscape(offerID), url.QueryEscape(lojaID))
	return c.doDelete(ctx, path)
}
