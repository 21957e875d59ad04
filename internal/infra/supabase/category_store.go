package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pixinxa/cashback-api/internal/domain"
)

// ============================================================
// CategoryStore implementation — categories + subcategories
// ============================================================

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	body, err := c.doGet(ctx, "categories?order=name.asc")
	if err != nil {
		return nil, err
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return rows, nil
}

func (c *Client) ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSubcategories")
	defer span.End()

	path := fmt.Sprintf("subcategories?category_id=eq.%s&order=name.asc", url.QueryEscape(categoryID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	return rows, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	row := map[string]any{
		"name":      cat.Name,
		"image_url": cat.ImageURL,
		"icon":      cat.Icon,
	}
	body, err := c.doPost(ctx, "categories", row)
	if err != nil {
		if isDuplicate(err) {
			return nil, &domain.ErrConflict{Message: "categoria já existe"}
		}
		return nil, err
	}

	var results []domain.Category
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode categories insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from categories insert")
	}
	return &results[0], nil
}

func (c *Client) CreateSubcategory(ctx context.Context, sub *domain.Subcategory) (*domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSubcategory")
	defer span.End()

	row := map[string]any{
		"category_id": sub.CategoryID,
		"name":        sub.Name,
		"image_url":   sub.ImageURL,
	}
	body, err := c.doPost(ctx, "subcategories", row)
	if err != nil {
		if isDuplicate(err) {
			return nil, &domain.ErrConflict{Message: "subcategoria já existe"}
		}
		return nil, err
	}

	var results []domain.Subcategory
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode subcategories insert: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result returned from subcategories insert")
	}
	return &results[0], nil
}
