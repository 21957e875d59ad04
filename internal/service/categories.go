package service

import (
	"context"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/port"

	"go.opentelemetry.io/otel"
)

var categoryTracer = otel.Tracer("service/categories")

// CategoryService serves the merchant taxonomy. The lists change only
// when the seeder runs, so reads go through a TTL cache.
type CategoryService struct {
	store      port.CategoryStore
	categories port.Cache[[]domain.Category]
	subs       port.Cache[[]domain.Subcategory]
	metrics    *observability.Metrics
}

// NewCategoryService creates a new category service.
func NewCategoryService(store port.CategoryStore, categories port.Cache[[]domain.Category], subs port.Cache[[]domain.Subcategory], metrics *observability.Metrics) *CategoryService {
	return &CategoryService{
		store:      store,
		categories: categories,
		subs:       subs,
		metrics:    metrics,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.List")
	defer span.End()

	if cached, ok := s.categories.Get("all"); ok {
		s.metrics.IncrCacheHit("categories")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("categories")

	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.categories.Set("all", rows)
	return rows, nil
}

func (s *CategoryService) ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.ListSubcategories")
	defer span.End()

	if cached, ok := s.subs.Get(categoryID); ok {
		s.metrics.IncrCacheHit("subcategories")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("subcategories")

	rows, err := s.store.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	s.subs.Set(categoryID, rows)
	return rows, nil
}
