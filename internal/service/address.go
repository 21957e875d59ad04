package service

import (
	"context"
	"strings"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var addressTracer = otel.Tracer("service/address")

// AddressService fronts the public address APIs with caching: the IBGE
// reference lists are effectively static and CEPs rarely change.
type AddressService struct {
	lookup  port.AddressLookup
	ceps    port.Cache[*domain.Address]
	estados port.Cache[[]domain.Estado]
	cidades port.Cache[[]domain.Cidade]
	metrics *observability.Metrics
}

// NewAddressService creates a new address service.
func NewAddressService(lookup port.AddressLookup, ceps port.Cache[*domain.Address], estados port.Cache[[]domain.Estado], cidades port.Cache[[]domain.Cidade], metrics *observability.Metrics) *AddressService {
	return &AddressService{
		lookup:  lookup,
		ceps:    ceps,
		estados: estados,
		cidades: cidades,
		metrics: metrics,
	}
}

func (s *AddressService) LookupCEP(ctx context.Context, cep string) (*domain.Address, error) {
	ctx, span := addressTracer.Start(ctx, "AddressService.LookupCEP")
	defer span.End()
	span.SetAttributes(attribute.String("address.cep", cep))

	key := format.Digits(cep)
	if cached, ok := s.ceps.Get(key); ok {
		s.metrics.IncrCacheHit("cep")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("cep")

	addr, err := s.lookup.LookupCEP(ctx, cep)
	if err != nil {
		return nil, err
	}
	s.ceps.Set(key, addr)
	return addr, nil
}

func (s *AddressService) ListEstados(ctx context.Context) ([]domain.Estado, error) {
	ctx, span := addressTracer.Start(ctx, "AddressService.ListEstados")
	defer span.End()

	if cached, ok := s.estados.Get("all"); ok {
		s.metrics.IncrCacheHit("estados")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("estados")

	rows, err := s.lookup.ListEstados(ctx)
	if err != nil {
		return nil, err
	}
	s.estados.Set("all", rows)
	return rows, nil
}

func (s *AddressService) ListCidades(ctx context.Context, uf string) ([]domain.Cidade, error) {
	ctx, span := addressTracer.Start(ctx, "AddressService.ListCidades")
	defer span.End()

	uf = strings.ToUpper(strings.TrimSpace(uf))
	if len(uf) != 2 {
		return nil, &domain.ErrValidation{Field: "uf", Message: "UF inválida"}
	}

	if cached, ok := s.cidades.Get(uf); ok {
		s.metrics.IncrCacheHit("cidades")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("cidades")

	rows, err := s.lookup.ListCidades(ctx, uf)
	if err != nil {
		return nil, err
	}
	s.cidades.Set(uf, rows)
	return rows, nil
}
