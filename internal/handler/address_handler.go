package handler

import (
	"net/http"

	"github.com/pixinxa/cashback-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Endereços — /v1/enderecos
// ============================================================

func cepLookupHandler(svc *service.AddressService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/enderecos/cep/{cep}")
		defer span.End()

		cep := chi.URLParam(r, "cep")
		span.SetAttributes(attribute.String("address.cep", cep))

		addr, err := svc.LookupCEP(ctx, cep)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, addr)
	}
}

func listEstadosHandler(svc *service.AddressService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/enderecos/estados")
		defer span.End()

		rows, err := svc.ListEstados(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func listCidadesHandler(svc *service.AddressService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/enderecos/estados/{uf}/cidades")
		defer span.End()

		rows, err := svc.ListCidades(ctx, chi.URLParam(r, "uf"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

// ============================================================
// Categorias — /v1/categorias
// ============================================================

func listCategoriesHandler(svc *service.CategoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/categorias")
		defer span.End()

		rows, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func listSubcategoriesHandler(svc *service.CategoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/categorias/{categoryId}/subcategorias")
		defer span.End()

		rows, err := svc.ListSubcategories(ctx, chi.URLParam(r, "categoryId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
