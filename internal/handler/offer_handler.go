package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Ofertas — /v1/lojas/{lojaId}/ofertas
// ============================================================

func createOfferHandler(svc *service.OfferService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/ofertas")
		defer span.End()

		lojaID := chi.URLParam(r, "lojaId")
		span.SetAttributes(attribute.String("loja.id", lojaID))

		var req domain.CreateOfferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.Create(ctx, lojaID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func listOffersHandler(svc *service.OfferService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}/ofertas")
		defer span.End()

		rows, err := svc.ListByLoja(ctx, chi.URLParam(r, "lojaId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func deleteOfferHandler(svc *service.OfferService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/lojas/{lojaId}/ofertas/{offerId}")
		defer span.End()

		if err := svc.Delete(ctx, chi.URLParam(r, "lojaId"), chi.URLParam(r, "offerId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func uploadOfferImageHandler(svc *service.OfferService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/ofertas/imagens")
		defer span.End()

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			writeError(w, http.StatusBadRequest, "Content-Type is required")
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
		url, err := svc.UploadImage(ctx, chi.URLParam(r, "lojaId"), contentType, body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"imagemUrl": url})
	}
}

// ============================================================
// Regras — /v1/lojas/{lojaId}/regras
// ============================================================

func listRulesHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}/regras")
		defer span.End()

		rows, err := svc.List(ctx, chi.URLParam(r, "lojaId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createRuleHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/regras")
		defer span.End()

		var req domain.BusinessRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.Create(ctx, chi.URLParam(r, "lojaId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateRuleHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/lojas/{lojaId}/regras/{ruleId}")
		defer span.End()

		var req domain.BusinessRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.Update(ctx, chi.URLParam(r, "lojaId"), chi.URLParam(r, "ruleId"), &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Regra atualizada"})
	}
}

func deleteRuleHandler(svc *service.RuleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/lojas/{lojaId}/regras/{ruleId}")
		defer span.End()

		if err := svc.Delete(ctx, chi.URLParam(r, "lojaId"), chi.URLParam(r, "ruleId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
