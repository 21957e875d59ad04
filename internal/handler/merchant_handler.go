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

const maxUploadBytes = 5 << 20

// ============================================================
// Lojas — /v1/lojas
// ============================================================

func listLojasHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas")
		defer span.End()

		rows, err := svc.ListLojas(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func getLojaHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}")
		defer span.End()

		lojaID := chi.URLParam(r, "lojaId")
		span.SetAttributes(attribute.String("loja.id", lojaID))

		acc, err := svc.GetProfile(ctx, lojaID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, acc)
	}
}

func updateLojaHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/lojas/{lojaId}")
		defer span.End()

		var req domain.UpdateMerchantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		acc, err := svc.UpdateProfile(ctx, chi.URLParam(r, "lojaId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, acc)
	}
}

// uploadLogoHandler receives the raw image body; the content type header
// names the format.
func uploadLogoHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/logo")
		defer span.End()

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			writeError(w, http.StatusBadRequest, "Content-Type is required")
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
		url, err := svc.UploadLogo(ctx, chi.URLParam(r, "lojaId"), contentType, body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"logoUrl": url})
	}
}

func merchantStatsHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}/stats")
		defer span.End()

		stats, err := svc.Stats(ctx, chi.URLParam(r, "lojaId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// ============================================================
// Allowed CPFs — /v1/lojas/{lojaId}/cpfs
// ============================================================

func listAllowedCPFsHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}/cpfs")
		defer span.End()

		rows, err := svc.ListAllowedCPFs(ctx, chi.URLParam(r, "lojaId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func addAllowedCPFHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/cpfs")
		defer span.End()

		var req struct {
			CPF string `json:"cpf"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CPF == "" {
			writeError(w, http.StatusBadRequest, "cpf is required")
			return
		}

		created, err := svc.AddAllowedCPF(ctx, chi.URLParam(r, "lojaId"), req.CPF)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func removeAllowedCPFHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/lojas/{lojaId}/cpfs/{cpf}")
		defer span.End()

		if err := svc.RemoveAllowedCPF(ctx, chi.URLParam(r, "lojaId"), chi.URLParam(r, "cpf")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
