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
// Cashback — /v1/lojas/{lojaId}/cashback, /v1/me/caixinhas
// ============================================================

// issueCodeHandler is consumer-facing: the logged-in consumer asks for
// a code to read to the cashier.
func issueCodeHandler(svc *service.CashbackService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/cashback/codes")
		defer span.End()

		lojaID := chi.URLParam(r, "lojaId")
		span.SetAttributes(attribute.String("loja.id", lojaID))

		resp, err := svc.IssueCode(ctx, AccountIDFromContext(ctx), lojaID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func verifyCodeHandler(svc *service.CashbackService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/cashback/verify")
		defer span.End()

		var req domain.VerifyCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		resp, err := svc.VerifyCode(ctx, chi.URLParam(r, "lojaId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func confirmCashbackHandler(svc *service.CashbackService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/cashback/confirm")
		defer span.End()

		var req domain.ConfirmCashbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		resp, err := svc.Confirm(ctx, chi.URLParam(r, "lojaId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// listBalancesHandler returns the logged-in consumer's caixinhas.
func listBalancesHandler(svc *service.CashbackService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me/caixinhas")
		defer span.End()

		rows, err := svc.ListBalances(ctx, AccountIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func listMovimentacoesHandler(svc *service.CashbackService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}/movimentacoes")
		defer span.End()

		page, pageSize := parsePagination(r)
		rows, err := svc.ListMovimentacoes(ctx, chi.URLParam(r, "lojaId"), page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
