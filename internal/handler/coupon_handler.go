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
// Cupons — /v1/lojas/{lojaId}/cupons, /v1/cupons
// ============================================================

func createCouponHandler(svc *service.CouponService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/lojas/{lojaId}/cupons")
		defer span.End()

		lojaID := chi.URLParam(r, "lojaId")
		span.SetAttributes(attribute.String("loja.id", lojaID))

		var req domain.CreateCouponRequest
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

func listCouponsHandler(svc *service.CouponService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lojas/{lojaId}/cupons")
		defer span.End()

		rows, err := svc.ListByLoja(ctx, chi.URLParam(r, "lojaId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func deleteCouponHandler(svc *service.CouponService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/cupons/{couponId}")
		defer span.End()

		if err := svc.Delete(ctx, chi.URLParam(r, "couponId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// redeemCouponHandler is consumer-facing.
func redeemCouponHandler(svc *service.CouponService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cupons/{codigo}/redeem")
		defer span.End()

		codigo := chi.URLParam(r, "codigo")
		span.SetAttributes(attribute.String("coupon.codigo", codigo))

		resp, err := svc.Redeem(ctx, AccountIDFromContext(ctx), codigo)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
