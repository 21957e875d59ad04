package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/pixinxa/cashback-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	accountIDKey contextKey = "accountID"
	isAdminKey   contextKey = "isAdmin"
	isCnpjKey    contextKey = "isCnpj"
)

// JWTAuthMiddleware validates Bearer tokens and injects the account
// identity into the request context.
func JWTAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, claims.Sub)
			ctx = context.WithValue(ctx, isAdminKey, claims.IsAdmin)
			ctx = context.WithValue(ctx, isCnpjKey, claims.IsCnpj)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose token lacks the admin flag.
func AdminOnly(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminFromContext(r.Context()) {
				logger.Warn("auth: admin route denied",
					zap.String("path", r.URL.Path),
					zap.String("account_id", AccountIDFromContext(r.Context())),
				)
				writeError(w, http.StatusForbidden, "Acesso restrito ao administrador")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LojaOwnerOnly lets a loja reach only its own {lojaId} routes; the
// admin passes through.
func LojaOwnerOnly(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if IsAdminFromContext(ctx) {
				next.ServeHTTP(w, r)
				return
			}
			lojaID := chi.URLParam(r, "lojaId")
			if lojaID == "" || lojaID != AccountIDFromContext(ctx) {
				logger.Warn("auth: loja route denied",
					zap.String("path", r.URL.Path),
					zap.String("account_id", AccountIDFromContext(ctx)),
				)
				writeError(w, http.StatusForbidden, "Acesso restrito à própria loja")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccountIDFromContext extracts the authenticated account ID.
func AccountIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(accountIDKey).(string)
	return v
}

// IsAdminFromContext reports whether the token carries the admin flag.
func IsAdminFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(isAdminKey).(bool)
	return v
}

// IsCnpjFromContext reports whether the token belongs to a loja.
func IsCnpjFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(isCnpjKey).(bool)
	return v
}
