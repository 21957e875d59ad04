package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

// Login authenticates by CNPJ (loja), CPF (consumer) or email (admin).
// The identifier form decides which lookup runs; masked documents are
// accepted as typed.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	acc, err := s.resolveAccount(ctx, req.Identifier)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
		}
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	cred, err := s.store.GetCredential(ctx, acc.ID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// Account exists but credentials were never saved. Treat as
			// invalid credentials to avoid leaking internal state.
			s.logger.Warn("login: credentials missing for existing account",
				zap.String("account_id", acc.ID),
			)
			return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	// Check if account is locked
	if cred.LockedUntil != nil && cred.LockedUntil.After(time.Now()) {
		remaining := time.Until(*cred.LockedUntil).Minutes()
		s.logger.Warn("login: account temporarily locked",
			zap.String("account_id", acc.ID),
			zap.Float64("remaining_minutes", remaining),
		)
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("Conta temporariamente bloqueada. Tente novamente em %.0f minutos", remaining),
		}
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Senha)); err != nil {
		newAttempts := cred.FailedAttempts + 1
		updates := map[string]any{"failed_attempts": newAttempts}
		if newAttempts >= maxFailedAttempts {
			lockedUntil := time.Now().Add(lockDuration)
			updates["locked_until"] = lockedUntil.Format(time.RFC3339)
			s.logger.Warn("login: account locked after max attempts",
				zap.String("account_id", acc.ID),
				zap.Int("attempts", newAttempts),
				zap.Duration("lock_duration", lockDuration),
			)
		} else {
			s.logger.Warn("login: failed password attempt",
				zap.String("account_id", acc.ID),
				zap.Int("attempts", newAttempts),
				zap.Int("max", maxFailedAttempts),
			)
		}
		_ = s.store.UpdateCredential(ctx, acc.ID, updates)

		remaining := maxFailedAttempts - newAttempts
		if remaining <= 0 {
			return nil, &domain.ErrUnauthorized{
				Message: fmt.Sprintf("Conta bloqueada por %d minutos após %d tentativas", int(lockDuration.Minutes()), maxFailedAttempts),
			}
		}
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("Credenciais inválidas. %d tentativa(s) restante(s)", remaining),
		}
	}

	// Reset failed attempts on successful login
	_ = s.store.UpdateCredential(ctx, acc.ID, map[string]any{
		"failed_attempts": 0,
		"locked_until":    nil,
		"last_login_at":   time.Now().Format(time.RFC3339),
	})

	accessToken, err := s.signAccessToken(acc)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.store.StoreRefreshToken(ctx, acc.ID, refreshHash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("account logged in",
		zap.String("account_id", acc.ID),
		zap.Bool("is_cnpj", acc.IsCnpj),
		zap.Bool("is_admin", acc.IsAdmin),
	)

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		AccountID:    acc.ID,
		NomeCompleto: acc.NomeCompleto,
		IsAdmin:      acc.IsAdmin,
		IsCnpj:       acc.IsCnpj,
	}, nil
}

// resolveAccount picks the lookup from the identifier's shape:
// 14 digits is a CNPJ, 11 digits a CPF, anything with @ an email.
func (s *AuthService) resolveAccount(ctx context.Context, identifier string) (*domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	if strings.Contains(identifier, "@") {
		return s.accounts.GetAccountByEmail(ctx, strings.ToLower(identifier))
	}

	digits := format.Digits(identifier)
	switch len(digits) {
	case 14:
		return s.accounts.GetAccountByCNPJ(ctx, digits)
	case 11:
		return s.accounts.GetAccountByCPF(ctx, digits)
	default:
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}
}
