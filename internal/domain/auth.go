package domain

import "time"

// ============================================================
// Auth — Request / Response types (matches frontend API contract)
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register (cadastro de loja).
type RegisterRequest struct {
	NomeCompleto        string `json:"nomeCompleto"`
	NomeEstabelecimento string `json:"nomeEstabelecimento"`
	Email               string `json:"email"`
	Telefone            string `json:"telefone"`
	CNPJ                string `json:"cnpj"`
	Senha               string `json:"senha"`
	ConfirmSenha        string `json:"confirmSenha"`
	LogoURL             string `json:"logoUrl,omitempty"`
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
type RegisterResponse struct {
	LojaID  string `json:"lojaId"`
	Message string `json:"message"`
}

// LoginRequest is the body for POST /v1/auth/login.
// Identifier is a CNPJ (loja), CPF (consumer) or email (admin) —
// the login gate resolves whichever form was typed.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Senha      string `json:"senha"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
// IsAdmin/IsCnpj drive the frontend routing (/admin vs /boasvindas).
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	AccountID    string `json:"accountId"`
	NomeCompleto string `json:"nomeCompleto"`
	IsAdmin      bool   `json:"isAdmin"`
	IsCnpj       bool   `json:"isCnpj"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthRefreshToken represents a refresh token stored in the database.
type AuthRefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// Credential carries the stored password hash and lockout state.
type Credential struct {
	UserID         string     `json:"user_id"`
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}
