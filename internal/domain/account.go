package domain

import "time"

// ============================================================
// Accounts — coleção "users"
// ============================================================

// The users table holds both consumer and merchant accounts.
// Exactly one of CPF/CNPJ is set per row; that is the discriminator
// every listing uses (IsCnpj mirrors it for the frontend).

// Account is a consumer or merchant row from the users table.
type Account struct {
	ID           string    `json:"id"`
	NomeCompleto string    `json:"nome_completo"`
	Email        string    `json:"email"`
	Telefone     string    `json:"telefone"`
	IsCnpj       bool      `json:"is_cnpj"`
	IsAdmin      bool      `json:"is_admin"`
	CPF          string    `json:"cpf,omitempty"`
	CNPJ         string    `json:"cnpj,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Merchant-only fields.
	NomeEstabelecimento string  `json:"nome_estabelecimento,omitempty"`
	LogoURL             string  `json:"logo_url,omitempty"`
	CashbackPadrao      float64 `json:"cashback_padrao,omitempty"`
	Rua                 string  `json:"rua,omitempty"`
	Numero              string  `json:"numero,omitempty"`
	Bairro              string  `json:"bairro,omitempty"`
	Cidade              string  `json:"cidade,omitempty"`
	Estado              string  `json:"estado,omitempty"`
	Complemento         string  `json:"complemento,omitempty"`
	CEP                 string  `json:"cep,omitempty"`
	Categoria           string  `json:"categoria,omitempty"`
	Subcategoria        string  `json:"subcategoria,omitempty"`
}

// IsMerchant reports whether the account is a loja.
func (a *Account) IsMerchant() bool {
	return a.CNPJ != ""
}

// CashbackBalance is one per-merchant balance ("caixinha") of a consumer.
type CashbackBalance struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	LojaID        string    `json:"loja_id"`
	NomeLoja      string    `json:"nome_loja,omitempty"`
	ValorCashback float64   `json:"valor_cashback"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AllowedCPF is one pre-authorized CPF of a merchant.
type AllowedCPF struct {
	ID        string    `json:"id"`
	LojaID    string    `json:"loja_id"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateConsumerRequest is the body for consumer creation (admin panel
// and the merchant sidebar quick-register).
type CreateConsumerRequest struct {
	NomeCompleto string `json:"nomeCompleto"`
	Email        string `json:"email"`
	Telefone     string `json:"telefone"`
	CPF          string `json:"cpf"`
}

// CreateMerchantRequest is the body for admin merchant creation.
type CreateMerchantRequest struct {
	NomeCompleto string `json:"nomeCompleto"`
	Email        string `json:"email"`
	Telefone     string `json:"telefone"`
	CNPJ         string `json:"cnpj"`
	Categoria    string `json:"categoria"`
	Subcategoria string `json:"subcategoria"`
	LogoURL      string `json:"logoUrl"`
}

// UpdateMerchantRequest carries the editable merchant fields
// (profile modal + admin store edit modal).
type UpdateMerchantRequest struct {
	NomeCompleto        string   `json:"nomeCompleto,omitempty"`
	NomeEstabelecimento string   `json:"nomeEstabelecimento,omitempty"`
	Email               string   `json:"email,omitempty"`
	Telefone            string   `json:"telefone,omitempty"`
	CashbackPadrao      *float64 `json:"cashbackPadrao,omitempty"`
	LogoURL             string   `json:"logoUrl,omitempty"`
	Rua                 string   `json:"rua,omitempty"`
	Numero              string   `json:"numero,omitempty"`
	Bairro              string   `json:"bairro,omitempty"`
	Cidade              string   `json:"cidade,omitempty"`
	Estado              string   `json:"estado,omitempty"`
	Complemento         string   `json:"complemento,omitempty"`
	CEP                 string   `json:"cep,omitempty"`
	Categoria           string   `json:"categoria,omitempty"`
	Subcategoria        string   `json:"subcategoria,omitempty"`
}
