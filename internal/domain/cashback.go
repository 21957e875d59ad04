package domain

import "time"

// ============================================================
// Cashback redemption — temp_codes + movimentacoes
// ============================================================

// TempCode is a short-lived redemption code binding a consumer to a loja.
// Codes are single-use: Used flips on confirmation and verification
// rejects used or expired codes.
type TempCode struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	LojaID    string    `json:"loja_id"`
	UserID    string    `json:"user_id"`
	Used      bool      `json:"used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is past its validity window.
func (c *TempCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Movimentacao is one append-only audit row of a confirmed redemption.
type Movimentacao struct {
	ID                    string    `json:"id"`
	Data                  time.Time `json:"data"`
	UserID                string    `json:"user_id"`
	LojaID                string    `json:"loja_id"`
	ValorTotalCompra      float64   `json:"valor_total_compra"`
	ValorRecebidoCashback float64   `json:"valor_recebido_cashback"`
}

// IssueCodeResponse is returned to the consumer app after issuing a code.
type IssueCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyCodeRequest is the body for POST /v1/lojas/{lojaId}/cashback/verify.
type VerifyCodeRequest struct {
	Code string `json:"code"`
}

// VerifyCodeResponse surfaces the consumer behind a valid code plus the
// merchant's default percentage so the form can preview the cashback.
type VerifyCodeResponse struct {
	Valid          bool    `json:"valid"`
	UserID         string  `json:"userId,omitempty"`
	NomeCompleto   string  `json:"nomeCompleto,omitempty"`
	CashbackPadrao float64 `json:"cashbackPadrao,omitempty"`
}

// ConfirmCashbackRequest is the body for POST /v1/lojas/{lojaId}/cashback/confirm.
type ConfirmCashbackRequest struct {
	Code             string  `json:"code"`
	ValorTotalCompra float64 `json:"valorTotalCompra"`
}

// ConfirmCashbackResponse reports the credited amount and new balance.
type ConfirmCashbackResponse struct {
	UserID        string  `json:"userId"`
	ValorCashback float64 `json:"valorCashback"`
	NovoSaldo     float64 `json:"novoSaldo"`
}
