package domain

import "time"

// ============================================================
// Coupons — coleção "cupons"
// ============================================================

// Coupon is a merchant-scoped promotional code with a usage cap and a
// validity window. Rows are owned by loja_id; the consumer list is the
// only mutable field after creation.
type Coupon struct {
	ID             string    `json:"id"`
	Codigo         string    `json:"codigo"`
	Titulo         string    `json:"titulo"`
	Descricao      string    `json:"descricao"`
	Desconto       float64   `json:"desconto"`
	LimiteUsuarios int       `json:"limite_usuarios"`
	ListaUsuarios  []string  `json:"lista_usuarios"`
	DataInicio     time.Time `json:"data_inicio"`
	DataValidade   time.Time `json:"data_validade"`
	LojaID         string    `json:"loja_id"`
	NomeLoja       string    `json:"nome_loja"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateCouponRequest is the body for POST /v1/admin/lojas/{lojaId}/cupons.
type CreateCouponRequest struct {
	Titulo         string  `json:"titulo"`
	Descricao      string  `json:"descricao"`
	Desconto       float64 `json:"desconto"`
	LimiteUsuarios int     `json:"limiteUsuarios"`
	DataInicio     string  `json:"dataInicio"`
	DataValidade   string  `json:"dataValidade"`
}

// RedeemCouponRequest is the body for POST /v1/cupons/{codigo}/redeem.
type RedeemCouponRequest struct {
	LojaID string `json:"lojaId"`
}

// RedeemCouponResponse reports the applied discount percentage.
type RedeemCouponResponse struct {
	Codigo   string  `json:"codigo"`
	Desconto float64 `json:"desconto"`
}
