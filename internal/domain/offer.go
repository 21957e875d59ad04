package domain

import "time"

// ============================================================
// Offers — coleção "ofertas"
// ============================================================

// Offer is one product offer of a loja. Offers are created and deleted
// by the merchant; there is no update path.
type Offer struct {
	ID           string    `json:"id"`
	LojaID       string    `json:"loja_id"`
	Titulo       string    `json:"titulo"`
	Descricao    string    `json:"descricao"`
	PrecoInicial float64   `json:"preco_inicial"`
	PrecoFinal   float64   `json:"preco_final"`
	ImagemURL    string    `json:"imagem_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateOfferRequest is the body for POST /v1/lojas/{lojaId}/ofertas.
// All fields are required, mirroring the product form.
type CreateOfferRequest struct {
	Titulo       string  `json:"titulo"`
	Descricao    string  `json:"descricao"`
	PrecoInicial float64 `json:"precoInicial"`
	PrecoFinal   float64 `json:"precoFinal"`
	ImagemURL    string  `json:"imagemUrl"`
}

// BusinessRule is one display card of a merchant's "regras" list.
// Rows are ordered by Position; removal keeps the remaining order.
type BusinessRule struct {
	ID        string    `json:"id"`
	LojaID    string    `json:"loja_id"`
	Icone     string    `json:"icone"`
	Titulo    string    `json:"titulo"`
	Descricao string    `json:"descricao"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// BusinessRuleRequest is the body for rule creation and update.
type BusinessRuleRequest struct {
	Icone     string `json:"icone"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
}
