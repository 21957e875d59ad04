package domain

// ============================================================
// Admin dashboard aggregates
// ============================================================

// AdminStats feeds the admin panel cards.
type AdminStats struct {
	TotalUsuarios      int     `json:"totalUsuarios"`
	TotalLojas         int     `json:"totalLojas"`
	TotalCashbackGeral float64 `json:"totalCashbackGeral"`
}

// GeoDistribution feeds the /mapa pie charts: merchant counts per
// estado and per cidade, plus the (optionally filtered) merchant list.
type GeoDistribution struct {
	PorEstado map[string]int `json:"porEstado"`
	PorCidade map[string]int `json:"porCidade"`
	Lojas     []GeoStore     `json:"lojas"`
}

// GeoStore is the slim merchant shape the map page renders.
type GeoStore struct {
	NomeEstabelecimento string `json:"nomeEstabelecimento"`
	Cidade              string `json:"cidade"`
	Estado              string `json:"estado"`
	CNPJ                string `json:"cnpj"`
}

// MerchantStats feeds the loja dashboard cards.
type MerchantStats struct {
	TotalProdutos       int     `json:"totalProdutos"`
	TotalClientes       int     `json:"totalClientes"`
	TotalCashbackGerado float64 `json:"totalCashbackGerado"`
}
