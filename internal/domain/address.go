package domain

// ============================================================
// Address lookup — ViaCEP / IBGE reference data
// ============================================================

// Address is the result of a postal-code lookup, used to pre-fill the
// merchant address form.
type Address struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
}

// Estado is one Brazilian state from the IBGE reference list.
type Estado struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

// Cidade is one municipality of a state.
type Cidade struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}
