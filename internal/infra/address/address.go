// Package address wraps the public Brazilian address APIs: ViaCEP for
// CEP lookup and the IBGE localidades API for estados and municípios.
package address

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/format"
	"github.com/pixinxa/cashback-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("address")

// Client fetches address data from ViaCEP and IBGE.
type Client struct {
	httpClient *http.Client
	viaCEPURL  string
	ibgeURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewClient creates a new address Client.
func NewClient(httpClient *http.Client, viaCEPURL, ibgeURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		viaCEPURL:  viaCEPURL,
		ibgeURL:    ibgeURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// viaCEPResponse mirrors the ViaCEP payload. The API answers 200 with
// {"erro": true} for well-formed CEPs that do not exist.
type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// LookupCEP fetches the address for a CEP with retry, circuit breaker,
// and tracing. The CEP may arrive masked; only its digits are sent.
func (c *Client) LookupCEP(ctx context.Context, cep string) (*domain.Address, error) {
	ctx, span := tracer.Start(ctx, "AddressClient.LookupCEP")
	defer span.End()
	span.SetAttributes(attribute.String("address.cep", cep))

	digits := format.Digits(cep)
	if len(digits) != 8 {
		return nil, &domain.ErrValidation{Field: "cep", Message: "CEP deve ter 8 dígitos"}
	}

	var payload viaCEPResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/ws/%s/json/", c.viaCEPURL, digits)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("viacep returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&payload)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		if payload.Erro {
			return nil, &domain.ErrNotFound{Resource: "cep", ID: digits}
		}
		return &domain.Address{
			CEP:        payload.CEP,
			Logradouro: payload.Logradouro,
			Bairro:     payload.Bairro,
			Localidade: payload.Localidade,
			UF:         payload.UF,
		}, nil
	})

	if err != nil {
		if nf, ok := err.(*domain.ErrNotFound); ok {
			return nil, nf
		}
		if ve, ok := err.(*domain.ErrValidation); ok {
			return nil, ve
		}
		return nil, &domain.ErrExternalService{Service: "viacep", Err: err}
	}

	return result.(*domain.Address), nil
}

// ListEstados fetches all UFs ordered by name.
func (c *Client) ListEstados(ctx context.Context) ([]domain.Estado, error) {
	ctx, span := tracer.Start(ctx, "AddressClient.ListEstados")
	defer span.End()

	var estados []domain.Estado

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/api/v1/localidades/estados?orderBy=nome", c.ibgeURL)
			return c.getJSON(ctx, url, &estados)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return estados, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "ibge", Err: err}
	}

	return result.([]domain.Estado), nil
}

// ListCidades fetches the municípios of one UF ordered by name.
func (c *Client) ListCidades(ctx context.Context, uf string) ([]domain.Cidade, error) {
	ctx, span := tracer.Start(ctx, "AddressClient.ListCidades")
	defer span.End()
	span.SetAttributes(attribute.String("address.uf", uf))

	var cidades []domain.Cidade

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/api/v1/localidades/estados/%s/municipios?orderBy=nome", c.ibgeURL, uf)
			return c.getJSON(ctx, url, &cidades)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return cidades, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "ibge", Err: err}
	}

	return result.([]domain.Cidade), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ibge returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
