// Package supabase provides a client for Supabase (PostgREST + Storage).
// It is the data backend for accounts, offers, coupons, rules, redemption
// codes and the transaction log.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pixinxa/cashback-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST and Storage APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	bucket         string
	cb             *gobreaker.CircuitBreaker
	bh             *resilience.Bulkhead
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client. Concurrent requests are capped
// at cfg.MaxConcurrency so a slow PostgREST cannot exhaust the pool.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey, bucket string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		bucket:         bucket,
		cb:             cb,
		bh:             resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:            cfg,
		logger:         logger,
	}
}

// requestError carries the PostgREST status and body for classification.
type requestError struct {
	Status int
	Body   string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s", e.Status, e.Body)
}

// isDuplicate reports whether err is a unique-index violation.
// PostgREST surfaces those as 409 with SQLSTATE 23505 in the body.
func isDuplicate(err error) bool {
	re, ok := err.(*requestError)
	if !ok {
		return false
	}
	return re.Status == http.StatusConflict || strings.Contains(re.Body, "23505")
}

func (c *Client) setHeaders(req *http.Request, prefer string) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
}

// doGet executes a GET against PostgREST with retry + circuit breaker.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			b, err := c.do(ctx, http.MethodGet, path, nil, "")
			if err != nil {
				return err
			}
			body = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doPost inserts a row. Not retried: inserts are not idempotent.
func (c *Client) doPost(ctx context.Context, table string, data any) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		b, err := c.do(ctx, http.MethodPost, table, data, "return=representation")
		if err != nil {
			return nil, err
		}
		body = b
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doPatch(ctx context.Context, path string, data map[string]any) error {
	_, err := c.cb.Execute(func() (any, error) {
		_, err := c.do(ctx, http.MethodPatch, path, data, "return=minimal")
		return nil, err
	})
	return err
}

// doPatchReturning updates rows and returns the updated rows as JSON.
// PostgREST answers 2xx even when the filter matched nothing, so callers
// that need to know whether the update landed must decode the body and
// check for an empty array.
func (c *Client) doPatchReturning(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		b, err := c.do(ctx, http.MethodPatch, path, data, "return=representation")
		if err != nil {
			return nil, err
		}
		body = b
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	_, err := c.cb.Execute(func() (any, error) {
		_, err := c.do(ctx, http.MethodDelete, path, nil, "")
		return nil, err
	})
	return err
}

// do executes one authenticated request against PostgREST.
func (c *Client) do(ctx context.Context, method, path string, data any, prefer string) ([]byte, error) {
	if err := c.bh.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bh.Release()

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

	var reader io.Reader
	if data != nil {
		jsonBody, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	c.setHeaders(req, prefer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, &requestError{Status: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}
