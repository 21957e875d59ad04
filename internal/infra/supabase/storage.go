package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// ObjectStorage implementation — Supabase Storage uploads
// ============================================================

// Upload stores an object in the configured bucket and returns its
// public URL. Paths are prefixed by area (logos/, ofertas/, categories/)
// by the callers.
func (c *Client) Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Upload")
	defer span.End()

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", contentType)
	// Re-uploads of the same path overwrite rather than fail.
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: storage upload failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: storage upload non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return "", &requestError{Status: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.Debug("supabase: storage upload OK", zap.String("path", path))
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path), nil
}
