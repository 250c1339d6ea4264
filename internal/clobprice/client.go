// Package clobprice implements the price-API contract (Component B): a
// single-shot probe of whether a trading token currently has a live price.
// The known upper/lower-case quirk of the side parameter is a contract of
// the core, not of this transport client, so GetPrice never retries
// internally — callers apply the BUY-then-buy fallback themselves using
// IsBadRequestError to classify the first failure.
package clobprice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Client is an HTTP client for the Polymarket CLOB price API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new CLOB price client. baseURL's trailing slash, if
// any, is stripped.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// PriceResponse is the decoded response body. Only the presence of a
// "price" field is meaningful to the core; its value is never interpreted.
type PriceResponse struct {
	HasPrice bool
	Raw      map[string]json.RawMessage
}

// StatusError is returned for any non-2xx response, carrying the status
// code so callers can apply the side-parameter retry quirk without
// re-parsing error strings.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsBadRequestError reports whether err represents a 400-class ("bad
// request" / "invalid") response, the only class of failure the core's
// side-parameter fallback retries on.
func IsBadRequestError(err error) bool {
	var statusErr *StatusError
	if e, ok := err.(*StatusError); ok {
		statusErr = e
	}
	if statusErr != nil {
		return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "400") || strings.Contains(msg, "bad request") || strings.Contains(msg, "invalid")
}

// GetPrice probes the given token id at the given side ("BUY" or "buy").
// It performs exactly one HTTP call and never retries.
func (c *Client) GetPrice(ctx context.Context, tokenID, side string) (PriceResponse, error) {
	requestURL := fmt.Sprintf("%s/price?token_id=%s&side=%s", c.baseURL, tokenID, side)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return PriceResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "resolver-core/1.0")

	c.logger.Debug("clob-get-price", zap.String("token_id", tokenID), zap.String("side", side))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PriceResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PriceResponse{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return PriceResponse{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return PriceResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}

	_, hasPrice := raw["price"]

	return PriceResponse{HasPrice: hasPrice, Raw: raw}, nil
}

// TestConnectivity performs a minimal request to confirm the price API is
// reachable and responding, for use by smoke-test tooling.
func (c *Client) TestConnectivity(ctx context.Context, tokenID string) error {
	_, err := c.GetPrice(ctx, tokenID, "BUY")
	if err != nil && !IsBadRequestError(err) {
		return fmt.Errorf("clob connectivity check: %w", err)
	}
	return nil
}
