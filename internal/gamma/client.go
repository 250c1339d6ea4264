// Package gamma implements the discovery-API contract (Component A):
// looking up a market by slug, and listing active markets for a
// connectivity probe.
package gamma

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for the Polymarket Gamma discovery API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Gamma API client. baseURL's trailing slash, if
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

// GetBySlug returns the market exactly matching this slug, or (nil, nil)
// if the discovery API reports 404. Any other non-2xx status, or a
// transport failure, is returned as an error. GetBySlug never retries
// internally.
//
// The endpoint is unusual but contractual: GET {base}/markets/slug/{slug}
// returns 200 with a JSON array whose first element is the market.
func (c *Client) GetBySlug(ctx context.Context, slug string) (*types.DiscoveredMarket, error) {
	requestURL := fmt.Sprintf("%s/markets/slug/%s", c.baseURL, url.PathEscape(slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "resolver-core/1.0")

	c.logger.Debug("gamma-get-by-slug", zap.String("slug", slug), zap.String("url", requestURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s: %s", resp.StatusCode, requestURL, string(body))
	}

	var markets []types.DiscoveredMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(markets) == 0 {
		return nil, nil
	}

	return &markets[0], nil
}

// ListActive fetches up to limit active, non-closed markets, ordered by
// 24h volume descending. It is used by the connectivity probe and the
// list-markets and list-active commands, never by the resolution path.
func (c *Client) ListActive(ctx context.Context, limit int) ([]types.DiscoveredMarket, error) {
	endpoint := fmt.Sprintf("%s/markets", c.baseURL)

	params := url.Values{}
	params.Set("closed", "false")
	params.Set("active", "true")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	requestURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "resolver-core/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var markets []types.DiscoveredMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	c.logger.Debug("fetched-active-markets", zap.Int("count", len(markets)))

	return markets, nil
}

// TestConnectivity performs a minimal request to confirm the discovery API
// is reachable and responding, for use by smoke-test tooling.
func (c *Client) TestConnectivity(ctx context.Context) error {
	_, err := c.ListActive(ctx, 1)
	if err != nil {
		return fmt.Errorf("gamma connectivity check: %w", err)
	}
	return nil
}
