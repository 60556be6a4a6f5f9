package upstream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"darkflow/internal/domain/models"
	drepo "darkflow/internal/domain/repository"
	xhttp "darkflow/pkg/http"
)

// Client is the typed REST client for the dark-flow backend. It does no
// retries or caching; callers decide how to degrade on failure.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	metrics drepo.Metrics
}

// New creates a backend REST client.
func New(baseURL, apiKey string, timeout time.Duration, metrics drepo.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		metrics: metrics,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     headers,
		QueryParams: query,
	}, dest)

	if c.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.RecordUpstreamRequest(path, outcome)
	}
	if err != nil {
		return xhttp.UpstreamError(fmt.Sprintf("get %s", path)).
			WithParam("path", path).
			WithError(err)
	}
	return nil
}

// UIConfig fetches the dashboard bootstrap payload.
func (c *Client) UIConfig(ctx context.Context) (models.UIConfig, error) {
	var out models.UIConfig
	err := c.getJSON(ctx, "/ui", nil, &out)
	return out, err
}

// Flows fetches recent whale transfers.
func (c *Client) Flows(ctx context.Context, limit int, asset string, minUSD float64) ([]models.WhaleTransfer, error) {
	q := map[string][]string{}
	if limit > 0 {
		q["limit"] = []string{strconv.Itoa(limit)}
	}
	if asset != "" {
		q["asset"] = []string{asset}
	}
	if minUSD > 0 {
		q["min_usd"] = []string{strconv.FormatFloat(minUSD, 'f', -1, 64)}
	}

	var out []models.WhaleTransfer
	err := c.getJSON(ctx, "/flows", q, &out)
	return out, err
}

// FlowState fetches the per-symbol dark-flow state.
func (c *Client) FlowState(ctx context.Context) ([]models.FlowState, error) {
	var out []models.FlowState
	err := c.getJSON(ctx, "/dashboard/flow_state", nil, &out)
	return out, err
}

// MarketPrices fetches the price strip.
func (c *Client) MarketPrices(ctx context.Context) ([]models.MarketPrice, error) {
	var out []models.MarketPrice
	err := c.getJSON(ctx, "/dashboard/market_prices", nil, &out)
	return out, err
}

// Alerts fetches backend-evaluated alerts.
func (c *Client) Alerts(ctx context.Context, limit int, severity string) ([]models.Alert, error) {
	q := map[string][]string{}
	if limit > 0 {
		q["limit"] = []string{strconv.Itoa(limit)}
	}
	if severity != "" {
		q["severity"] = []string{severity}
	}

	var out []models.Alert
	err := c.getJSON(ctx, "/admin/alerts", q, &out)
	return out, err
}

// AlgoFingerprint fetches the frequency-domain classification for a symbol.
func (c *Client) AlgoFingerprint(ctx context.Context, symbol string) (models.AlgoFingerprint, error) {
	var out models.AlgoFingerprint
	err := c.getJSON(ctx, "/dashboard/algo_fingerprint", map[string][]string{"symbol": {symbol}}, &out)
	return out, err
}

// WalletProfile fetches wallet intelligence for an address.
func (c *Client) WalletProfile(ctx context.Context, address string) (models.WalletProfile, error) {
	var out models.WalletProfile
	err := c.getJSON(ctx, "/wallets/"+address, nil, &out)
	return out, err
}

var _ drepo.Upstream = (*Client)(nil)
