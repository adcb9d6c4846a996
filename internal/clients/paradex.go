package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/pkg/retrier"
)

const (
	// DefaultParadexBaseURL Paradex mainnet REST API.
	DefaultParadexBaseURL = "https://api.prod.paradex.trade"

	paradexTimeout = 30 * time.Second
)

// TokenSource supplies a short-lived JWT for authenticated Paradex calls.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken wraps a pre-issued JWT into a TokenSource.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", errors.New("paradex auth token is empty")
		}
		return token, nil
	}
}

// ParadexClient reads market data and account state from the Paradex REST API.
// Public endpoints work without a token source; account endpoints require one.
type ParadexClient struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
	retrier     *retrier.Retrier
}

// ParadexOption configures a ParadexClient.
type ParadexOption func(*ParadexClient)

// WithParadexBaseURL overrides the API base URL.
func WithParadexBaseURL(u string) ParadexOption {
	return func(c *ParadexClient) { c.baseURL = u }
}

// WithParadexHTTPClient overrides the HTTP client.
func WithParadexHTTPClient(hc *http.Client) ParadexOption {
	return func(c *ParadexClient) { c.httpClient = hc }
}

// WithParadexTokenSource sets the JWT source for authenticated endpoints.
func WithParadexTokenSource(ts TokenSource) ParadexOption {
	return func(c *ParadexClient) { c.tokenSource = ts }
}

// NewParadexClient creates a Paradex client pointed at mainnet by default.
func NewParadexClient(opts ...ParadexOption) *ParadexClient {
	c := &ParadexClient{
		baseURL:    DefaultParadexBaseURL,
		httpClient: &http.Client{Timeout: paradexTimeout},
		retrier:    retrier.New(retrier.WithMaxAttempts(3)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Markets lists all tradable markets.
func (c *ParadexClient) Markets(ctx context.Context) ([]domain.Market, error) {
	return retrier.DoWithData(ctx, c.retrier, func(ctx context.Context) ([]domain.Market, error) {
		var resp struct {
			Results []domain.Market `json:"results"`
		}
		if err := c.get(ctx, "/v1/markets", false, &resp); err != nil {
			return nil, errors.Wrap(err, "fetch markets")
		}
		return resp.Results, nil
	})
}

// BBO returns the best bid/offer for one market.
func (c *ParadexClient) BBO(ctx context.Context, market string) (*domain.BBO, error) {
	if market == "" {
		return nil, errors.New("market symbol is required")
	}

	return retrier.DoWithData(ctx, c.retrier, func(ctx context.Context) (*domain.BBO, error) {
		var bbo domain.BBO
		if err := c.get(ctx, fmt.Sprintf("/v1/bbo/%s", market), false, &bbo); err != nil {
			return nil, errors.Wrapf(err, "fetch bbo for %s", market)
		}
		bbo.Market = market
		return &bbo, nil
	})
}

// OpenOrders lists the account's resting orders. Requires a token source.
func (c *ParadexClient) OpenOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	var resp struct {
		Results []domain.OpenOrder `json:"results"`
	}
	if err := c.get(ctx, "/v1/orders", true, &resp); err != nil {
		return nil, errors.Wrap(err, "fetch open orders")
	}
	return resp.Results, nil
}

// Positions lists the account's open positions. Requires a token source.
func (c *ParadexClient) Positions(ctx context.Context) ([]domain.Position, error) {
	var resp struct {
		Results []domain.Position `json:"results"`
	}
	if err := c.get(ctx, "/v1/positions", true, &resp); err != nil {
		return nil, errors.Wrap(err, "fetch positions")
	}
	return resp.Results, nil
}

// Account returns the account summary. Requires a token source.
func (c *ParadexClient) Account(ctx context.Context) (*domain.AccountInfo, error) {
	var info domain.AccountInfo
	if err := c.get(ctx, "/v1/account", true, &info); err != nil {
		return nil, errors.Wrap(err, "fetch account")
	}
	return &info, nil
}

func (c *ParadexClient) get(ctx context.Context, path string, authenticated bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	if authenticated {
		if c.tokenSource == nil {
			return errors.New("paradex token source is not configured")
		}
		token, err := c.tokenSource(ctx)
		if err != nil {
			return errors.Wrap(err, "obtain auth token")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "http request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("paradex returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
