package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/pkg/retrier"
	"github.com/shopspring/decimal"
)

const (
	// DefaultAvnuBaseURL AVNU swap aggregator API.
	DefaultAvnuBaseURL = "https://starknet.api.avnu.fi"
	// DefaultAvnuImpulseURL AVNU market data (impulse) API.
	DefaultAvnuImpulseURL = "https://starknet.impulse.avnu.fi"

	avnuTimeout = 30 * time.Second
)

// Quote one AVNU swap quote. Amounts are in wei of the respective token.
type Quote struct {
	QuoteID          string   `json:"quoteId"`
	SellTokenAddress string   `json:"sellTokenAddress"`
	SellAmount       *big.Int `json:"-"`
	BuyTokenAddress  string   `json:"buyTokenAddress"`
	BuyAmount        *big.Int `json:"-"`
	SellAmountInUSD  float64  `json:"sellAmountInUsd"`
	BuyAmountInUSD   float64  `json:"buyAmountInUsd"`
	GasFeesInUSD     float64  `json:"gasFeesInUsd"`
}

// rawQuote mirrors the wire format: wei amounts are hex strings.
type rawQuote struct {
	QuoteID          string  `json:"quoteId"`
	SellTokenAddress string  `json:"sellTokenAddress"`
	SellAmount       string  `json:"sellAmount"`
	BuyTokenAddress  string  `json:"buyTokenAddress"`
	BuyAmount        string  `json:"buyAmount"`
	SellAmountInUSD  float64 `json:"sellAmountInUsd"`
	BuyAmountInUSD   float64 `json:"buyAmountInUsd"`
	GasFeesInUSD     float64 `json:"gasFeesInUsd"`
}

// AvnuClient fetches swap quotes and token market data from AVNU.
type AvnuClient struct {
	baseURL    string
	impulseURL string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// AvnuOption configures an AvnuClient.
type AvnuOption func(*AvnuClient)

// WithAvnuBaseURL overrides the swap API base URL.
func WithAvnuBaseURL(u string) AvnuOption {
	return func(c *AvnuClient) { c.baseURL = u }
}

// WithAvnuImpulseURL overrides the market data API base URL.
func WithAvnuImpulseURL(u string) AvnuOption {
	return func(c *AvnuClient) { c.impulseURL = u }
}

// WithAvnuHTTPClient overrides the HTTP client.
func WithAvnuHTTPClient(hc *http.Client) AvnuOption {
	return func(c *AvnuClient) { c.httpClient = hc }
}

// NewAvnuClient creates an AVNU client with production endpoints by default.
func NewAvnuClient(opts ...AvnuOption) *AvnuClient {
	c := &AvnuClient{
		baseURL:    DefaultAvnuBaseURL,
		impulseURL: DefaultAvnuImpulseURL,
		httpClient: &http.Client{Timeout: avnuTimeout},
		retrier:    retrier.New(retrier.WithMaxAttempts(3)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuote requests swap quotes for selling sellAmount wei of the sell token
// and returns the best one (AVNU orders quotes best-first).
func (c *AvnuClient) FetchQuote(ctx context.Context, sellTokenAddress, buyTokenAddress string, sellAmount *big.Int) (*Quote, error) {
	if sellAmount == nil || sellAmount.Sign() <= 0 {
		return nil, errors.New("sell amount must be positive")
	}

	params := url.Values{}
	params.Set("sellTokenAddress", sellTokenAddress)
	params.Set("buyTokenAddress", buyTokenAddress)
	params.Set("sellAmount", hexutil.EncodeBig(sellAmount))

	endpoint := fmt.Sprintf("%s/swap/v2/quotes?%s", c.baseURL, params.Encode())

	raws, err := retrier.DoWithData(ctx, c.retrier, func(ctx context.Context) ([]rawQuote, error) {
		var out []rawQuote
		if err := c.getJSON(ctx, endpoint, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch avnu quotes")
	}
	if len(raws) == 0 {
		return nil, errors.Errorf("no quotes available for %s -> %s", sellTokenAddress, buyTokenAddress)
	}

	return decodeQuote(raws[0])
}

// TokenInfo fetches aggregator market metrics for a token address.
func (c *AvnuClient) TokenInfo(ctx context.Context, tokenAddress string) (*domain.TokenMarketData, error) {
	endpoint := fmt.Sprintf("%s/v1/tokens/%s", c.impulseURL, tokenAddress)

	return retrier.DoWithData(ctx, c.retrier, func(ctx context.Context) (*domain.TokenMarketData, error) {
		var wrapper struct {
			domain.TokenMarketData
			Market struct {
				CurrentPrice             float64 `json:"currentPrice"`
				MarketCap                float64 `json:"marketCap"`
				StarknetTvl              float64 `json:"starknetTvl"`
				PriceChangePercentage1h  float64 `json:"priceChangePercentage1h"`
				PriceChangePercentage24h float64 `json:"priceChangePercentage24h"`
				PriceChangePercentage7d  float64 `json:"priceChangePercentage7d"`
				StarknetVolume24h        float64 `json:"starknetTradingVolume24h"`
			} `json:"market"`
		}
		if err := c.getJSON(ctx, endpoint, &wrapper); err != nil {
			return nil, errors.Wrapf(err, "fetch token info for %s", tokenAddress)
		}

		data := wrapper.TokenMarketData
		data.CurrentPrice = wrapper.Market.CurrentPrice
		data.MarketCap = wrapper.Market.MarketCap
		data.StarknetTvl = wrapper.Market.StarknetTvl
		data.PriceChangePercentage1h = wrapper.Market.PriceChangePercentage1h
		data.PriceChangePercentage24h = wrapper.Market.PriceChangePercentage24h
		data.PriceChangePercentage7d = wrapper.Market.PriceChangePercentage7d
		data.StarknetVolume24h = wrapper.Market.StarknetVolume24h

		return &data, nil
	})
}

// PriceFeed fetches the daily close price line for a token address.
func (c *AvnuClient) PriceFeed(ctx context.Context, tokenAddress string) ([]domain.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/v1/tokens/%s/prices/line?resolution=1D", c.impulseURL, tokenAddress)

	return retrier.DoWithData(ctx, c.retrier, func(ctx context.Context) ([]domain.PricePoint, error) {
		var points []domain.PricePoint
		if err := c.getJSON(ctx, endpoint, &points); err != nil {
			return nil, errors.Wrapf(err, "fetch price feed for %s", tokenAddress)
		}
		return points, nil
	})
}

func (c *AvnuClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

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
		return errors.Errorf("avnu returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func decodeQuote(raw rawQuote) (*Quote, error) {
	sellWei, err := hexutil.DecodeBig(raw.SellAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "decode sell amount %q", raw.SellAmount)
	}
	buyWei, err := hexutil.DecodeBig(raw.BuyAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "decode buy amount %q", raw.BuyAmount)
	}

	return &Quote{
		QuoteID:          raw.QuoteID,
		SellTokenAddress: raw.SellTokenAddress,
		SellAmount:       sellWei,
		BuyTokenAddress:  raw.BuyTokenAddress,
		BuyAmount:        buyWei,
		SellAmountInUSD:  raw.SellAmountInUSD,
		BuyAmountInUSD:   raw.BuyAmountInUSD,
		GasFeesInUSD:     raw.GasFeesInUSD,
	}, nil
}

// EffectivePrice returns the buy-per-sell price implied by the quote in
// human units, given the decimals of both tokens.
func (q *Quote) EffectivePrice(sellAsset, buyAsset domain.Asset) decimal.Decimal {
	sell := sellAsset.FromWei(q.SellAmount)
	if sell.IsZero() {
		return decimal.Zero
	}
	return buyAsset.FromWei(q.BuyAmount).Div(sell)
}
