package clients

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qmerle/simbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvnuClient_FetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/v2/quotes", r.URL.Path)
		assert.Equal(t, "0x111", r.URL.Query().Get("sellTokenAddress"))
		assert.Equal(t, "0x222", r.URL.Query().Get("buyTokenAddress"))
		assert.Equal(t, "0x1dcd6500", r.URL.Query().Get("sellAmount")) // 500000000

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"quoteId":"q-best","sellTokenAddress":"0x111","sellAmount":"0x1dcd6500","buyTokenAddress":"0x222","buyAmount":"0x2c68af0bb140000","sellAmountInUsd":500,"buyAmountInUsd":499.2,"gasFeesInUsd":0.11},
			{"quoteId":"q-worse","sellTokenAddress":"0x111","sellAmount":"0x1dcd6500","buyTokenAddress":"0x222","buyAmount":"0x2c605e2e8cb0000","sellAmountInUsd":500,"buyAmountInUsd":498.1,"gasFeesInUsd":0.09}
		]`))
	}))
	defer srv.Close()

	client := NewAvnuClient(WithAvnuBaseURL(srv.URL))

	quote, err := client.FetchQuote(context.Background(), "0x111", "0x222", big.NewInt(500000000))
	require.NoError(t, err)

	assert.Equal(t, "q-best", quote.QuoteID)
	assert.Equal(t, big.NewInt(500000000), quote.SellAmount)
	// 0x2c68af0bb140000 = 0.2 ETH in wei
	expectedBuy, _ := new(big.Int).SetString("200000000000000000", 10)
	assert.Equal(t, expectedBuy, quote.BuyAmount)
	assert.InDelta(t, 499.2, quote.BuyAmountInUSD, 1e-9)
}

func TestAvnuClient_FetchQuote_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewAvnuClient(WithAvnuBaseURL(srv.URL))

	_, err := client.FetchQuote(context.Background(), "0x111", "0x222", big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no quotes available")
}

func TestAvnuClient_FetchQuote_RejectsNonPositive(t *testing.T) {
	client := NewAvnuClient()

	_, err := client.FetchQuote(context.Background(), "0x111", "0x222", big.NewInt(0))
	require.Error(t, err)

	_, err = client.FetchQuote(context.Background(), "0x111", "0x222", nil)
	require.Error(t, err)
}

func TestAvnuClient_TokenInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tokens/0xabc", r.URL.Path)
		w.Write([]byte(`{
			"name":"Starknet Token","symbol":"STRK","address":"0xabc","decimals":18,"verified":true,
			"market":{"currentPrice":0.52,"marketCap":1200000000,"starknetTvl":34000000,
				"priceChangePercentage1h":0.4,"priceChangePercentage24h":-2.1,"priceChangePercentage7d":5.8,
				"starknetTradingVolume24h":8600000}
		}`))
	}))
	defer srv.Close()

	client := NewAvnuClient(WithAvnuImpulseURL(srv.URL))

	info, err := client.TokenInfo(context.Background(), "0xabc")
	require.NoError(t, err)

	assert.Equal(t, "STRK", info.Symbol)
	assert.True(t, info.Verified)
	assert.InDelta(t, 0.52, info.CurrentPrice, 1e-9)
	assert.InDelta(t, -2.1, info.PriceChangePercentage24h, 1e-9)
	assert.InDelta(t, 8600000, info.StarknetVolume24h, 1e-9)
}

func TestAvnuClient_PriceFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tokens/0xabc/prices/line", r.URL.Path)
		assert.Equal(t, "1D", r.URL.Query().Get("resolution"))
		w.Write([]byte(`[{"date":"2026-08-30","value":0.51},{"date":"2026-08-31","value":0.52}]`))
	}))
	defer srv.Close()

	client := NewAvnuClient(WithAvnuImpulseURL(srv.URL))

	points, err := client.PriceFeed(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-31", points[1].Date)
	assert.InDelta(t, 0.52, points[1].Value, 1e-9)
}

func TestQuote_EffectivePrice(t *testing.T) {
	usdc := domain.Asset{Symbol: "USDC", Decimals: 6}
	eth := domain.Asset{Symbol: "ETH", Decimals: 18}

	buyWei, _ := new(big.Int).SetString("200000000000000000", 10) // 0.2 ETH
	q := &Quote{
		SellAmount: big.NewInt(500000000), // 500 USDC
		BuyAmount:  buyWei,
	}

	price := q.EffectivePrice(usdc, eth)
	assert.Equal(t, "0.0004", price.String())
}
