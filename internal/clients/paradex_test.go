package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParadexClient_Markets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/markets", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"results":[
			{"symbol":"ETH-USD-PERP","base_currency":"ETH","quote_currency":"USD","settlement_currency":"USDC"},
			{"symbol":"STRK-USD-PERP","base_currency":"STRK","quote_currency":"USD","settlement_currency":"USDC"}
		]}`))
	}))
	defer srv.Close()

	client := NewParadexClient(WithParadexBaseURL(srv.URL))

	markets, err := client.Markets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "ETH-USD-PERP", markets[0].Symbol)
	assert.Equal(t, "STRK", markets[1].BaseCurrency)
}

func TestParadexClient_BBO(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/bbo/ETH-USD-PERP", r.URL.Path)
		w.Write([]byte(`{"bid":"3200.5","ask":"3201.1","bid_size":"12.4","ask_size":"8.9"}`))
	}))
	defer srv.Close()

	client := NewParadexClient(WithParadexBaseURL(srv.URL))

	bbo, err := client.BBO(context.Background(), "ETH-USD-PERP")
	require.NoError(t, err)

	assert.Equal(t, "ETH-USD-PERP", bbo.Market)
	assert.True(t, bbo.Bid.Equal(decimal.RequireFromString("3200.5")))
	assert.True(t, bbo.Spread().Equal(decimal.RequireFromString("0.6")))
	assert.True(t, bbo.SpreadPercent().GreaterThan(decimal.Zero))
}

func TestParadexClient_BBO_RequiresMarket(t *testing.T) {
	client := NewParadexClient()

	_, err := client.BBO(context.Background(), "")
	require.Error(t, err)
}

func TestParadexClient_AuthenticatedEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer jwt-123", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/orders":
			w.Write([]byte(`{"results":[{"id":"o-1","market":"ETH-USD-PERP","side":"BUY","type":"LIMIT","size":"1.5","remaining_size":"1.0","price":"3100","status":"OPEN"}]}`))
		case "/v1/positions":
			w.Write([]byte(`{"results":[{"market":"ETH-USD-PERP","side":"LONG","size":"2","average_entry_price":"3050","unrealized_pnl":"300","liquidation_price":"2400"}]}`))
		case "/v1/account":
			w.Write([]byte(`{"account":"0xacc","status":"ACTIVE","account_value":"10500","free_collateral":"8000","margin_cushion":"0.76"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewParadexClient(
		WithParadexBaseURL(srv.URL),
		WithParadexTokenSource(StaticToken("jwt-123")),
	)

	orders, err := client.OpenOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o-1", orders[0].ID)
	assert.True(t, orders[0].RemainingSize.Equal(decimal.NewFromInt(1)))

	positions, err := client.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "LONG", positions[0].Side)

	account, err := client.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", account.Status)
	assert.True(t, account.FreeCollateral.Equal(decimal.NewFromInt(8000)))
}

func TestParadexClient_AuthRequiresTokenSource(t *testing.T) {
	client := NewParadexClient(WithParadexBaseURL("http://127.0.0.1:0"))

	_, err := client.OpenOrders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token source")
}
