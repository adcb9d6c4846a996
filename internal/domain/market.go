package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market a tradable Paradex market.
type Market struct {
	Symbol             string `json:"symbol"`
	BaseCurrency       string `json:"base_currency"`
	QuoteCurrency      string `json:"quote_currency"`
	SettlementCurrency string `json:"settlement_currency"`
}

// BBO best bid/offer for a market.
type BBO struct {
	Market  string          `json:"market"`
	Bid     decimal.Decimal `json:"bid"`
	Ask     decimal.Decimal `json:"ask"`
	BidSize decimal.Decimal `json:"bid_size"`
	AskSize decimal.Decimal `json:"ask_size"`
}

// Spread returns the absolute ask-bid spread.
func (b BBO) Spread() decimal.Decimal {
	return b.Ask.Sub(b.Bid)
}

// SpreadPercent returns the spread relative to the bid, in percent.
func (b BBO) SpreadPercent() decimal.Decimal {
	if b.Bid.IsZero() {
		return decimal.Zero
	}
	return b.Spread().Div(b.Bid).Mul(decimal.NewFromInt(100))
}

// OpenOrder a resting order on the venue.
type OpenOrder struct {
	ID            string          `json:"id"`
	Market        string          `json:"market"`
	Side          string          `json:"side"`
	Type          string          `json:"type"`
	Size          decimal.Decimal `json:"size"`
	RemainingSize decimal.Decimal `json:"remaining_size"`
	Price         decimal.Decimal `json:"price"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Position an open perpetual position on the venue.
type Position struct {
	Market            string          `json:"market"`
	Side              string          `json:"side"`
	Size              decimal.Decimal `json:"size"`
	AverageEntryPrice decimal.Decimal `json:"average_entry_price"`
	UnrealizedPnl     decimal.Decimal `json:"unrealized_pnl"`
	LiquidationPrice  decimal.Decimal `json:"liquidation_price"`
}

// AccountInfo venue account summary.
type AccountInfo struct {
	Account        string          `json:"account"`
	Status         string          `json:"status"`
	AccountValue   decimal.Decimal `json:"account_value"`
	FreeCollateral decimal.Decimal `json:"free_collateral"`
	MarginCushion  decimal.Decimal `json:"margin_cushion"`
}

// TokenMarketData aggregator-sourced market metrics for one token.
type TokenMarketData struct {
	Name                     string  `json:"name"`
	Symbol                   string  `json:"symbol"`
	Address                  string  `json:"address"`
	Decimals                 int32   `json:"decimals"`
	Verified                 bool    `json:"verified"`
	CurrentPrice             float64 `json:"currentPrice"`
	MarketCap                float64 `json:"marketCap"`
	StarknetTvl              float64 `json:"starknetTvl"`
	PriceChangePercentage1h  float64 `json:"priceChangePercentage1h"`
	PriceChangePercentage24h float64 `json:"priceChangePercentage24h"`
	PriceChangePercentage7d  float64 `json:"priceChangePercentage7d"`
	StarknetVolume24h        float64 `json:"starknetVolume24h"`
}

// PricePoint one sample of a token price feed.
type PricePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Candle single OHLCV candlestick from a reference market.
type Candle struct {
	OpenTime  time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	CloseTime time.Time
}
