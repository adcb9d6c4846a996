// Package collector fetches reference-market candles used for technical
// analysis. Starknet tokens have no deep candle history on the aggregator, so
// BTC and ETH candles from centralized venues serve as the market regime
// reference.
package collector

import (
	"context"

	"github.com/qmerle/simbot/internal/domain"
)

// KlineProvider fetches OHLCV candles for a symbol.
type KlineProvider interface {
	// GetKlines returns up to limit candles in ascending time order.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]domain.Candle, error)
}
