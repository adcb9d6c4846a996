package indicators

import (
	"testing"
	"time"

	"github.com/qmerle/simbot/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risingCandles(n int) []domain.Candle {
	candles := make([]domain.Candle, n)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		price := decimal.NewFromInt(int64(1000 + i))
		candles[i] = domain.Candle{
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price.Add(decimal.NewFromInt(2)),
			Low:       price.Sub(decimal.NewFromInt(2)),
			Close:     price,
			Volume:    decimal.NewFromInt(10),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return candles
}

func TestCompute(t *testing.T) {
	snapshot, err := Compute(risingCandles(60))
	require.NoError(t, err)

	assert.True(t, snapshot.LastClose.Equal(decimal.NewFromInt(1059)))
	// strictly rising closes push RSI to its ceiling
	assert.True(t, snapshot.RSI14.GreaterThan(decimal.NewFromInt(90)), "RSI14 = %s", snapshot.RSI14)
	assert.True(t, snapshot.EMA20.GreaterThan(decimal.Zero))
	assert.True(t, snapshot.EMA50.GreaterThan(decimal.Zero))
	// in an uptrend the short EMA sits above the long one
	assert.True(t, snapshot.EMA20.GreaterThan(snapshot.EMA50))
	assert.True(t, snapshot.MACD.GreaterThan(decimal.Zero))
}

func TestCompute_NotEnoughCandles(t *testing.T) {
	_, err := Compute(risingCandles(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough candles")
}

func TestEMA_NotEnoughData(t *testing.T) {
	_, err := EMA([]decimal.Decimal{decimal.NewFromInt(1)}, 20)
	require.Error(t, err)
}

func TestBollingerWidth_NarrowsOnFlatSeries(t *testing.T) {
	flat := make([]decimal.Decimal, 40)
	for i := range flat {
		flat[i] = decimal.NewFromInt(100)
	}

	widths, err := BollingerWidth(flat)
	require.NoError(t, err)
	require.NotEmpty(t, widths)
	assert.True(t, widths[len(widths)-1].Equal(decimal.Zero))
}
