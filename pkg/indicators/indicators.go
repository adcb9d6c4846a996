// Package indicators computes the technical readings fed into the trading
// prompt. It wraps the cinar/indicator library, converting between the
// decimal amounts used across the agent and the float64 streams the library
// works on.
package indicators

import (
	"fmt"
	"sync"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot latest technical readings for one reference market.
type Snapshot struct {
	// RSI14 14-period relative strength index (0-100).
	RSI14 decimal.Decimal
	// EMA20 20-period exponential moving average of closes.
	EMA20 decimal.Decimal
	// EMA50 50-period exponential moving average of closes.
	EMA50 decimal.Decimal
	// MACD latest MACD line value.
	MACD decimal.Decimal
	// BollingerWidth upper-lower band distance relative to the middle band.
	BollingerWidth decimal.Decimal
	// LastClose latest close price.
	LastClose decimal.Decimal
}

// EMA computes the exponential moving average series for the period.
func EMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points for EMA%d: need %d, got %d", period, period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	out := helper.ChanToSlice(ema.Compute(helper.SliceToChan(toFloats(closes))))

	return toDecimals(out), nil
}

// RSI computes the relative strength index series for the period.
func RSI(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period+1 {
		return nil, fmt.Errorf("not enough data points for RSI%d: need %d, got %d", period, period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	out := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(toFloats(closes))))

	return toDecimals(out), nil
}

// MACD computes the MACD line series.
func MACD(closes []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(closes) < 26 {
		return nil, fmt.Errorf("not enough data points for MACD: need at least 26, got %d", len(closes))
	}

	macd := trend.NewMacd[float64]()
	macdChan, signalChan := macd.Compute(helper.SliceToChan(toFloats(closes)))

	// the signal channel must be drained or Compute blocks
	go func() {
		for range signalChan {
		}
	}()

	return toDecimals(helper.ChanToSlice(macdChan)), nil
}

// BollingerWidth computes the relative Bollinger band width series.
func BollingerWidth(closes []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(closes) < 20 {
		return nil, fmt.Errorf("not enough data points for Bollinger bands: need at least 20, got %d", len(closes))
	}

	bb := volatility.NewBollingerBands[float64]()
	upperChan, middleChan, lowerChan := bb.Compute(helper.SliceToChan(toFloats(closes)))

	// the three band channels share a duplicated input, drain them together
	var upper, middle, lower []float64
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); upper = helper.ChanToSlice(upperChan) }()
	go func() { defer wg.Done(); middle = helper.ChanToSlice(middleChan) }()
	go func() { defer wg.Done(); lower = helper.ChanToSlice(lowerChan) }()
	wg.Wait()

	n := len(upper)
	if len(middle) < n {
		n = len(middle)
	}
	if len(lower) < n {
		n = len(lower)
	}

	widths := make([]decimal.Decimal, 0, n)
	for i := 0; i < n; i++ {
		if middle[i] == 0 {
			widths = append(widths, decimal.Zero)
			continue
		}
		widths = append(widths, decimal.NewFromFloat((upper[i]-lower[i])/middle[i]))
	}

	return widths, nil
}

// Compute derives the latest snapshot from candles. At least 50 candles are
// needed so every indicator has a full warmup window.
func Compute(candles []domain.Candle) (*Snapshot, error) {
	if len(candles) < 50 {
		return nil, fmt.Errorf("not enough candles: need at least 50, got %d", len(candles))
	}

	closes := make([]decimal.Decimal, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	rsi14, err := RSI(closes, 14)
	if err != nil {
		return nil, err
	}
	ema20, err := EMA(closes, 20)
	if err != nil {
		return nil, err
	}
	ema50, err := EMA(closes, 50)
	if err != nil {
		return nil, err
	}
	macd, err := MACD(closes)
	if err != nil {
		return nil, err
	}
	bbWidth, err := BollingerWidth(closes)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		RSI14:          last(rsi14),
		EMA20:          last(ema20),
		EMA50:          last(ema50),
		MACD:           last(macd),
		BollingerWidth: last(bbWidth),
		LastClose:      closes[len(closes)-1],
	}, nil
}

func last(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return values[len(values)-1]
}

func toFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i], _ = v.Float64()
	}
	return out
}

func toDecimals(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
