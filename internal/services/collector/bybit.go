package collector

import (
	"context"
	"strconv"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/shopspring/decimal"
)

const bybitCategory = "spot"

// BybitKlineProvider implements KlineProvider for Bybit.
type BybitKlineProvider struct {
	client *bybit.Client
}

// NewBybitKlineProvider creates a Bybit kline provider.
func NewBybitKlineProvider(client *bybit.Client) *BybitKlineProvider {
	return &BybitKlineProvider{client: client}
}

// GetKlines fetches candles from Bybit, e.g. symbol "BTCUSDT" interval "60".
// Bybit returns candles newest-first; the result is reversed into ascending
// time order.
func (p *BybitKlineProvider) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]domain.Candle, error) {
	klines, err := p.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybitCategory,
		Symbol:   bybit.SymbolV5(symbol),
		Interval: bybit.Interval(interval),
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch klines from Bybit for %s", symbol)
	}

	list := klines.Result.List
	if len(list) == 0 {
		return nil, errors.Errorf("no klines received from Bybit for %s", symbol)
	}

	intervalDuration, err := bybitIntervalDuration(interval)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Candle, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		k := list[i]

		startMs, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse start time %q", k.StartTime)
		}
		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, errors.Wrapf(err, "parse open price %q", k.Open)
		}
		high, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, errors.Wrapf(err, "parse high price %q", k.High)
		}
		low, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, errors.Wrapf(err, "parse low price %q", k.Low)
		}
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "parse close price %q", k.Close)
		}
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, errors.Wrapf(err, "parse volume %q", k.Volume)
		}

		openTime := time.Unix(0, startMs*int64(time.Millisecond))
		result = append(result, domain.Candle{
			OpenTime:  openTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			CloseTime: openTime.Add(intervalDuration),
		})
	}

	return result, nil
}

func bybitIntervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case "D":
		return 24 * time.Hour, nil
	case "W":
		return 7 * 24 * time.Hour, nil
	case "M":
		return 30 * 24 * time.Hour, nil
	}

	minutes, err := strconv.Atoi(interval)
	if err != nil {
		return 0, errors.Errorf("unsupported bybit interval %q", interval)
	}
	return time.Duration(minutes) * time.Minute, nil
}
