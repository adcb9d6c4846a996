package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/services/collector"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
	"github.com/qmerle/simbot/pkg/indicators"
)

// TechnicalProvider renders indicator readings from reference-market candles.
type TechnicalProvider struct {
	klines   collector.KlineProvider
	symbols  []string
	interval string
	limit    int
}

// NewTechnicalProvider creates a technical analysis provider over the given
// reference symbols (e.g. BTCUSDT, ETHUSDT).
func NewTechnicalProvider(klines collector.KlineProvider, symbols []string, interval string, limit int) *TechnicalProvider {
	if interval == "" {
		interval = "1h"
	}
	if limit < 50 {
		limit = 100
	}
	return &TechnicalProvider{klines: klines, symbols: symbols, interval: interval, limit: limit}
}

func (p *TechnicalProvider) Name() string { return "technical_analysis" }

func (p *TechnicalProvider) Provide(ctx context.Context) (promptbuilder.Section, error) {
	if len(p.symbols) == 0 {
		return promptbuilder.Section{}, errors.New("no reference symbols configured")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reference markets, %s candles:\n\n", p.interval))
	sb.WriteString("```\n")
	sb.WriteString("Market   | Close      | RSI14 | EMA20      | EMA50      | MACD     | BB Width\n")
	sb.WriteString("---------|------------|-------|------------|------------|----------|--------\n")

	var rows int
	for _, symbol := range p.symbols {
		candles, err := p.klines.GetKlines(ctx, symbol, p.interval, p.limit)
		if err != nil {
			continue
		}

		snapshot, err := indicators.Compute(candles)
		if err != nil {
			continue
		}

		sb.WriteString(fmt.Sprintf("%-8s | %10s | %5s | %10s | %10s | %8s | %6s\n",
			symbol,
			snapshot.LastClose.StringFixed(2),
			snapshot.RSI14.StringFixed(1),
			snapshot.EMA20.StringFixed(2),
			snapshot.EMA50.StringFixed(2),
			snapshot.MACD.StringFixed(2),
			snapshot.BollingerWidth.StringFixed(4),
		))
		rows++
	}
	sb.WriteString("```\n")

	if rows == 0 {
		return promptbuilder.Section{}, errors.New("no technical readings available")
	}

	return promptbuilder.Section{Title: "Technical Analysis", Body: sb.String()}, nil
}
