package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
)

// PriceFeedFetcher fetches the daily close price line for a token address.
type PriceFeedFetcher interface {
	PriceFeed(ctx context.Context, tokenAddress string) ([]domain.PricePoint, error)
}

// PriceFeedProvider renders recent daily closes for the tracked tokens.
type PriceFeedProvider struct {
	fetcher  PriceFeedFetcher
	registry *domain.Registry
	symbols  []string
	points   int
}

// NewPriceFeedProvider creates a price feed provider. points caps how many of
// the most recent samples are rendered per token.
func NewPriceFeedProvider(fetcher PriceFeedFetcher, registry *domain.Registry, symbols []string, points int) *PriceFeedProvider {
	if len(symbols) == 0 {
		symbols = registry.Symbols()
	}
	if points <= 0 {
		points = 14
	}
	return &PriceFeedProvider{fetcher: fetcher, registry: registry, symbols: symbols, points: points}
}

func (p *PriceFeedProvider) Name() string { return "price_feeds" }

func (p *PriceFeedProvider) Provide(ctx context.Context) (promptbuilder.Section, error) {
	var sb strings.Builder

	var rows int
	for _, symbol := range p.symbols {
		asset, ok := p.registry.BySymbol(symbol)
		if !ok {
			continue
		}

		feed, err := p.fetcher.PriceFeed(ctx, asset.Address)
		if err != nil || len(feed) == 0 {
			continue
		}

		if len(feed) > p.points {
			feed = feed[len(feed)-p.points:]
		}

		sb.WriteString(fmt.Sprintf("**%s daily closes:** [", symbol))
		for i, point := range feed {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(fmt.Sprintf("%.6g", point.Value))
		}
		sb.WriteString(fmt.Sprintf("] (latest: %s)\n", feed[len(feed)-1].Date))
		rows++
	}

	if rows == 0 {
		return promptbuilder.Section{}, fmt.Errorf("no price feeds available")
	}

	return promptbuilder.Section{Title: "Price Feeds", Body: sb.String()}, nil
}
