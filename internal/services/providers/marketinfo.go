package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
)

// TokenInfoFetcher fetches aggregator market metrics for a token address.
type TokenInfoFetcher interface {
	TokenInfo(ctx context.Context, tokenAddress string) (*domain.TokenMarketData, error)
}

// MarketInfoProvider renders aggregator metrics for the tracked tokens.
type MarketInfoProvider struct {
	fetcher  TokenInfoFetcher
	registry *domain.Registry
	symbols  []string
}

// NewMarketInfoProvider creates a market info provider for the given symbols.
// An empty symbol list means every registry asset.
func NewMarketInfoProvider(fetcher TokenInfoFetcher, registry *domain.Registry, symbols []string) *MarketInfoProvider {
	if len(symbols) == 0 {
		symbols = registry.Symbols()
	}
	return &MarketInfoProvider{fetcher: fetcher, registry: registry, symbols: symbols}
}

func (p *MarketInfoProvider) Name() string { return "market_info" }

// Provide fetches metrics per token. Tokens that fail to resolve are skipped;
// the section fails only when no token yields data.
func (p *MarketInfoProvider) Provide(ctx context.Context) (promptbuilder.Section, error) {
	var sb strings.Builder
	sb.WriteString("```\n")
	sb.WriteString("Token    | Price USD    | 1h%     | 24h%    | 7d%     | Volume 24h   | TVL\n")
	sb.WriteString("---------|--------------|---------|---------|---------|--------------|-------------\n")

	var rows int
	for _, symbol := range p.symbols {
		asset, ok := p.registry.BySymbol(symbol)
		if !ok {
			continue
		}

		info, err := p.fetcher.TokenInfo(ctx, asset.Address)
		if err != nil {
			continue
		}

		sb.WriteString(fmt.Sprintf("%-8s | %12.6f | %+6.2f%% | %+6.2f%% | %+6.2f%% | %12.0f | %12.0f\n",
			symbol,
			info.CurrentPrice,
			info.PriceChangePercentage1h,
			info.PriceChangePercentage24h,
			info.PriceChangePercentage7d,
			info.StarknetVolume24h,
			info.StarknetTvl,
		))
		rows++
	}
	sb.WriteString("```\n")

	if rows == 0 {
		return promptbuilder.Section{}, fmt.Errorf("no token market data available")
	}

	return promptbuilder.Section{Title: "Market Info", Body: sb.String()}, nil
}
