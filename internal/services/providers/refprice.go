package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
	"github.com/shopspring/decimal"
)

// PriceGetter reads the last traded price for a spot symbol.
type PriceGetter interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// ReferencePriceProvider renders spot prices from a centralized venue so the
// model can cross-check aggregator pricing.
type ReferencePriceProvider struct {
	pricer  PriceGetter
	symbols []string
}

func NewReferencePriceProvider(pricer PriceGetter, symbols []string) *ReferencePriceProvider {
	return &ReferencePriceProvider{pricer: pricer, symbols: symbols}
}

func (p *ReferencePriceProvider) Name() string { return "reference_prices" }

func (p *ReferencePriceProvider) Provide(ctx context.Context) (promptbuilder.Section, error) {
	if len(p.symbols) == 0 {
		return promptbuilder.Section{}, errors.New("no reference symbols configured")
	}

	var sb strings.Builder
	var rows int
	for _, symbol := range p.symbols {
		price, err := p.pricer.GetPrice(ctx, symbol)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("**%s:** %s\n", symbol, price.String()))
		rows++
	}

	if rows == 0 {
		return promptbuilder.Section{}, errors.New("no reference prices available")
	}

	return promptbuilder.Section{Title: "Reference Prices", Body: sb.String()}, nil
}
