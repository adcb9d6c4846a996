// Package promptbuilder assembles the user prompt for trading decisions from
// wallet state and the context sections produced by the providers.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/qmerle/simbot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Section one named block of market context.
type Section struct {
	Title string
	Body  string
}

// Holding one wallet line rendered into the prompt.
type Holding struct {
	Symbol   string
	Address  string
	Decimals int32
	Balance  decimal.Decimal
}

// MarketContext everything the prompt is built from.
type MarketContext struct {
	Holdings []Holding
	Sections []Section
}

// PromptBuilder renders MarketContext into the LLM user prompt.
type PromptBuilder struct {
	registry *domain.Registry
	logger   *zap.Logger
}

func NewPromptBuilder(registry *domain.Registry, logger *zap.Logger) *PromptBuilder {
	return &PromptBuilder{registry: registry, logger: logger}
}

// HoldingsFromBalances pairs wallet balances with registry token metadata,
// in registry order.
func (pb *PromptBuilder) HoldingsFromBalances(balances map[string]decimal.Decimal) []Holding {
	holdings := make([]Holding, 0, len(balances))
	for _, asset := range pb.registry.Assets() {
		balance, ok := balances[asset.Symbol]
		if !ok {
			continue
		}
		holdings = append(holdings, Holding{
			Symbol:   asset.Symbol,
			Address:  asset.Address,
			Decimals: asset.Decimals,
			Balance:  balance,
		})
	}
	return holdings
}

// BuildUserPrompt constructs the complete user prompt from market context.
func (pb *PromptBuilder) BuildUserPrompt(ctx MarketContext) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio Decision Request\n\n")

	sb.WriteString("## Wallet\n\n")
	if len(ctx.Holdings) == 0 {
		sb.WriteString("No balances available\n\n")
	} else {
		sb.WriteString("```\n")
		sb.WriteString("Token    | Balance              | Decimals | Address\n")
		sb.WriteString("---------|----------------------|----------|--------\n")
		for _, h := range ctx.Holdings {
			sb.WriteString(fmt.Sprintf("%-8s | %20s | %8d | %s\n",
				h.Symbol, h.Balance.String(), h.Decimals, h.Address))
		}
		sb.WriteString("```\n\n")
	}

	for _, section := range ctx.Sections {
		if strings.TrimSpace(section.Body) == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", section.Title))
		sb.WriteString(section.Body)
		if !strings.HasSuffix(section.Body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Instructions\n\n")
	sb.WriteString("Analyze the data above and provide your trading decision in JSON format.\n")
	sb.WriteString("Swap only between wallet tokens, never sell more than the wallet holds.\n")

	prompt := sb.String()
	pb.logger.Debug("built user prompt", zap.Int("length", len(prompt)), zap.Int("sections", len(ctx.Sections)))

	return prompt
}
