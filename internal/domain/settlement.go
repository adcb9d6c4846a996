package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement the atomic debit/credit pair representing one executed
// simulated trade, in token units.
type Settlement struct {
	AgentID    uuid.UUID       `json:"agent_id"`
	SellAsset  string          `json:"sell_asset"`
	SellAmount decimal.Decimal `json:"sell_amount"`
	BuyAsset   string          `json:"buy_asset"`
	BuyAmount  decimal.Decimal `json:"buy_amount"`
	// QuoteID identifier of the aggregator quote the trade was priced from.
	QuoteID    string    `json:"quote_id,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}
