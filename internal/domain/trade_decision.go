package domain

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const (
	decisionYes = "yes"
	decisionNo  = "no"
)

// SwapRequest the swap legs proposed by the model. Amounts are expressed in
// wei of the sell token, addresses as 0x felts.
type SwapRequest struct {
	SellTokenAddress string `json:"sellTokenAddress"`
	BuyTokenAddress  string `json:"buyTokenAddress"`
	SellAmount       string `json:"sellAmount"`
}

// TradeDecision the model's structured answer to "should we swap now".
type TradeDecision struct {
	ShouldTrade string      `json:"shouldTrade"`
	Swap        SwapRequest `json:"swap"`
	Explanation string      `json:"Explanation"`
	Tweet       string      `json:"Tweet"`
}

// Approved reports whether the model decided to trade.
func (d *TradeDecision) Approved() bool {
	return strings.EqualFold(d.ShouldTrade, decisionYes)
}

// ParseTradeDecision parses a raw model response into a validated decision.
// The response may be wrapped in a markdown code fence.
func ParseTradeDecision(raw string) (*TradeDecision, error) {
	payload := sanitizeDecisionPayload(raw)

	if !json.Valid([]byte(payload)) {
		return nil, errors.New("decision is not valid JSON")
	}

	var decision TradeDecision
	if err := json.Unmarshal([]byte(payload), &decision); err != nil {
		return nil, errors.Wrap(err, "decode trade decision")
	}

	if err := decision.Validate(); err != nil {
		return nil, err
	}

	return &decision, nil
}

func sanitizeDecisionPayload(raw string) string {
	payload := strings.TrimSpace(raw)

	// models occasionally prepend prose before the fenced block
	if idx := strings.Index(payload, "```"); idx > 0 {
		payload = payload[idx:]
	}

	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	return strings.TrimSpace(payload)
}

// Validate checks structural validity. Swap legs are only required for an
// approving decision.
func (d *TradeDecision) Validate() error {
	switch strings.ToLower(d.ShouldTrade) {
	case decisionYes:
	case decisionNo:
		return nil
	default:
		return errors.Errorf("shouldTrade must be %q or %q, got %q", decisionYes, decisionNo, d.ShouldTrade)
	}

	if !IsFeltAddress(d.Swap.SellTokenAddress) {
		return errors.Errorf("invalid sell token address %q", d.Swap.SellTokenAddress)
	}
	if !IsFeltAddress(d.Swap.BuyTokenAddress) {
		return errors.Errorf("invalid buy token address %q", d.Swap.BuyTokenAddress)
	}
	if NormalizeAddress(d.Swap.SellTokenAddress) == NormalizeAddress(d.Swap.BuyTokenAddress) {
		return errors.New("sell and buy token addresses must differ")
	}
	if d.Swap.SellAmount == "" {
		return errors.New("sell amount is required")
	}

	return nil
}
