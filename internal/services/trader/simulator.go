// Package trader executes approved trade decisions against the simulated
// wallet: it prices the swap through the aggregator, settles both legs
// atomically in the ledger and journals the result.
package trader

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/clients"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/storage/wallet"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteFetcher prices a swap through the aggregator.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, sellTokenAddress, buyTokenAddress string, sellAmount *big.Int) (*clients.Quote, error)
}

// Ledger settles trades against the simulated wallet.
type Ledger interface {
	SettleTrade(ctx context.Context, agentID uuid.UUID, sellAsset string, sellAmount decimal.Decimal, buyAsset string, buyAmount decimal.Decimal) error
}

// Journal records executed settlements.
type Journal interface {
	Append(settlement domain.Settlement) error
}

// Result the outcome of one decision.
type Result struct {
	// Executed true when the swap settled in the ledger.
	Executed bool
	// Reason human-readable explanation when the trade was skipped or declined.
	Reason string
	// Settlement details of the executed swap, nil when not executed.
	Settlement *domain.Settlement
}

// Simulator turns approved decisions into simulated settlements.
type Simulator struct {
	quotes   QuoteFetcher
	ledger   Ledger
	journal  Journal
	registry *domain.Registry
	logger   *zap.Logger
}

func NewSimulator(quotes QuoteFetcher, ledger Ledger, journal Journal, registry *domain.Registry, logger *zap.Logger) *Simulator {
	return &Simulator{
		quotes:   quotes,
		ledger:   ledger,
		journal:  journal,
		registry: registry,
		logger:   logger,
	}
}

// Execute carries out one trade decision for the agent. Wallet-level declines
// (insufficient balance, unknown agent) come back as a non-executed Result,
// not an error: they are expected outcomes of an aggressive model, and the
// run loop continues to the next cycle.
func (s *Simulator) Execute(ctx context.Context, agentID uuid.UUID, decision *domain.TradeDecision) (*Result, error) {
	if decision == nil {
		return nil, errors.New("decision is nil")
	}
	if !decision.Approved() {
		return &Result{Executed: false, Reason: "model declined to trade: " + decision.Explanation}, nil
	}
	if err := decision.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid trade decision")
	}

	sellAsset, ok := s.registry.ByAddress(decision.Swap.SellTokenAddress)
	if !ok {
		return &Result{Executed: false, Reason: "sell token " + decision.Swap.SellTokenAddress + " is not supported"}, nil
	}
	buyAsset, ok := s.registry.ByAddress(decision.Swap.BuyTokenAddress)
	if !ok {
		return &Result{Executed: false, Reason: "buy token " + decision.Swap.BuyTokenAddress + " is not supported"}, nil
	}

	sellWei, ok := new(big.Int).SetString(decision.Swap.SellAmount, 10)
	if !ok || sellWei.Sign() <= 0 {
		return nil, errors.Errorf("invalid sell amount %q", decision.Swap.SellAmount)
	}

	quote, err := s.quotes.FetchQuote(ctx, sellAsset.Address, buyAsset.Address, sellWei)
	if err != nil {
		return nil, errors.Wrap(err, "fetch quote")
	}
	if quote.BuyAmount == nil || quote.BuyAmount.Sign() <= 0 {
		return nil, errors.Errorf("quote %s returned non-positive buy amount", quote.QuoteID)
	}

	sellAmount := sellAsset.FromWei(sellWei)
	buyAmount := buyAsset.FromWei(quote.BuyAmount)

	err = s.ledger.SettleTrade(ctx, agentID, sellAsset.Symbol, sellAmount, buyAsset.Symbol, buyAmount)
	if err != nil {
		if reason, declined := declineReason(err); declined {
			s.logger.Info("trade declined by wallet",
				zap.String("agent", agentID.String()),
				zap.String("reason", reason))
			return &Result{Executed: false, Reason: reason}, nil
		}
		return nil, errors.Wrap(err, "settle trade")
	}

	settlement := domain.Settlement{
		AgentID:    agentID,
		SellAsset:  sellAsset.Symbol,
		SellAmount: sellAmount,
		BuyAsset:   buyAsset.Symbol,
		BuyAmount:  buyAmount,
		QuoteID:    quote.QuoteID,
		ExecutedAt: time.Now().UTC(),
	}

	if err := s.journal.Append(settlement); err != nil {
		// the ledger already committed, a journaling failure must not undo it
		s.logger.Error("failed to journal settlement", zap.Error(err))
	}

	s.logger.Info("simulated trade executed",
		zap.String("agent", agentID.String()),
		zap.String("sell", sellAmount.String()+" "+sellAsset.Symbol),
		zap.String("buy", buyAmount.String()+" "+buyAsset.Symbol),
		zap.String("quote", quote.QuoteID))

	return &Result{Executed: true, Settlement: &settlement}, nil
}

// declineReason classifies wallet errors that represent an expected decline
// rather than a system failure.
func declineReason(err error) (string, bool) {
	var insufficient wallet.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		return insufficient.Error(), true
	}
	var notFound wallet.AgentNotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error(), true
	}
	var unknownAsset wallet.UnknownAssetError
	if errors.As(err, &unknownAsset) {
		return unknownAsset.Error(), true
	}
	return "", false
}
