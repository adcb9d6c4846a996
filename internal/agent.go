// Package internal wires the decision loop: gather context, ask the model,
// simulate the trade.
package internal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
	"github.com/qmerle/simbot/internal/services/trader"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletStore is the subset of the ledger the agent drives directly.
type WalletStore interface {
	InitializeWallet(ctx context.Context, agentID uuid.UUID) error
	Balances(ctx context.Context, agentID uuid.UUID) (map[string]decimal.Decimal, error)
}

// SectionCollector gathers prompt sections from the providers.
type SectionCollector interface {
	Collect(ctx context.Context) []promptbuilder.Section
}

// LLM produces a completion for a system/user prompt pair.
type LLM interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DecisionExecutor settles an approved decision against the simulated wallet.
type DecisionExecutor interface {
	Execute(ctx context.Context, agentID uuid.UUID, decision *domain.TradeDecision) (*trader.Result, error)
}

// Agent runs the periodic decision loop for one simulated wallet.
type Agent struct {
	agentID       uuid.UUID
	interval      time.Duration
	wallet        WalletStore
	collector     SectionCollector
	promptBuilder *promptbuilder.PromptBuilder
	llm           LLM
	executor      DecisionExecutor
	logger        *zap.Logger
}

// NewAgent creates the agent loop for one wallet.
func NewAgent(
	agentID uuid.UUID,
	interval time.Duration,
	wallet WalletStore,
	collector SectionCollector,
	promptBuilder *promptbuilder.PromptBuilder,
	llm LLM,
	executor DecisionExecutor,
	logger *zap.Logger,
) (*Agent, error) {
	if agentID == uuid.Nil {
		return nil, errors.New("agent id is required")
	}
	if interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	return &Agent{
		agentID:       agentID,
		interval:      interval,
		wallet:        wallet,
		collector:     collector,
		promptBuilder: promptBuilder,
		llm:           llm,
		executor:      executor,
		logger:        logger.With(zap.String("agent", agentID.String())),
	}, nil
}

// Run initializes the wallet and loops until the context is done. Cycle
// failures are logged and the loop continues; only initialization failure and
// context cancellation end the run.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.wallet.InitializeWallet(ctx, a.agentID); err != nil {
		return errors.Wrap(err, "initialize wallet")
	}

	a.logger.Info("starting decision loop", zap.Duration("interval", a.interval))

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("context done, stopping decision loop")
			return ctx.Err()
		case <-ticker.C:
			if err := a.RunCycle(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				a.logger.Error("decision cycle failed", zap.Error(err))
			}
		}
	}
}

// RunCycle performs one full decision cycle.
func (a *Agent) RunCycle(ctx context.Context) error {
	balances, err := a.wallet.Balances(ctx, a.agentID)
	if err != nil {
		return errors.Wrap(err, "read balances")
	}

	marketContext := promptbuilder.MarketContext{
		Holdings: a.promptBuilder.HoldingsFromBalances(balances),
		Sections: a.collector.Collect(ctx),
	}

	userPrompt := a.promptBuilder.BuildUserPrompt(marketContext)

	response, err := a.llm.Complete(ctx, promptbuilder.SystemPrompt, userPrompt)
	if err != nil {
		return errors.Wrap(err, "llm completion")
	}

	decision, err := domain.ParseTradeDecision(response)
	if err != nil {
		return errors.Wrap(err, "parse decision")
	}

	result, err := a.executor.Execute(ctx, a.agentID, decision)
	if err != nil {
		return errors.Wrap(err, "execute decision")
	}

	if result.Executed {
		a.logger.Info("cycle complete, trade executed",
			zap.String("sell", result.Settlement.SellAmount.String()+" "+result.Settlement.SellAsset),
			zap.String("buy", result.Settlement.BuyAmount.String()+" "+result.Settlement.BuyAsset),
			zap.String("tweet", decision.Tweet))
	} else {
		a.logger.Info("cycle complete, no trade", zap.String("reason", result.Reason))
	}

	return nil
}
