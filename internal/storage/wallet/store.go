// Package wallet implements the simulated multi-asset wallet ledger.
//
// One balance row exists per (agent, asset) pair. A simulated trade settles
// as an atomic debit/credit pair inside a single SQLite transaction: either
// both legs apply durably or neither does. The ledger enforces solvency and
// atomicity only; pricing fairness belongs to the quote source.
package wallet

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS agent_balances (
	agent_id TEXT NOT NULL,
	asset    TEXT NOT NULL,
	amount   TEXT NOT NULL,
	PRIMARY KEY (agent_id, asset)
);`

// Store persists per-agent asset balances in SQLite. Amounts are stored as
// exact decimal strings; all arithmetic happens in decimal.Decimal.
type Store struct {
	db       *sql.DB
	registry *domain.Registry
	logger   *zap.Logger

	// afterDebit runs between the two legs of a settlement, inside the
	// transaction. Test seam for atomicity-under-failure checks.
	afterDebit func() error
}

// NewStore creates the ledger store and its table.
func NewStore(db *sql.DB, registry *domain.Registry, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("db handle is required")
	}
	if registry == nil {
		return nil, errors.New("asset registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "create agent_balances table")
	}

	return &Store{db: db, registry: registry, logger: logger}, nil
}

// InitializeWallet credits the fixed default allocation for every supported
// asset, if and only if the agent has no row yet. Idempotent: repeated calls
// are no-ops and never an error.
func (s *Store) InitializeWallet(ctx context.Context, agentID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TransactionError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	for _, asset := range s.registry.Assets() {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO agent_balances (agent_id, asset, amount) VALUES (?, ?, ?)`,
			agentID.String(), asset.Symbol, asset.DefaultBalance.String())
		if err != nil {
			return TransactionError{Op: "init insert", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return TransactionError{Op: "init commit", Err: err}
	}

	s.logger.Debug("simulated wallet initialized", zap.String("agent_id", agentID.String()))

	return nil
}

// Balances returns the agent's full balance row as a symbol->amount mapping.
// Returns AgentNotFoundError when no wallet exists for the agent.
func (s *Store) Balances(ctx context.Context, agentID uuid.UUID) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset, amount FROM agent_balances WHERE agent_id = ?`, agentID.String())
	if err != nil {
		return nil, TransactionError{Op: "balances query", Err: err}
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var asset, amount string
		if err := rows.Scan(&asset, &amount); err != nil {
			return nil, TransactionError{Op: "balances scan", Err: err}
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, BalanceUnavailableError{AgentID: agentID, Asset: asset}
		}
		balances[asset] = parsed
	}
	if err := rows.Err(); err != nil {
		return nil, TransactionError{Op: "balances iterate", Err: err}
	}

	if len(balances) == 0 {
		return nil, AgentNotFoundError{AgentID: agentID}
	}

	return balances, nil
}

// SettleTrade applies one simulated trade: debit sellAmount of sellAsset and
// credit buyAmount of buyAsset, atomically. Preconditions are checked in
// order before any mutation: agent exists, both assets are in the supported
// set, the sell balance is readable, and the sell balance covers the amount
// (exact-balance sells are allowed). The two amounts are independent inputs;
// economic fairness is the quote source's responsibility.
func (s *Store) SettleTrade(ctx context.Context, agentID uuid.UUID, sellAsset string, sellAmount decimal.Decimal, buyAsset string, buyAmount decimal.Decimal) error {
	if sellAsset == buyAsset {
		return errors.Errorf("sell and buy asset must differ, got %s for both", sellAsset)
	}
	if !sellAmount.IsPositive() {
		return errors.Errorf("sell amount must be positive, got %s", sellAmount)
	}
	if buyAmount.IsNegative() {
		return errors.Errorf("buy amount must not be negative, got %s", buyAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TransactionError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agent_balances WHERE agent_id = ?`, agentID.String()).Scan(&count); err != nil {
		return TransactionError{Op: "agent lookup", Err: err}
	}
	if count == 0 {
		return AgentNotFoundError{AgentID: agentID}
	}

	if !s.registry.Contains(sellAsset) {
		return UnknownAssetError{Symbol: sellAsset}
	}
	if !s.registry.Contains(buyAsset) {
		return UnknownAssetError{Symbol: buyAsset}
	}

	sellBalance, err := s.readBalance(ctx, tx, agentID, sellAsset)
	if err != nil {
		return err
	}
	buyBalance, err := s.readBalance(ctx, tx, agentID, buyAsset)
	if err != nil {
		return err
	}

	if sellBalance.LessThan(sellAmount) {
		return InsufficientBalanceError{Asset: sellAsset, Available: sellBalance, Requested: sellAmount}
	}

	if err := s.writeBalance(ctx, tx, agentID, sellAsset, sellBalance.Sub(sellAmount)); err != nil {
		return TransactionError{Op: "debit", Err: err}
	}

	if s.afterDebit != nil {
		if err := s.afterDebit(); err != nil {
			return TransactionError{Op: "debit", Err: err}
		}
	}

	if err := s.writeBalance(ctx, tx, agentID, buyAsset, buyBalance.Add(buyAmount)); err != nil {
		return TransactionError{Op: "credit", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return TransactionError{Op: "commit", Err: err}
	}

	s.logger.Info("simulated trade settled",
		zap.String("agent_id", agentID.String()),
		zap.String("sell_asset", sellAsset),
		zap.String("sell_amount", sellAmount.String()),
		zap.String("buy_asset", buyAsset),
		zap.String("buy_amount", buyAmount.String()))

	return nil
}

func (s *Store) readBalance(ctx context.Context, tx *sql.Tx, agentID uuid.UUID, asset string) (decimal.Decimal, error) {
	var amount string
	err := tx.QueryRowContext(ctx,
		`SELECT amount FROM agent_balances WHERE agent_id = ? AND asset = ?`,
		agentID.String(), asset).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, BalanceUnavailableError{AgentID: agentID, Asset: asset}
	}
	if err != nil {
		return decimal.Zero, TransactionError{Op: "balance read", Err: err}
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, BalanceUnavailableError{AgentID: agentID, Asset: asset}
	}

	return parsed, nil
}

func (s *Store) writeBalance(ctx context.Context, tx *sql.Tx, agentID uuid.UUID, asset string, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE agent_balances SET amount = ? WHERE agent_id = ? AND asset = ?`,
		amount.String(), agentID.String(), asset)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return errors.Errorf("expected to update 1 row for %s/%s, updated %d", agentID, asset, affected)
	}

	return nil
}
