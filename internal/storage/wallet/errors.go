package wallet

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentNotFoundError no balance row exists for the agent. Callers recover by
// initializing the wallet explicitly; settlement never fabricates balances.
type AgentNotFoundError struct {
	AgentID uuid.UUID
}

func (e AgentNotFoundError) Error() string {
	return fmt.Sprintf("agent %s not found in agent_balances", e.AgentID)
}

// UnknownAssetError the asset symbol is outside the supported set. Indicates
// a caller bug or a stale asset list, never retried.
type UnknownAssetError struct {
	Symbol string
}

func (e UnknownAssetError) Error() string {
	return fmt.Sprintf("unknown asset %q: not in the supported asset set", e.Symbol)
}

// BalanceUnavailableError the row exists but the stored value for the asset
// could not be read. Unreachable while schema invariants hold.
type BalanceUnavailableError struct {
	AgentID uuid.UUID
	Asset   string
}

func (e BalanceUnavailableError) Error() string {
	return fmt.Sprintf("could not retrieve %s balance for agent %s", e.Asset, e.AgentID)
}

// InsufficientBalanceError the solvency check failed. Expected and
// user-facing; reports both sides so callers can explain the decline.
type InsufficientBalanceError struct {
	Asset     string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: %s %s available, tried to sell %s",
		e.Available, e.Asset, e.Requested)
}

// TransactionError the atomic commit failed for a storage-layer reason.
// Safe to retry with the same parameters: no partial effect was applied.
type TransactionError struct {
	Op  string
	Err error
}

func (e TransactionError) Error() string {
	return fmt.Sprintf("wallet transaction failed during %s: %v", e.Op, e.Err)
}

func (e TransactionError) Unwrap() error {
	return e.Err
}
