package wallet

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/storage/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "simbot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, domain.DefaultRegistry(), zap.NewNop())
	require.NoError(t, err)

	return store
}

func TestInitializeWallet_Defaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()

	require.NoError(t, store.InitializeWallet(ctx, agent))

	balances, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	require.Len(t, balances, 17)
	assert.True(t, balances["USDC"].Equal(decimal.NewFromInt(7500)))
	assert.True(t, balances["ETH"].Equal(decimal.NewFromFloat(1.64)))
	assert.True(t, balances["STRK"].Equal(decimal.NewFromInt(150)))
	assert.True(t, balances["WBTC"].Equal(decimal.Zero))
}

func TestInitializeWallet_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()

	require.NoError(t, store.InitializeWallet(ctx, agent))

	// spend some USDC, then re-initialize: balances must not reset
	require.NoError(t, store.SettleTrade(ctx, agent, "USDC", decimal.NewFromInt(500), "ETH", decimal.NewFromFloat(0.2)))
	require.NoError(t, store.InitializeWallet(ctx, agent))

	balances, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	assert.True(t, balances["USDC"].Equal(decimal.NewFromInt(7000)))
}

func TestBalances_UnknownAgent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Balances(context.Background(), uuid.New())
	require.Error(t, err)

	var notFound AgentNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSettleTrade_Conservation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	before, err := store.Balances(ctx, agent)
	require.NoError(t, err)

	sellAmount := decimal.NewFromInt(500)
	buyAmount := decimal.NewFromFloat(0.2)
	require.NoError(t, store.SettleTrade(ctx, agent, "USDC", sellAmount, "ETH", buyAmount))

	after, err := store.Balances(ctx, agent)
	require.NoError(t, err)

	assert.True(t, before["USDC"].Sub(after["USDC"]).Equal(sellAmount))
	assert.True(t, after["ETH"].Sub(before["ETH"]).Equal(buyAmount))

	// every other asset untouched
	for asset, amount := range before {
		if asset == "USDC" || asset == "ETH" {
			continue
		}
		assert.True(t, after[asset].Equal(amount), "asset %s changed", asset)
	}
}

func TestSettleTrade_AgentNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.SettleTrade(context.Background(), uuid.New(), "USDC", decimal.NewFromInt(1), "ETH", decimal.NewFromInt(1))
	require.Error(t, err)

	var notFound AgentNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSettleTrade_UnknownAsset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	before, err := store.Balances(ctx, agent)
	require.NoError(t, err)

	err = store.SettleTrade(ctx, agent, "NON_EXISTENT_ASSET", decimal.NewFromInt(1), "ETH", decimal.NewFromInt(1))
	require.Error(t, err)

	var unknown UnknownAssetError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "NON_EXISTENT_ASSET", unknown.Symbol)

	// buy side is validated too
	err = store.SettleTrade(ctx, agent, "ETH", decimal.NewFromInt(1), "NON_EXISTENT_ASSET", decimal.NewFromInt(1))
	require.True(t, errors.As(err, &unknown))

	after, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	for asset, amount := range before {
		assert.True(t, after[asset].Equal(amount), "asset %s changed", asset)
	}
}

func TestSettleTrade_AgentCheckedBeforeAssets(t *testing.T) {
	store := newTestStore(t)

	// unknown agent AND unknown asset: agent existence wins
	err := store.SettleTrade(context.Background(), uuid.New(), "NON_EXISTENT_ASSET", decimal.NewFromInt(1), "ETH", decimal.NewFromInt(1))
	require.Error(t, err)

	var notFound AgentNotFoundError
	var unknown UnknownAssetError
	assert.True(t, errors.As(err, &notFound))
	assert.False(t, errors.As(err, &unknown))
}

func TestSettleTrade_InsufficientBalanceBoundary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	// bring STRK to exactly 100
	require.NoError(t, store.SettleTrade(ctx, agent, "STRK", decimal.NewFromInt(50), "USDC", decimal.NewFromInt(25)))

	// selling the exact balance is allowed
	require.NoError(t, store.SettleTrade(ctx, agent, "STRK", decimal.NewFromInt(100), "USDC", decimal.NewFromInt(50)))

	balances, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	assert.True(t, balances["STRK"].Equal(decimal.Zero))

	// selling a hair more than the balance is not
	err = store.SettleTrade(ctx, agent, "USDC", balances["USDC"].Add(decimal.NewFromFloat(0.000001)), "ETH", decimal.NewFromInt(1))
	require.Error(t, err)

	var insufficient InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(balances["USDC"]))
	assert.True(t, insufficient.Requested.Equal(balances["USDC"].Add(decimal.NewFromFloat(0.000001))))
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestSettleTrade_RejectsNonPositiveAmounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	err := store.SettleTrade(ctx, agent, "USDC", decimal.Zero, "ETH", decimal.NewFromInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")

	err = store.SettleTrade(ctx, agent, "USDC", decimal.NewFromInt(1), "ETH", decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestSettleTrade_AtomicRollbackOnFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	before, err := store.Balances(ctx, agent)
	require.NoError(t, err)

	// fail after the debit leg applied but before the credit leg
	store.afterDebit = func() error { return errors.New("disk on fire") }

	err = store.SettleTrade(ctx, agent, "USDC", decimal.NewFromInt(500), "ETH", decimal.NewFromFloat(0.2))
	require.Error(t, err)

	var txErr TransactionError
	assert.True(t, errors.As(err, &txErr))

	store.afterDebit = nil

	after, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	for asset, amount := range before {
		assert.True(t, after[asset].Equal(amount), "asset %s changed after rollback", asset)
	}
}

func TestSettleTrade_CrossAgentIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agentA := uuid.New()
	agentB := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agentA))
	require.NoError(t, store.InitializeWallet(ctx, agentB))

	require.NoError(t, store.SettleTrade(ctx, agentA, "USDC", decimal.NewFromInt(500), "ETH", decimal.NewFromFloat(0.2)))

	balancesB, err := store.Balances(ctx, agentB)
	require.NoError(t, err)
	assert.True(t, balancesB["USDC"].Equal(decimal.NewFromInt(7500)))
	assert.True(t, balancesB["ETH"].Equal(decimal.NewFromFloat(1.64)))
}

func TestSettleTrade_EndToEndScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	before, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	require.True(t, before["USDC"].Equal(decimal.NewFromInt(7500)))

	require.NoError(t, store.SettleTrade(ctx, agent, "USDC", decimal.NewFromInt(500), "ETH", decimal.NewFromFloat(0.2)))

	after, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	assert.True(t, after["USDC"].Equal(decimal.NewFromInt(7000)))
	assert.True(t, after["ETH"].Equal(before["ETH"].Add(decimal.NewFromFloat(0.2))))

	for asset, amount := range before {
		if asset == "USDC" || asset == "ETH" {
			continue
		}
		assert.True(t, after[asset].Equal(amount), "asset %s changed", asset)
	}
}

func TestSettleTrade_ConcurrentSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	agent := uuid.New()
	require.NoError(t, store.InitializeWallet(ctx, agent))

	const workers = 10
	sellEach := decimal.NewFromInt(100)
	buyEach := decimal.NewFromFloat(0.04)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.SettleTrade(ctx, agent, "USDC", sellEach, "ETH", buyEach)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "settlement %d", i)
	}

	balances, err := store.Balances(ctx, agent)
	require.NoError(t, err)
	assert.True(t, balances["USDC"].Equal(decimal.NewFromInt(7500-workers*100)))
	assert.True(t, balances["ETH"].Equal(decimal.NewFromFloat(1.64).Add(buyEach.Mul(decimal.NewFromInt(workers)))))
}
