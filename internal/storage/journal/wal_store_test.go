package journal

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettlement(agent uuid.UUID) domain.Settlement {
	return domain.Settlement{
		AgentID:    agent,
		SellAsset:  "USDC",
		SellAmount: decimal.NewFromInt(500),
		BuyAsset:   "ETH",
		BuyAmount:  decimal.NewFromFloat(0.2),
		QuoteID:    "q-1",
		ExecutedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestWALStore_AppendAndReplay(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	agent := uuid.New()
	base := store.CurrentIndex()

	first := newSettlement(agent)
	require.NoError(t, store.Append(first))

	second := newSettlement(agent)
	second.SellAsset = "ETH"
	second.BuyAsset = "STRK"
	require.NoError(t, store.Append(second))

	records, err := store.EventsAfter(base)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "USDC", records[0].Settlement.SellAsset)
	assert.True(t, records[0].Settlement.SellAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "STRK", records[1].Settlement.BuyAsset)
	assert.Equal(t, agent, records[1].Settlement.AgentID)

	// nothing after the latest index
	empty, err := store.EventsAfter(store.CurrentIndex())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWALStore_RejectsIncompleteSettlements(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.Append(domain.Settlement{SellAsset: "USDC", BuyAsset: "ETH"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent id is required")

	err = store.Append(domain.Settlement{AgentID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asset symbols are required")
}
