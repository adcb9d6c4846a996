// Package journal keeps an append-only WAL of executed simulated settlements.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/vadiminshakov/gowal"
)

const (
	// DefaultDir default location of the settlement WAL segments.
	DefaultDir = "./wal/settlements"

	segmentLimit = 1000
	maxSegments  = 20

	settlementKeyPrefix = "settlement_"
)

// Record a journaled settlement with its WAL position.
type Record struct {
	Index      uint64
	Settlement domain.Settlement
}

// WALStore persists settlements in a write-ahead log so the trade history
// survives restarts and can be replayed for audit.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed settlement journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "settlement_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init settlement WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one settlement to the journal.
func (s *WALStore) Append(settlement domain.Settlement) error {
	if s == nil || s.wal == nil {
		return errors.New("settlement journal is not initialized")
	}
	if settlement.AgentID == uuid.Nil {
		return errors.New("settlement agent id is required")
	}
	if settlement.SellAsset == "" || settlement.BuyAsset == "" {
		return errors.New("settlement asset symbols are required")
	}

	payload, err := json.Marshal(settlement)
	if err != nil {
		return errors.Wrap(err, "marshal settlement")
	}

	key := fmt.Sprintf("%s%s", settlementKeyPrefix, settlement.AgentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all settlements journaled after the provided WAL index.
func (s *WALStore) EventsAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("settlement journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, settlementKeyPrefix) {
			continue
		}

		var settlement domain.Settlement
		if err := json.Unmarshal(payload, &settlement); err != nil {
			return nil, errors.Wrap(err, "decode settlement")
		}

		records = append(records, Record{Index: idx, Settlement: settlement})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("settlement journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
