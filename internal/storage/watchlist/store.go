// Package watchlist persists per-room market watchlists.
package watchlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS watchlists (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	markets    TEXT NOT NULL CHECK(json_valid(markets)),
	created_at INTEGER NOT NULL,
	UNIQUE(room_id)
);`

// Store keeps one watchlist row per room, markets serialized as a JSON array.
type Store struct {
	db *sql.DB
}

// NewStore creates the watchlist store and its table.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db handle is required")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "create watchlists table")
	}
	return &Store{db: db}, nil
}

// Get returns the markets watched in the room. A room without a watchlist
// yields an empty slice, not an error.
func (s *Store) Get(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT markets FROM watchlists WHERE room_id = ?`, roomID.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query watchlist")
	}

	var markets []string
	if err := json.Unmarshal([]byte(payload), &markets); err != nil {
		return nil, errors.Wrap(err, "decode watchlist markets")
	}

	return markets, nil
}

// Upsert replaces the room's watchlist with the given markets.
func (s *Store) Upsert(ctx context.Context, roomID, userID uuid.UUID, markets []string) error {
	if markets == nil {
		markets = []string{}
	}

	payload, err := json.Marshal(markets)
	if err != nil {
		return errors.Wrap(err, "encode watchlist markets")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO watchlists (id, room_id, user_id, markets, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			markets = excluded.markets,
			created_at = excluded.created_at`,
		uuid.NewString(), roomID.String(), userID.String(), string(payload), time.Now().UnixMilli())
	if err != nil {
		return errors.Wrap(err, "upsert watchlist")
	}

	return nil
}

// Remove deletes the room's watchlist. Removing a missing watchlist is a no-op.
func (s *Store) Remove(ctx context.Context, roomID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlists WHERE room_id = ?`, roomID.String()); err != nil {
		return errors.Wrap(err, "remove watchlist")
	}
	return nil
}
