// Package sqlite opens the shared SQLite database used by the persistent stores.
package sqlite

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the database at path.
//
// Options are passed in the DSN so they apply to every pooled connection:
// WAL keeps readers unblocked by writers, the busy timeout bounds waits when
// concurrent settlements contend for the write lock, and immediate
// transactions take the write lock at BEGIN so a read-then-write settlement
// cannot fail on lock upgrade.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "open sqlite database at %s", path)
	}

	return db, nil
}
