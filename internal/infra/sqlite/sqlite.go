// Package sqlite persists account snapshots: the (sources, ledger, tier)
// state the engine operates on. Snapshots round-trip losslessly; the
// transaction log is append-only and idempotent to re-persist.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle used for all account persistence.
type DB struct {
	db *sql.DB
}

// Open creates (if needed) and migrates the database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer: the account manager serializes writes per account and
	// SQLite serializes across accounts.
	handle.SetMaxOpenConns(1)

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

// migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id           TEXT PRIMARY KEY,
			balance      INTEGER NOT NULL DEFAULT 0,
			total_earned INTEGER NOT NULL DEFAULT 0,
			tier         INTEGER NOT NULL DEFAULT 0,
			active_until TEXT NOT NULL DEFAULT '',
			updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS sources (
			account_id        TEXT NOT NULL,
			id                TEXT NOT NULL,
			kind              TEXT NOT NULL,
			name              TEXT NOT NULL DEFAULT '',
			base_yield        INTEGER NOT NULL DEFAULT 0,
			cooldown_ns       INTEGER NOT NULL DEFAULT 0,
			last_collected_at TEXT NOT NULL DEFAULT '',
			position          INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (account_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_account ON sources(account_id, position)`,

		// seq gives a stable total order even when timestamps collide;
		// the uuid keeps re-persisted snapshots idempotent.
		`CREATE TABLE IF NOT EXISTS transactions (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			account_id TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			label      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id, seq)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
