package db

import (
	"database/sql"

	"github.com/go-faster/errors"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "migration %d", i)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		username   TEXT NOT NULL DEFAULT '',
		api_url    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		expires_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at)`,
}
