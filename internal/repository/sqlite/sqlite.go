// Package sqlite implements repository.UserRepository on an embedded SQLite
// database. It is the optional driver for deployments where the whole-file
// JSON store's last-writer-wins granularity is not acceptable: every
// read-modify-write runs inside a transaction, so concurrent mutations of
// different records cannot clobber each other.
//
// modernc.org/sqlite is a pure-Go translation of SQLite, so the binary
// cross-compiles without a C toolchain.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB connection pool and implements the user repository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool. Callers should defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the users table. Column names follow the JSON store's
// record schema so the two drivers stay field-compatible.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			email          TEXT PRIMARY KEY,
			password       TEXT NOT NULL,
			name           TEXT NOT NULL DEFAULT '',
			student_id     TEXT NOT NULL DEFAULT '',
			payment_status TEXT NOT NULL DEFAULT 'Incomplete',
			trx_id         TEXT NOT NULL DEFAULT '',
			bio            TEXT NOT NULL DEFAULT '',
			joined_at      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_users_payment_status ON users(payment_status);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}
