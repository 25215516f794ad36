// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver (no CGo, cross-compiles everywhere).
// Use ":memory:" as the path for a throwaway database in tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/event-planner/internal/apperror"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It owns the pool's lifecycle: New opens it, Close releases it.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies the pragmas, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would open its own empty
	// database; pin the pool to one connection so all queries share it.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Surface a bad path or permissions problem now, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — needed for a
	// web server with parallel requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Referential integrity is off by default in SQLite. Account deletion
	// relies on the ON DELETE CASCADE clauses below.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer this wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			start_time   DATETIME NOT NULL,
			end_time     DATETIME NOT NULL,
			location     TEXT NOT NULL DEFAULT '',
			public       INTEGER NOT NULL DEFAULT 0,
			tags         TEXT NOT NULL DEFAULT '[]',
			organizer_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_events_organizer_id ON events(organizer_id);

		CREATE TABLE IF NOT EXISTS event_participants (
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (event_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating events tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			content    TEXT NOT NULL,
			event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_event_id ON posts(event_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	// Friendships are stored as a symmetric pair of directed rows, one per
	// direction, both written in the same transaction.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS friends (
			user1_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user2_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (user1_id, user2_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating friends table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			message    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating notifications table: %w", err)
	}

	return nil
}

// uniqueViolation translates the driver's unique-constraint error into the
// violated field name. The driver reports these as plain-text messages of
// the form "UNIQUE constraint failed: users.email".
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return "", false
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return "email", true
	case strings.Contains(msg, "users.username"):
		return "username", true
	}
	return "", false
}

// conflictFromUnique maps a unique violation to the field-keyed Conflict
// error the handlers serialize as a 400 body, matching the shape of the
// validator's own errors.
func conflictFromUnique(err error) (error, bool) {
	field, ok := uniqueViolation(err)
	if !ok {
		return nil, false
	}
	return apperror.Conflict(field, field+" already exists"), true
}
