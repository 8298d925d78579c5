// Package sqlite provides SQLite-based storage for the quote corpus.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS seasons (
			number INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS episodes (
			season INTEGER NOT NULL REFERENCES seasons(number) ON DELETE CASCADE,
			number INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (season, number)
		);

		CREATE TABLE IF NOT EXISTS episode_characters (
			season INTEGER NOT NULL,
			episode INTEGER NOT NULL,
			character_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			appearances INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (season, episode, character_id),
			FOREIGN KEY (season, episode) REFERENCES episodes(season, number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS scenes (
			id INTEGER PRIMARY KEY,
			season INTEGER NOT NULL,
			episode INTEGER NOT NULL,
			position INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0,
			UNIQUE (season, episode, position),
			FOREIGN KEY (season, episode) REFERENCES episodes(season, number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS quotes (
			id INTEGER PRIMARY KEY,
			scene_id INTEGER NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			speaker TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL DEFAULT '',
			is_annotated INTEGER NOT NULL DEFAULT 0,
			character_id TEXT NOT NULL DEFAULT '',
			deleted INTEGER NOT NULL DEFAULT 0,
			UNIQUE (scene_id, position)
		);

		CREATE TABLE IF NOT EXISTS quote_characters (
			quote_id INTEGER NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
			character_id TEXT NOT NULL,
			speaker TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (quote_id, character_id)
		);

		CREATE INDEX IF NOT EXISTS idx_quotes_character_id ON quotes(character_id);
	`

	_, err := db.db.Exec(schema)
	return err
}
