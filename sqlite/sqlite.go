// Package sqlite provides SQLite-based storage for crawls and their records.
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

// Open connects to the database, applies connection pragmas, and creates
// the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and pragmas are
	// per connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, pragma := range db.pragmas() {
		if _, err := conn.Exec("PRAGMA " + pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	db.db = conn
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// pragmas returns the settings applied to every new connection. WAL is
// skipped for in-memory databases, which do not support it.
func (db *DB) pragmas() []string {
	pragmas := []string{"busy_timeout = 5000"}
	if db.path != ":memory:" {
		pragmas = append(pragmas, "journal_mode = WAL")
	}
	return append(pragmas, "foreign_keys = ON")
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

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS crawls (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			root_url TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			max_hop INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			crawl_id TEXT NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
			position INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			page_topic TEXT NOT NULL DEFAULT '',
			base_url TEXT NOT NULL DEFAULT '',
			parent_url TEXT NOT NULL DEFAULT '',
			current_url TEXT NOT NULL,
			hop INTEGER NOT NULL DEFAULT 0,
			parent_index TEXT NOT NULL DEFAULT '',
			parent_toc_item TEXT NOT NULL DEFAULT '',
			abs_toc_path TEXT NOT NULL DEFAULT '',
			section_index TEXT NOT NULL DEFAULT '',
			toc_item TEXT NOT NULL DEFAULT '',
			ancestor_toc_item TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_crawl_id ON records(crawl_id, position);
		CREATE INDEX IF NOT EXISTS idx_records_current_url ON records(current_url);
	`

	_, err := db.db.Exec(schema)
	return err
}
