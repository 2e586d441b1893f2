package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps the database handle. It is created once at startup and
// injected into every repository; there is no package-global connection.
type Store struct {
	db *sql.DB
}

// Config holds database configuration
type Config struct {
	Path string
}

// Open initializes the database connection and runs migrations
func Open(cfg Config) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := NewStore(db)
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// NewStore wraps an already-open handle. Used by Open and by tests that
// supply their own connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate runs all database migrations
func (s *Store) migrate() error {
	// Create migrations table
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Run each migration
	for _, m := range migrations {
		if err := s.runMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

type migration struct {
	name string
	up   string
}

func (s *Store) runMigration(m migration) error {
	// Check if already applied
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	// Run migration
	if _, err := s.db.Exec(m.up); err != nil {
		return err
	}

	// Record migration
	_, err = s.db.Exec("INSERT INTO migrations (name) VALUES (?)", m.name)
	return err
}

var migrations = []migration{
	{
		name: "001_create_members",
		up: `
			CREATE TABLE member (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				checked_out INTEGER NOT NULL DEFAULT 0,
				total_borrowed INTEGER NOT NULL DEFAULT 0,
				date_joined DATETIME DEFAULT CURRENT_TIMESTAMP,
				active INTEGER NOT NULL DEFAULT 1
			);
			CREATE INDEX idx_member_email ON member(email);
		`,
	},
	{
		name: "002_create_sessions",
		up: `
			CREATE TABLE session (
				id TEXT PRIMARY KEY,
				member_id INTEGER,
				ip_address TEXT,
				user_agent TEXT,
				created DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (member_id) REFERENCES member(id)
			);
			CREATE INDEX idx_session_member_id ON session(member_id);
		`,
	},
	{
		name: "003_create_tokens",
		up: `
			CREATE TABLE token (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL,
				time_created DATETIME NOT NULL,
				active INTEGER NOT NULL DEFAULT 1,
				FOREIGN KEY (session_id) REFERENCES session(id)
			);
			CREATE INDEX idx_token_session_id ON token(session_id);
			CREATE INDEX idx_token_active ON token(active);
		`,
	},
	{
		name: "004_create_authors",
		up: `
			CREATE TABLE author (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				first_name TEXT NOT NULL DEFAULT '',
				middle_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX idx_author_last_name ON author(last_name);
		`,
	},
	{
		name: "005_create_resources",
		up: `
			CREATE TABLE resource (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				author_id INTEGER NOT NULL,
				edition TEXT NOT NULL DEFAULT '',
				isbn_10 TEXT NOT NULL DEFAULT '',
				isbn_13 TEXT NOT NULL DEFAULT '',
				active INTEGER NOT NULL DEFAULT 1,
				date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (author_id) REFERENCES author(id)
			);
			CREATE UNIQUE INDEX idx_resource_isbn_10 ON resource(isbn_10) WHERE isbn_10 <> '';
			CREATE UNIQUE INDEX idx_resource_isbn_13 ON resource(isbn_13) WHERE isbn_13 <> '';
		`,
	},
	{
		name: "006_create_stock",
		up: `
			CREATE TABLE stock (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				resource_id INTEGER NOT NULL,
				date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
				active INTEGER NOT NULL DEFAULT 1,
				FOREIGN KEY (resource_id) REFERENCES resource(id)
			);
			CREATE INDEX idx_stock_resource_id ON stock(resource_id);
		`,
	},
	{
		name: "007_create_borrows",
		up: `
			CREATE TABLE borrow (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				member_id INTEGER NOT NULL,
				stock_id INTEGER NOT NULL,
				created DATETIME NOT NULL,
				closed INTEGER NOT NULL DEFAULT 0,
				FOREIGN KEY (member_id) REFERENCES member(id),
				FOREIGN KEY (stock_id) REFERENCES stock(id)
			);
			CREATE INDEX idx_borrow_member_id ON borrow(member_id);
			CREATE INDEX idx_borrow_stock_id ON borrow(stock_id);
		`,
	},
	{
		name: "008_create_settings",
		up: `
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			-- Default settings
			INSERT INTO settings (key, value) VALUES
				('auth.token_ttl_seconds', '120'),
				('borrow.checkout_limit', '3'),
				('auth.login_max_attempts', '5'),
				('auth.login_window_minutes', '15');
		`,
	},
	{
		name: "009_create_audit_logs",
		up: `
			CREATE TABLE audit_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				member_id INTEGER,
				email TEXT,
				action TEXT NOT NULL,
				target TEXT,
				details TEXT,
				ip_address TEXT,
				FOREIGN KEY (member_id) REFERENCES member(id)
			);
			CREATE INDEX idx_audit_logs_timestamp ON audit_logs(timestamp);
			CREATE INDEX idx_audit_logs_member_id ON audit_logs(member_id);
			CREATE INDEX idx_audit_logs_action ON audit_logs(action);
		`,
	},
}
