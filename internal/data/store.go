package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the sqlite database and creates the schema
func OpenDB(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			page_id TEXT NOT NULL,
			page_name TEXT NOT NULL,
			access_token TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			UNIQUE(owner_id, page_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_page_id ON pages(page_id)`,

		`CREATE TABLE IF NOT EXISTS rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			page_id TEXT NOT NULL,
			keyword TEXT NOT NULL,
			response TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 1,
			match_type TEXT NOT NULL DEFAULT 'contains',
			case_sensitive INTEGER NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rules_owner_page ON rules(owner_id, page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rules_priority ON rules(priority)`,

		`CREATE TABLE IF NOT EXISTS ai_configs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			page_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			api_key TEXT NOT NULL,
			temperature REAL NOT NULL DEFAULT 0.7,
			max_tokens INTEGER NOT NULL DEFAULT 500,
			instructions TEXT NOT NULL DEFAULT '',
			tone TEXT NOT NULL DEFAULT 'friendly',
			style TEXT NOT NULL DEFAULT 'medium',
			language TEXT NOT NULL DEFAULT 'fr',
			active INTEGER NOT NULL DEFAULT 0,
			fallback_only INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			UNIQUE(owner_id, page_id)
		)`,

		`CREATE TABLE IF NOT EXISTS message_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			page_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			sender_name TEXT NOT NULL DEFAULT '',
			message_text TEXT NOT NULL DEFAULT '',
			response_text TEXT NOT NULL DEFAULT '',
			response_type TEXT NOT NULL DEFAULT 'none',
			matched_keyword TEXT NOT NULL DEFAULT '',
			processing_time_ms INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			processed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_owner_page ON message_history(owner_id, page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_processed_at ON message_history(processed_at)`,

		`CREATE TABLE IF NOT EXISTS system_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL DEFAULT 0,
			page_id TEXT NOT NULL DEFAULT '',
			log_level TEXT NOT NULL DEFAULT 'info',
			event_type TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_syslogs_created_at ON system_logs(created_at)`,

		`CREATE TABLE IF NOT EXISTS webhook_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_id TEXT NOT NULL,
			event_kind TEXT NOT NULL,
			raw_data BLOB NOT NULL,
			processed INTEGER NOT NULL DEFAULT 0,
			processed_at INTEGER,
			error_message TEXT NOT NULL DEFAULT '',
			retry_count INTEGER NOT NULL DEFAULT 0,
			claimed_at INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_processed ON webhook_events(processed, retry_count)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON webhook_events(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
