package export

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in the meta table.
const SchemaVersion = 1

var schemaStatements = []string{
	`CREATE TABLE indicators (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT,
		source TEXT,
		description TEXT
	)`,
	`CREATE TABLE datasets (
		indicator_id TEXT NOT NULL REFERENCES indicators(id),
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		source TEXT,
		citation TEXT,
		license TEXT,
		url TEXT,
		link TEXT,
		PRIMARY KEY (indicator_id, id)
	)`,
	`CREATE TABLE tags (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		label TEXT NOT NULL,
		description TEXT,
		area TEXT,
		impact TEXT
	)`,
	`CREATE TABLE indicator_tags (
		indicator_id TEXT NOT NULL REFERENCES indicators(id),
		tag_id TEXT NOT NULL,
		PRIMARY KEY (indicator_id, tag_id)
	)`,
	`CREATE TABLE meta (
		key TEXT PRIMARY KEY,
		value TEXT
	)`,
	`CREATE INDEX idx_indicators_category ON indicators(category)`,
	`CREATE INDEX idx_indicator_tags_tag ON indicator_tags(tag_id)`,
}

// CreateSchema creates all tables and indexes.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// CreateFTSIndex builds the indicators_fts table over indicator name and
// description. Call after indicators are inserted.
func CreateFTSIndex(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE VIRTUAL TABLE indicators_fts USING fts5(
			id,
			name,
			description,
			content='indicators',
			tokenize='porter unicode61'
		)`); err != nil {
		return fmt.Errorf("create FTS5 table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO indicators_fts(indicators_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("populate FTS index: %w", err)
	}
	return nil
}

// OptimizeDatabase compacts the file; call last.
func OptimizeDatabase(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Pragmas can fail depending on state; the file is still valid.
		_, _ = db.ExecContext(ctx, stmt)
	}
	if _, err := db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue sets a meta key.
func InsertMetaValue(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
