package database

import (
	"context"
	"fmt"
)

// The same DDL is accepted by SQLite and PostgreSQL. Dates are stored as
// RFC 3339 text so both drivers scan them identically.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		expanded BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS study_items (
		id TEXT PRIMARY KEY,
		category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		priority TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		total_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		hours_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		scheduled_date TEXT,
		recommended_days INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS study_items_category_position ON study_items (category_id, position)`,
	`CREATE TABLE IF NOT EXISTS weekly_availability (
		day INTEGER PRIMARY KEY,
		hours DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plan_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
