package cache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "SQLite",
	schema: []string{`
		CREATE TABLE IF NOT EXISTS match_cache (
			cache_key TEXT PRIMARY KEY,
			expected TEXT NOT NULL,
			verdict BOOLEAN NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			form TEXT NOT NULL DEFAULT '',
			recorded_at INTEGER NOT NULL
		)
	`},
	upsert: `
		INSERT OR REPLACE INTO match_cache (cache_key, expected, verdict, strategy, form, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
}

// NewSQLiteStore opens (creating if needed) a SQLite verdict store
func NewSQLiteStore(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one connection: SQLite allows a single writer
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect, logger)
}
