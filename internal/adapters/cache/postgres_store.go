package cache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"go.uber.org/zap"
)

var postgresDialect = dialect{
	name: "PostgreSQL",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS match_cache (
			cache_key TEXT PRIMARY KEY,
			expected TEXT NOT NULL,
			verdict BOOLEAN NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			form TEXT NOT NULL DEFAULT '',
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_cache_recorded_at ON match_cache(recorded_at)`,
	},
	upsert: `
		INSERT INTO match_cache (cache_key, expected, verdict, strategy, form, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cache_key) DO UPDATE SET
			expected = EXCLUDED.expected,
			verdict = EXCLUDED.verdict,
			strategy = EXCLUDED.strategy,
			form = EXCLUDED.form,
			recorded_at = EXCLUDED.recorded_at
	`,
}

// NewPostgresStore connects through the pgx stdlib driver and ensures the cache table exists
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect, logger)
}
