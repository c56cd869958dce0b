package cache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "MySQL",
	schema: []string{`
		CREATE TABLE IF NOT EXISTS match_cache (
			cache_key VARCHAR(32) PRIMARY KEY,
			expected TEXT NOT NULL,
			verdict BOOLEAN NOT NULL,
			strategy VARCHAR(32) NOT NULL DEFAULT '',
			form TEXT NOT NULL,
			recorded_at BIGINT NOT NULL,
			INDEX idx_recorded_at (recorded_at)
		)
	`},
	upsert: `
		INSERT INTO match_cache (cache_key, expected, verdict, strategy, form, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			expected = VALUES(expected),
			verdict = VALUES(verdict),
			strategy = VALUES(strategy),
			form = VALUES(form),
			recorded_at = VALUES(recorded_at)
	`,
}

// NewMySQLStore connects to MySQL and ensures the cache table exists
func NewMySQLStore(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	return newSQLStore(ctx, db, mysqlDialect, logger)
}
