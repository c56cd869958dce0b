package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mikey/exam-grader/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name   string
	schema []string
	upsert string
}

// SQLStore is a database/sql implementation of the VerdictStore interface
// shared by the SQLite, MySQL and PostgreSQL backends.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.name, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return &SQLStore{db: db, dialect: d, logger: logger}, nil
}

// Load returns every stored entry
func (s *SQLStore) Load(ctx context.Context) ([]core.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key, expected, verdict, strategy, form, recorded_at
		FROM match_cache
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match cache: %w", err)
	}
	defer rows.Close()

	var entries []core.CacheEntry
	for rows.Next() {
		var e core.CacheEntry
		var strategy string
		var recordedAt int64
		if err := rows.Scan(&e.Key, &e.Expected, &e.Verdict, &strategy, &e.Form, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match cache row: %w", err)
		}
		e.Strategy = core.StrategyKind(strategy)
		e.RecordedAt = time.UnixMilli(recordedAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match cache: %w", err)
	}
	return entries, nil
}

// Save upserts entries in one transaction
func (s *SQLStore) Save(ctx context.Context, entries []core.CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.upsert)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Key, e.Expected, e.Verdict, string(e.Strategy), e.Form, e.RecordedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to upsert cache entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache entries: %w", err)
	}
	s.logger.Debug("Saved verdicts", zap.String("backend", s.dialect.name), zap.Int("count", len(entries)))
	return nil
}

// Clear removes all entries
func (s *SQLStore) Clear(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM match_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear match cache: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during clear", zap.Error(err))
	} else {
		s.logger.Debug("Cleared match cache", zap.Int64("removed", rowsAffected))
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", s.dialect.name, err)
	}
	return nil
}
