package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/exam-grader/internal/adapters/cache"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"github.com/mikey/exam-grader/internal/utils"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// CacheFactory creates verdict stores and match caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	fs     afs.Service
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, fs afs.Service, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		fs:     fs,
		logger: logger,
	}
}

// CreateVerdictStore creates the configured store. A disabled cache has no store.
func (f *CacheFactory) CreateVerdictStore(ctx context.Context) (core.VerdictStore, error) {
	cacheCfg := f.cfg.GetCache()
	if !cacheCfg.Enabled {
		return nil, nil
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryStore(f.logger), nil
	case "json":
		URL, err := utils.NormalizeLocation(cacheCfg.JSONPath)
		if err != nil {
			return nil, err
		}
		return cache.NewJSONStore(f.fs, URL, f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return sqlStore(cache.NewSQLiteStore(ctx, cacheCfg.SQLitePath, f.logger))
	case "mysql":
		return sqlStore(cache.NewMySQLStore(ctx, cacheCfg.MySQLDSN, f.logger))
	case "postgres":
		return sqlStore(cache.NewPostgresStore(ctx, cacheCfg.PostgresDSN, f.logger))
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

func sqlStore(store *cache.SQLStore, err error) (core.VerdictStore, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}

// CreateMatchCache wraps the configured store in a match cache. A store that
// cannot be opened is logged and the cache runs in memory only.
func (f *CacheFactory) CreateMatchCache(ctx context.Context) *core.MatchCache {
	store, err := f.CreateVerdictStore(ctx)
	if err != nil {
		f.logger.Warn("Verdict store unavailable, caching in memory only", zap.Error(err))
		store = nil
	}
	return core.NewMatchCache(store, f.logger)
}
