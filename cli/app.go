package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/yatube/cache"
	"github.com/cppla/yatube/clock"
	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// app is the wiring shared by every command.
type app struct {
	cfg   config.AppConfig
	store *store.Store
	cache *cache.Cache
	close func()
}

// bootstrap loads configuration, starts logging and opens the database and
// the cache backend.
func bootstrap(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := config.LoadFrom(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	config.Set(cfg)

	if err := utils.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		store: store.New(db, clock.System{}),
	}
	closers := []func(){func() { _ = sqlDB.Close() }}

	switch strings.ToLower(cfg.CacheBackend) {
	case "redis":
		rc, err := utils.NewRedisClient(ctx, cfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		utils.SetRedis(rc)
		closers = append(closers, func() { _ = rc.Close() })
		a.cache = cache.New(cache.NewRedisBackend(rc))
	default:
		a.cache = cache.New(cache.NewMemoryBackend(clock.System{}))
	}

	a.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		_ = utils.Logger.Sync()
	}
	utils.Logger.Debug("bootstrap complete",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("cache_backend", cfg.CacheBackend))
	return a, nil
}
