package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-dating/internal/cache"
	"github.com/oggyb/muzz-dating/internal/config"
	"github.com/oggyb/muzz-dating/internal/feed"
)

// AppContext holds shared dependencies (DB, Redis, feed bus, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Notifier   feed.Notifier
	Logger     *slog.Logger
	// Now is the clock for every timestamp the services assign.
	Now func() time.Time
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, notifier feed.Notifier, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Notifier:   notifier,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewNotifier picks the live-feed bus from config.
func NewNotifier(cfg *config.Config, rdb *cache.RedisCache) feed.Notifier {
	if cfg.Feed.Notifier == "memory" || rdb == nil {
		return feed.NewHub()
	}
	return feed.NewRedisNotifier(rdb.Client)
}
