// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	authadapters "chat_backend/internal/feature/auth/adapters"
	"chat_backend/internal/feature/auth/usecase"
	"chat_backend/internal/platform/cache"
	"chat_backend/internal/platform/config"
	"chat_backend/internal/platform/db"
	"chat_backend/internal/platform/mongodb"
)

// NewUserRepository creates the UserRepository selected by cfg.StoreDriver.
// MongoDB is the default; the SQL drivers go through gorm. When rdb is non-nil
// the repository is wrapped with a Redis cache. The returned func releases the
// underlying connection.
func NewUserRepository(ctx context.Context, cfg *config.Config, rdb *redis.Client) (usecase.UserRepository, func(), error) {
	var (
		repo    usecase.UserRepository
		cleanup func()
	)

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		userMongo := authadapters.NewUserMongo(database)
		if err := userMongo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ensure user indexes: %w", err)
		}
		repo = userMongo
		cleanup = func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("failed to disconnect MongoDB", "error", err)
			}
		}
	default:
		gdb, err := db.Open(cfg.SQL, cfg.ConnectTimeout, cfg.RunMigrations)
		if err != nil {
			return nil, nil, err
		}
		repo = authadapters.NewUserGorm(gdb)
		cleanup = func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}

	slog.Info("user store ready", "driver", cfg.StoreDriver, "cache", rdb != nil)
	return cache.NewCachingUserRepository(rdb, cfg.UserCacheTTL, repo, "users"), cleanup, nil
}
