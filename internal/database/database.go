// Package database opens the store selected by DATABASE_DRIVER.
package database

import (
	"context"
	"fmt"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/memory"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/mongo"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/postgres"
)

// Open connects to the configured store and makes sure its schema or indexes
// exist. The caller owns the returned repository and must Close it.
func Open(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		dbpool, err := postgres.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		repo := postgres.New(cfg, dbpool)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return repo, nil

	case "mongo":
		client, err := mongo.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}

		repo := mongo.New(cfg, client)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return repo, nil

	case "memory":
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
