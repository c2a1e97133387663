package main

import (
	"context"
	"fmt"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/repository"

	"github.com/rs/zerolog"
)

// openStore builds the product repository for the configured backend.
// The returned cleanup releases any connections it opened.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.ProductRepository, func(), error) {
	policy, err := repository.ParseReadPolicy(cfg.Store.ReadPolicy)
	if err != nil {
		return nil, nil, err
	}

	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendFile:
		return repository.NewFileRepository(cfg.Store.DataFile, policy, logger), noop, nil

	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Migrate(pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresRepository(pool, logger), pool.Close, nil

	case config.BackendRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis client")
			}
		}
		return repository.NewRedisRepository(client, cfg.Redis.Key, policy, logger), cleanup, nil

	case config.BackendS3:
		client, err := repository.NewS3Client(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		return repository.NewS3Repository(client, cfg.S3.Bucket, cfg.S3.Key, policy, logger), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
