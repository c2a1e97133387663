package repository

import (
	"context"
	"errors"
	"fmt"

	"product-catalog/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisMaxInsertAttempts = 10

// redisGetter is satisfied by both *redis.Client and *redis.Tx.
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// redisRepository keeps the collection as one JSON string under a single key.
type redisRepository struct {
	client *redis.Client
	key    string
	policy ReadPolicy
	logger zerolog.Logger
}

// NewRedisRepository creates a product repository stored at key.
func NewRedisRepository(client *redis.Client, key string, policy ReadPolicy, logger zerolog.Logger) ProductRepository {
	return &redisRepository{
		client: client,
		key:    key,
		policy: policy,
		logger: logger.With().Str("repository", "redis").Str("key", key).Logger(),
	}
}

// LoadAll reads the collection. An absent key is an empty collection.
func (r *redisRepository) LoadAll(ctx context.Context) ([]model.Product, error) {
	return r.load(ctx, r.client)
}

// SaveAll overwrites the key with the given collection.
func (r *redisRepository) SaveAll(ctx context.Context, products []model.Product) error {
	data, err := encodeProducts(products)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		r.logger.Error().Err(err).Msg("failed to store products")
		return fmt.Errorf("failed to store products: %w", err)
	}

	return nil
}

// Insert appends p inside a WATCH/MULTI transaction, retrying when another
// writer changes the key between the read and the write.
func (r *redisRepository) Insert(ctx context.Context, p *model.Product) error {
	txf := func(tx *redis.Tx) error {
		products, err := r.load(ctx, tx)
		if err != nil {
			return err
		}

		p.ID = model.NextID(products)
		data, err := encodeProducts(append(products, *p))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= redisMaxInsertAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, r.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug().Int("attempt", attempt).Msg("insert lost race, retrying")
			continue
		}
		r.logger.Error().Err(err).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return ErrInsertConflict
}

func (r *redisRepository) load(ctx context.Context, g redisGetter) ([]model.Product, error) {
	data, err := g.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Product{}, nil
		}
		r.logger.Error().Err(err).Msg("failed to get products from redis")
		return nil, fmt.Errorf("failed to get products from redis: %w", err)
	}

	products, err := decodeProducts(data)
	if err != nil {
		return r.policy.onReadFailure(r.logger, err)
	}

	return products, nil
}
