package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// lockProducts blocks concurrent writers while still allowing plain reads.
const lockProducts = `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`

var productColumns = []string{"id", "name", "price", "category", "description", "created_at"}

// productRepository implements ProductRepository using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresRepository creates a PostgreSQL-backed product repository.
// The products table must already exist (see database.Migrate). Rows are
// typed, so every read failure is a database error and is returned as is.
func NewPostgresRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres").Logger(),
	}
}

// LoadAll retrieves every product ordered by id.
func (r *productRepository) LoadAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, price, category, description, created_at
		FROM products
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p         model.Product
			createdAt *time.Time
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if createdAt != nil {
			p.CreatedAt = model.FormatTimestamp(*createdAt)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating products")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// SaveAll replaces the table contents with products in one transaction.
func (r *productRepository) SaveAll(ctx context.Context, products []model.Product) error {
	rowsData := make([][]any, 0, len(products))
	for _, p := range products {
		createdAt, err := parseCreatedAt(p.CreatedAt)
		if err != nil {
			return fmt.Errorf("product %d: %w", p.ID, err)
		}
		rowsData = append(rowsData, []any{p.ID, p.Name, p.Price, p.Category, p.Description, createdAt})
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}

		if len(rowsData) == 0 {
			return nil
		}

		copied, err := tx.CopyFrom(ctx, pgx.Identifier{"products"}, productColumns, pgx.CopyFromRows(rowsData))
		if err != nil {
			return fmt.Errorf("failed to copy products: %w", err)
		}

		r.logger.Debug().Int64("count", copied).Msg("products replaced")
		return nil
	})
}

// Insert computes the next id and stores p while holding the table lock.
func (r *productRepository) Insert(ctx context.Context, p *model.Product) error {
	createdAt, err := parseCreatedAt(p.CreatedAt)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, price, category, description, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5
		FROM products
		RETURNING id
	`

	return r.inTx(ctx, func(tx pgx.Tx) error {
		var id int
		if err := tx.QueryRow(ctx, query, p.Name, p.Price, p.Category, p.Description, createdAt).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		p.ID = id
		return nil
	})
}

// inTx runs fn inside a transaction that holds the products write lock.
func (r *productRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if _, err := tx.Exec(ctx, lockProducts); err != nil {
		return fmt.Errorf("failed to lock products: %w", err)
	}

	if err := fn(tx); err != nil {
		r.logger.Error().Err(err).Msg("product transaction failed")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// parseCreatedAt converts an ISO-8601 string to a nullable timestamp.
func parseCreatedAt(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt %q: %w", s, err)
	}
	return &t, nil
}
