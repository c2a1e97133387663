package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"product-catalog/internal/model"

	"github.com/rs/zerolog"
)

// fileRepository keeps the collection in a single pretty-printed JSON file.
// Writes overwrite the file in place.
type fileRepository struct {
	path   string
	policy ReadPolicy
	logger zerolog.Logger

	// mu orders readers against in-process writers so a reader never sees a
	// half-written file and two inserts never pick the same id.
	mu sync.RWMutex
}

// NewFileRepository creates a product repository backed by the JSON file at path.
func NewFileRepository(path string, policy ReadPolicy, logger zerolog.Logger) ProductRepository {
	return &fileRepository{
		path:   path,
		policy: policy,
		logger: logger.With().Str("repository", "file").Str("path", path).Logger(),
	}
}

// LoadAll reads and parses the whole file. A missing file is an empty collection.
func (r *fileRepository) LoadAll(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load()
}

// SaveAll overwrites the file with the given collection.
func (r *fileRepository) SaveAll(ctx context.Context, products []model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(products)
}

// Insert appends p with the next id under the write lock.
func (r *fileRepository) Insert(ctx context.Context, p *model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return err
	}

	p.ID = model.NextID(products)
	if err := r.save(append(products, *p)); err != nil {
		return err
	}

	r.logger.Debug().Int("product_id", p.ID).Int("count", len(products)+1).Msg("product appended")
	return nil
}

func (r *fileRepository) load() ([]model.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug().Msg("product file does not exist yet")
			return []model.Product{}, nil
		}
		return r.policy.onReadFailure(r.logger, err)
	}

	products, err := decodeProducts(data)
	if err != nil {
		return r.policy.onReadFailure(r.logger, err)
	}

	return products, nil
}

func (r *fileRepository) save(products []model.Product) error {
	data, err := encodeProducts(products)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.logger.Error().Err(err).Msg("failed to create data directory")
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		r.logger.Error().Err(err).Msg("failed to write product file")
		return fmt.Errorf("failed to write products: %w", err)
	}

	return nil
}
