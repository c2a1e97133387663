package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"product-catalog/internal/model"

	"github.com/rs/zerolog"
)

// ProductRepository defines the storage contract for the product collection.
// Every backend stores the whole collection as one unit.
type ProductRepository interface {
	// LoadAll returns the complete collection in stored order.
	LoadAll(ctx context.Context) ([]model.Product, error)

	// SaveAll replaces the stored collection with products.
	SaveAll(ctx context.Context, products []model.Product) error

	// Insert assigns p the next identifier and appends it to the collection.
	// The read, id assignment and write happen atomically with respect to
	// other Insert and SaveAll calls on the same store.
	Insert(ctx context.Context, p *model.Product) error
}

// ErrInsertConflict is returned when an optimistic insert keeps losing races.
var ErrInsertConflict = errors.New("concurrent modification of product store")

// ReadPolicy decides what a failed read of the store turns into.
type ReadPolicy int

const (
	// LenientEmptyOnReadFailure treats unreadable or malformed data as an empty collection.
	LenientEmptyOnReadFailure ReadPolicy = iota
	// StrictOnReadFailure returns unreadable or malformed data as an error.
	StrictOnReadFailure
)

// ParseReadPolicy maps "lenient" and "strict" to a ReadPolicy.
func ParseReadPolicy(s string) (ReadPolicy, error) {
	switch s {
	case "", "lenient":
		return LenientEmptyOnReadFailure, nil
	case "strict":
		return StrictOnReadFailure, nil
	default:
		return LenientEmptyOnReadFailure, fmt.Errorf("unknown read policy %q", s)
	}
}

func (p ReadPolicy) String() string {
	if p == StrictOnReadFailure {
		return "strict"
	}
	return "lenient"
}

// onReadFailure applies the policy to a stored collection that does not
// parse, or to a local data file that cannot be read. Errors from network
// backends never pass through it.
func (p ReadPolicy) onReadFailure(logger zerolog.Logger, err error) ([]model.Product, error) {
	if p == StrictOnReadFailure {
		logger.Error().Err(err).Msg("product store unreadable")
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	logger.Warn().Err(err).Msg("product store unreadable, treating as empty")
	return []model.Product{}, nil
}

// decodeProducts parses a stored collection. A JSON null decodes as empty.
func decodeProducts(data []byte) ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// encodeProducts renders the collection pretty-printed with a two-space indent.
func encodeProducts(products []model.Product) ([]byte, error) {
	if products == nil {
		products = []model.Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	return data, nil
}
