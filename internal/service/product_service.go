package service

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"

	"github.com/rs/zerolog"
)

// Option customises a product service.
type Option func(*productService)

// WithPublisher emits a product.created event after every successful create.
func WithPublisher(p EventPublisher) Option {
	return func(s *productService) { s.publisher = p }
}

// WithCreatedCounter counts successful creates.
func WithCreatedCounter(c Counter) Option {
	return func(s *productService) { s.created = c }
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *productService) { s.now = now }
}

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	publisher   EventPublisher
	created     Counter
	now         func() time.Time
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger, opts ...Option) ProductService {
	s := &productService{
		productRepo: productRepo,
		now:         time.Now,
		logger:      logger.With().Str("service", "product").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List retrieves the whole catalog.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.LoadAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// Create validates the request and appends a new product.
func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	price, err := validateCreateRequest(req)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected create request")
		return nil, err
	}

	now := s.now()
	product := &model.Product{
		Name:        req.Name,
		Price:       price,
		Category:    req.Category,
		Description: req.Description,
		CreatedAt:   model.FormatTimestamp(now),
	}

	if err := s.productRepo.Insert(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to add product: %w", err)
	}

	s.logger.Info().
		Int("product_id", product.ID).
		Str("name", product.Name).
		Str("category", product.Category).
		Msg("product created")

	if s.created != nil {
		s.created.Inc()
	}

	if s.publisher != nil {
		event := model.NewProductCreatedEvent(*product, now)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).
				Int("product_id", product.ID).
				Str("event_id", event.EventID.String()).
				Msg("failed to publish product event")
		}
	}

	return product, nil
}

// Seed stores the sample catalog if the store holds no products.
func (s *productService) Seed(ctx context.Context) (bool, error) {
	products, err := s.productRepo.LoadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check product store: %w", err)
	}

	if len(products) > 0 {
		s.logger.Debug().Int("count", len(products)).Msg("product store already populated")
		return false, nil
	}

	sample := model.SampleProducts()
	if err := s.productRepo.SaveAll(ctx, sample); err != nil {
		return false, fmt.Errorf("failed to seed products: %w", err)
	}

	s.logger.Info().Int("count", len(sample)).Msg("seeded product store with sample data")

	return true, nil
}
