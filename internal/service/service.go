package service

import (
	"context"

	"product-catalog/internal/model"
)

// ProductService defines operations on the product catalog.
type ProductService interface {
	// List returns the whole catalog in stored order.
	List(ctx context.Context) ([]model.Product, error)

	// Create validates req, stores the new product and returns it with its
	// assigned id and creation time.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Seed writes the sample catalog when the store is empty and reports
	// whether it did.
	Seed(ctx context.Context) (bool, error)
}

// EventPublisher delivers product events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.ProductEvent) error
}

// Counter is incremented once per created product.
type Counter interface {
	Inc()
}
