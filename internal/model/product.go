package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for Product.CreatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Product represents a single catalog entry.
// Field order is the persisted and wire key order.
type Product struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	Description string  `json:"description" db:"description"`
	CreatedAt   string  `json:"createdAt,omitempty" db:"created_at"`
}

// CreateProductRequest is the payload accepted by POST /products.
// Price stays raw so both JSON numbers and numeric strings can be coerced later.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NextID returns the identifier the next appended product receives:
// one more than the largest existing id, or 1 for an empty collection.
func NextID(products []Product) int {
	maxID := 0
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

// SampleProducts returns the catalog written into an empty store on first start.
func SampleProducts() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Wireless Bluetooth Headphones",
			Price:       79.99,
			Category:    "Electronics",
			Description: "High-quality wireless headphones with noise cancellation",
		},
		{
			ID:          2,
			Name:        "Smart Fitness Watch",
			Price:       199.99,
			Category:    "Electronics",
			Description: "Track your fitness goals with this smart watch",
		},
		{
			ID:          3,
			Name:        "Organic Cotton T-Shirt",
			Price:       24.99,
			Category:    "Clothing",
			Description: "Comfortable and eco-friendly cotton t-shirt",
		},
	}
}
