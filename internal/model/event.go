package model

import (
	"time"

	"github.com/google/uuid"
)

// EventProductCreated is the type tag of ProductEvent for new products.
const EventProductCreated = "product.created"

// ProductEvent is the notification emitted after a product is stored.
type ProductEvent struct {
	EventID    uuid.UUID `json:"eventId"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Product    Product   `json:"product"`
}

// NewProductCreatedEvent builds a product.created event for p.
func NewProductCreatedEvent(p Product, at time.Time) ProductEvent {
	return ProductEvent{
		EventID:    uuid.New(),
		Type:       EventProductCreated,
		OccurredAt: at.UTC(),
		Product:    p,
	}
}
