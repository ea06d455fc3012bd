package events

import (
	"context"
	"time"
)

// OrderPlaced is emitted after the gateway confirms an order, for
// downstream consumers (fulfillment, analytics). It is informational:
// the order already exists whether or not the event gets delivered.
type OrderPlaced struct {
	OrderTrackingNumber string            `json:"order_tracking_number"`
	TotalPrice          float64           `json:"total_price"`
	TotalQuantity       int               `json:"total_quantity"`
	Items               []OrderPlacedItem `json:"items"`
	PlacedAt            time.Time         `json:"placed_at"`
}

type OrderPlacedItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}
