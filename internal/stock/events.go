package stock

import "time"

// StockFeedEvent is an inbound stock level from the StockFeed topic.
type StockFeedEvent struct {
	ProductID int `json:"product_id" validate:"min=1"`
	Quantity  int `json:"quantity" validate:"min=0"`
}

// StockUpdatedEvent is published after a stock update has been applied.
type StockUpdatedEvent struct {
	ProductID     int       `json:"product_id"`
	Quantity      int       `json:"quantity"`
	CorrelationID string    `json:"correlation_id"`
	AppliedAt     time.Time `json:"applied_at"`
}
