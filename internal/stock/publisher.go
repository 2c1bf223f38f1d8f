package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"catalogservice/internal/platform/kafka"
	"catalogservice/internal/platform/observability"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher announces applied stock updates to other systems.
type EventPublisher interface {
	PublishStockUpdated(ctx context.Context, event StockUpdatedEvent) error
}

// KafkaEventPublisher writes StockUpdated events to Kafka keyed by product id.
type KafkaEventPublisher struct {
	producer kafka.Producer
	logger   observability.Logger
}

func NewKafkaEventPublisher(producer kafka.Producer, logger observability.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		logger:   logger,
	}
}

// PublishStockUpdated serializes and sends a StockUpdated event
func (p *KafkaEventPublisher) PublishStockUpdated(ctx context.Context, event StockUpdatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize StockUpdated event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(strconv.Itoa(event.ProductID)),
		Value: payload,
	}
	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish StockUpdated event: %w", err)
	}

	p.logger.Info("📤 Sent StockUpdated event",
		zap.Int("product_id", event.ProductID),
		zap.String("correlation_id", event.CorrelationID),
	)
	return nil
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishStockUpdated(context.Context, StockUpdatedEvent) error { return nil }
