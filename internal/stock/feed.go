package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalogservice/internal/platform/kafka"
	"catalogservice/internal/platform/observability"

	"github.com/go-playground/validator/v10"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const feedRetryDelay = time.Second

// FeedConsumer reads stock levels pushed by upstream systems to the StockFeed
// topic and submits them to the pipeline like any other producer.
type FeedConsumer struct {
	consumer  kafka.Consumer
	submitter Submitter
	logger    observability.Logger
	validate  *validator.Validate
}

func NewFeedConsumer(consumer kafka.Consumer, submitter Submitter, logger observability.Logger) *FeedConsumer {
	return &FeedConsumer{
		consumer:  consumer,
		submitter: submitter,
		logger:    logger,
		validate:  validator.New(),
	}
}

// Start reads the feed until ctx is cancelled.
func (f *FeedConsumer) Start(ctx context.Context) error {
	f.logger.Info("Stock feed consumer started. Waiting for messages...")

	for {
		msg, err := f.consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				f.logger.Info("Context done, exiting stock feed read loop.", zap.Error(err))
				break
			}
			f.logger.Error("❌ Error reading from Kafka", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(feedRetryDelay):
			}
			continue
		}

		// Errors are logged by the handler; the feed keeps going.
		_ = f.HandleStockFeed(ctx, *msg)
	}

	f.logger.Info("Stock feed consumer finished.")
	return nil
}

// HandleStockFeed decodes, validates and submits a single feed message.
func (f *FeedConsumer) HandleStockFeed(ctx context.Context, msg kafkago.Message) error {
	msgCtx := f.extractTraceContext(ctx, msg.Headers)

	f.logger.Debug("📨 Raw Kafka message received",
		zap.ByteString("key", msg.Key),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var event StockFeedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		f.logger.Error("❌ Invalid JSON in StockFeed event",
			zap.Error(err),
			zap.ByteString("raw_value", msg.Value),
		)
		return fmt.Errorf("invalid StockFeed payload: %w", err)
	}

	if err := f.validate.Struct(event); err != nil {
		f.logger.Warn("Rejected StockFeed event",
			zap.Error(err),
			zap.Int("product_id", event.ProductID),
			zap.Int("quantity", event.Quantity),
		)
		return fmt.Errorf("invalid StockFeed event: %w", err)
	}

	correlationID, err := f.submitter.Submit(msgCtx, event.ProductID, event.Quantity)
	if err != nil {
		f.logger.Error("❌ Failed to submit StockFeed event",
			zap.Error(err),
			zap.Int("product_id", event.ProductID),
		)
		return err
	}

	f.logger.Info("✅ StockFeed event queued",
		zap.Int("product_id", event.ProductID),
		zap.String("correlation_id", correlationID.String()),
	)
	return nil
}

// extractTraceContext extracts OpenTelemetry trace context from Kafka message headers
func (f *FeedConsumer) extractTraceContext(ctx context.Context, headers []kafkago.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, header := range headers {
		carrier[header.Key] = string(header.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
