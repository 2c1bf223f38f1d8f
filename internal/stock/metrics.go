package stock

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Outcome classifies how the consumer finished a message.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// Metrics holds the OpenTelemetry instruments of the stock pipeline.
type Metrics struct {
	submitted metric.Int64Counter
	cancelled metric.Int64Counter
	processed metric.Int64Counter
	duration  metric.Float64Histogram
	queueWait metric.Float64Histogram
}

// NewMetrics registers the pipeline instruments on meter, including an
// observable gauge reporting the depth of queue.
func NewMetrics(meter metric.Meter, queue *BoundedQueue) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.submitted, err = meter.Int64Counter("stock.updates.submitted",
		metric.WithDescription("Stock updates admitted to the queue")); err != nil {
		return nil, fmt.Errorf("failed to create submitted counter: %w", err)
	}
	if m.cancelled, err = meter.Int64Counter("stock.updates.cancelled",
		metric.WithDescription("Stock updates whose submission was cancelled before admission")); err != nil {
		return nil, fmt.Errorf("failed to create cancelled counter: %w", err)
	}
	if m.processed, err = meter.Int64Counter("stock.updates.processed",
		metric.WithDescription("Stock updates handled by the consumer, by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create processed counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("stock.update.duration",
		metric.WithDescription("Time spent applying a single stock update"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	if m.queueWait, err = meter.Float64Histogram("stock.update.queue_wait",
		metric.WithDescription("Time between submission and the start of processing"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("failed to create queue wait histogram: %w", err)
	}

	_, err = meter.Int64ObservableGauge("stock.queue.depth",
		metric.WithDescription("Stock updates buffered and waiting for the consumer"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(queue.Len()), metric.WithAttributes(attribute.Int("capacity", queue.Cap())))
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue depth gauge: %w", err)
	}

	return &m, nil
}

// NewNopMetrics returns instruments that record nothing.
func NewNopMetrics(queue *BoundedQueue) *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("stock"), queue)
	return m
}

func (m *Metrics) recordSubmitted(ctx context.Context) {
	m.submitted.Add(ctx, 1)
}

func (m *Metrics) recordCancelled(ctx context.Context) {
	m.cancelled.Add(ctx, 1)
}

func (m *Metrics) recordProcessed(ctx context.Context, outcome Outcome, elapsed, waited time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	m.processed.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	m.queueWait.Record(ctx, float64(waited)/float64(time.Millisecond))
}
