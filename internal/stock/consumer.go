package stock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"catalogservice/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// State is the lifecycle position of an UpdateConsumer.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateDraining
	StateProcessing
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateDraining:
		return "draining"
	case StateProcessing:
		return "processing"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// UpdateConsumer is the single reader of a BoundedQueue. It applies every
// message in its own mutation scope and contains per-message failures so the
// loop keeps running until its context is cancelled.
type UpdateConsumer struct {
	queue     *BoundedQueue
	scopes    ScopeFactory
	publisher EventPublisher
	logger    observability.Logger
	tracer    observability.Tracer
	metrics   *Metrics
	state     atomic.Int32
}

func NewUpdateConsumer(
	queue *BoundedQueue,
	scopes ScopeFactory,
	publisher EventPublisher,
	logger observability.Logger,
	tracer observability.Tracer,
	metrics *Metrics,
) *UpdateConsumer {
	return &UpdateConsumer{
		queue:     queue,
		scopes:    scopes,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		metrics:   metrics,
	}
}

// State reports the current lifecycle state.
func (c *UpdateConsumer) State() State { return State(c.state.Load()) }

func (c *UpdateConsumer) setState(s State) { c.state.Store(int32(s)) }

// Start drains the queue until ctx is cancelled. Cancellation is a graceful
// stop: a message already being processed is finished and Start returns nil.
func (c *UpdateConsumer) Start(ctx context.Context) error {
	c.setState(StateStarting)
	c.logger.Info("Stock update consumer started. Waiting for messages...",
		zap.Int("queue_capacity", c.queue.Cap()),
	)

	c.setState(StateDraining)
	for msg := range c.queue.Messages(ctx) {
		c.setState(StateProcessing)
		c.process(ctx, msg)
		c.setState(StateDraining)
	}

	c.setState(StateStopping)
	c.logger.Info("Context done, stock update consumer stopping.",
		zap.Int("pending", c.queue.Len()),
		zap.NamedError("reason", ctx.Err()),
	)
	c.setState(StateStopped)
	return nil
}

// process handles one message. It never returns an error: every outcome is
// logged, traced and counted here.
func (c *UpdateConsumer) process(ctx context.Context, msg UpdateMessage) {
	// The in-flight update must complete even if shutdown starts now.
	msgCtx, span := c.tracer.Start(context.WithoutCancel(ctx), "stock_update")
	defer span.End()

	correlationID := msg.CorrelationID().String()
	span.SetAttributes(
		attribute.Int("product.id", msg.ProductID()),
		attribute.Int("stock.new_quantity", msg.NewQuantity()),
		attribute.String("stock.correlation_id", correlationID),
	)

	log := c.logger.With(
		zap.Int("product_id", msg.ProductID()),
		zap.String("correlation_id", correlationID),
	)

	started := time.Now()
	outcome, err := c.apply(msgCtx, msg)
	c.metrics.recordProcessed(msgCtx, outcome, time.Since(started), started.Sub(msg.InsertTime()))
	span.SetAttributes(attribute.String("stock.outcome", string(outcome)))

	switch outcome {
	case OutcomeNotFound:
		log.Warn("Product not found, stock update skipped")
		span.SetStatus(codes.Ok, "product not found")

	case OutcomeApplied:
		log.Info("Stock quantity updated", zap.Int("quantity", msg.NewQuantity()))
		span.SetStatus(codes.Ok, "stock updated")
		c.publish(msgCtx, log, msg)

	default:
		log.Error("❌ Failed processing stock update",
			zap.Error(err),
			zap.Int("quantity", msg.NewQuantity()),
			zap.Time("insert_time", msg.InsertTime()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// apply runs the mutation inside a fresh scope. The scope is discarded on
// every path and a panic inside the scope is turned into a failure.
func (c *UpdateConsumer) apply(ctx context.Context, msg UpdateMessage) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = OutcomeFailed, fmt.Errorf("panic while applying stock update: %v", r)
		}
	}()

	scope, err := c.scopes.NewScope(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to open mutation scope: %w", err)
	}
	defer scope.Discard()

	found, err := scope.UpdateStockQuantity(ctx, msg.ProductID(), msg.NewQuantity())
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to update stock quantity: %w", err)
	}
	if !found {
		return OutcomeNotFound, nil
	}

	if err := scope.Commit(); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to commit stock update: %w", err)
	}
	return OutcomeApplied, nil
}

func (c *UpdateConsumer) publish(ctx context.Context, log observability.Logger, msg UpdateMessage) {
	event := StockUpdatedEvent{
		ProductID:     msg.ProductID(),
		Quantity:      msg.NewQuantity(),
		CorrelationID: msg.CorrelationID().String(),
		AppliedAt:     time.Now().UTC(),
	}
	if err := c.publisher.PublishStockUpdated(ctx, event); err != nil {
		log.Error("❌ Failed to publish StockUpdated event", zap.Error(err))
	}
}
