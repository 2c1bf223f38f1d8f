package stock

import (
	"context"

	"catalogservice/internal/platform/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submitter is the producer-facing entry point of the stock pipeline.
type Submitter interface {
	// Submit queues an update and returns its correlation id once the update
	// is admitted. Admission does not mean the update has been applied.
	Submit(ctx context.Context, productID, newQuantity int) (uuid.UUID, error)
}

// QueueSubmitter admits updates to a BoundedQueue for as long as the process
// lifetime context is alive.
type QueueSubmitter struct {
	lifetime context.Context
	queue    *BoundedQueue
	logger   observability.Logger
	metrics  *Metrics
}

// NewQueueSubmitter creates a submitter bound to lifetime; once lifetime is
// done no further update is admitted and suspended submissions are released.
func NewQueueSubmitter(lifetime context.Context, queue *BoundedQueue, logger observability.Logger, metrics *Metrics) *QueueSubmitter {
	return &QueueSubmitter{
		lifetime: lifetime,
		queue:    queue,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *QueueSubmitter) Submit(ctx context.Context, productID, newQuantity int) (uuid.UUID, error) {
	if err := s.lifetime.Err(); err != nil {
		s.metrics.recordCancelled(ctx)
		return uuid.Nil, cancelled(err)
	}

	enqueueCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.lifetime, cancel)
	defer stop()

	msg := NewUpdateMessage(productID, newQuantity)
	if err := s.queue.Enqueue(enqueueCtx, msg); err != nil {
		s.metrics.recordCancelled(ctx)
		s.logger.Warn("Stock update submission cancelled",
			zap.Int("product_id", productID),
			zap.String("correlation_id", msg.CorrelationID().String()),
			zap.Error(err),
		)
		return uuid.Nil, err
	}

	s.metrics.recordSubmitted(ctx)
	s.logger.Debug("Stock update queued",
		zap.Int("product_id", productID),
		zap.Int("quantity", newQuantity),
		zap.String("correlation_id", msg.CorrelationID().String()),
		zap.Int("queue_depth", s.queue.Len()),
	)
	return msg.CorrelationID(), nil
}
