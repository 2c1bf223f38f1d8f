package stock

import (
	"context"
	"iter"
	"sync/atomic"
)

// DefaultQueueCapacity is used when a non-positive capacity is requested.
const DefaultQueueCapacity = 1024

// BoundedQueue is the hand-off between any number of concurrent producers and
// exactly one consumer. Producers block while the buffer is full; the reader
// blocks while it is empty. Messages are delivered in admission order and are
// never dropped by the queue itself.
type BoundedQueue struct {
	buffer  chan UpdateMessage
	reading atomic.Bool
}

// NewBoundedQueue creates a queue holding at most capacity messages.
func NewBoundedQueue(capacity int) *BoundedQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &BoundedQueue{
		buffer: make(chan UpdateMessage, capacity),
	}
}

// Enqueue appends msg at the tail, waiting for free space if necessary.
// It returns an error wrapping ErrSubmissionCancelled if ctx is done before
// the message is admitted, in which case the message is not queued.
func (q *BoundedQueue) Enqueue(ctx context.Context, msg UpdateMessage) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	select {
	case q.buffer <- msg:
		return nil
	case <-ctx.Done():
		return cancelled(ctx.Err())
	}
}

// Messages returns the FIFO drain sequence for the single reader. The
// sequence blocks while the queue is empty and ends once ctx is done; the
// context is checked before every pull, so an item handed to the loop body is
// always finished first.
//
// Only one sequence may be ranged at a time; a concurrent second reader panics.
func (q *BoundedQueue) Messages(ctx context.Context) iter.Seq[UpdateMessage] {
	return func(yield func(UpdateMessage) bool) {
		if !q.reading.CompareAndSwap(false, true) {
			panic("stock: BoundedQueue already has an active reader")
		}
		defer q.reading.Store(false)

		for {
			if ctx.Err() != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case msg := <-q.buffer:
				if !yield(msg) {
					return
				}
			}
		}
	}
}

// Len reports the number of buffered messages.
func (q *BoundedQueue) Len() int { return len(q.buffer) }

// Cap reports the configured capacity.
func (q *BoundedQueue) Cap() int { return cap(q.buffer) }
