package stock

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundedQueueDefaultsCapacity(t *testing.T) {
	assert.Equal(t, DefaultQueueCapacity, NewBoundedQueue(0).Cap())
	assert.Equal(t, DefaultQueueCapacity, NewBoundedQueue(-3).Cap())
	assert.Equal(t, 2, NewBoundedQueue(2).Cap())
}

func TestBoundedQueuePreservesFIFOOrder(t *testing.T) {
	q := NewBoundedQueue(16)
	ctx := context.Background()

	var sent []UpdateMessage
	for i := 1; i <= 10; i++ {
		msg := NewUpdateMessage(i, i*10)
		require.NoError(t, q.Enqueue(ctx, msg))
		sent = append(sent, msg)
	}

	var received []UpdateMessage
	for msg := range q.Messages(ctx) {
		received = append(received, msg)
		if len(received) == len(sent) {
			break
		}
	}

	assert.Equal(t, sent, received)
	assert.Zero(t, q.Len())
}

func TestBoundedQueueEnqueueSuspendsWhileFull(t *testing.T) {
	q := NewBoundedQueue(1)
	ctx := context.Background()

	first := NewUpdateMessage(1, 1)
	second := NewUpdateMessage(2, 2)
	require.NoError(t, q.Enqueue(ctx, first))

	admitted := make(chan error, 1)
	go func() { admitted <- q.Enqueue(ctx, second) }()

	select {
	case <-admitted:
		t.Fatal("enqueue on a full queue returned before space was freed")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, q.Len())

	next, stop := iter.Pull(q.Messages(ctx))
	defer stop()

	got, ok := next()
	require.True(t, ok)
	assert.Equal(t, first, got)

	select {
	case err := <-admitted:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("enqueue did not complete after a slot was freed")
	}

	got, ok = next()
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestBoundedQueueNeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	q := NewBoundedQueue(capacity)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = q.Enqueue(ctx, NewUpdateMessage(p+1, i))
			}
		}(p)
	}

	received := 0
	for range q.Messages(ctx) {
		assert.LessOrEqual(t, q.Len(), capacity)
		received++
		if received == 8*25 {
			break
		}
	}
	wg.Wait()
	assert.Equal(t, 8*25, received)
}

func TestBoundedQueueCancelledEnqueueIsNotAdmitted(t *testing.T) {
	q := NewBoundedQueue(1)
	first := NewUpdateMessage(1, 1)
	require.NoError(t, q.Enqueue(context.Background(), first))

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- q.Enqueue(ctx, NewUpdateMessage(2, 2)) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, ErrSubmissionCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("cancelled enqueue did not return")
	}

	next, stop := iter.Pull(q.Messages(context.Background()))
	defer stop()

	got, ok := next()
	require.True(t, ok)
	assert.Equal(t, first, got)
	assert.Zero(t, q.Len(), "cancelled message must never reach the reader")
}

func TestBoundedQueueEnqueueWithDoneContext(t *testing.T) {
	q := NewBoundedQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Enqueue(ctx, NewUpdateMessage(1, 1))
	require.ErrorIs(t, err, ErrSubmissionCancelled)
	assert.Zero(t, q.Len())
}

func TestBoundedQueueMessagesEndsOnCancellation(t *testing.T) {
	q := NewBoundedQueue(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan int, 1)
	go func() {
		n := 0
		for range q.Messages(ctx) {
			n++
		}
		done <- n
	}()

	require.NoError(t, q.Enqueue(context.Background(), NewUpdateMessage(1, 1)))
	require.Eventually(t, func() bool { return q.Len() == 0 }, waitFor, 5*time.Millisecond)
	cancel()

	select {
	case n := <-done:
		assert.Equal(t, 1, n)
	case <-time.After(waitFor):
		t.Fatal("drain sequence did not end after cancellation")
	}
}

func TestBoundedQueueRejectsSecondReader(t *testing.T) {
	q := NewBoundedQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for range q.Messages(ctx) {
		}
	}()
	require.Eventually(t, q.reading.Load, waitFor, 5*time.Millisecond)

	assert.Panics(t, func() {
		for range q.Messages(ctx) {
		}
	})
}
