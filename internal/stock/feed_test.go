package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// MockSubmitter is a mock implementation of Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, productID, newQuantity int) (uuid.UUID, error) {
	args := m.Called(ctx, productID, newQuantity)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// scriptedConsumer returns the queued messages and then blocks until ctx is done.
type scriptedConsumer struct {
	messages chan kafkago.Message
}

func (c *scriptedConsumer) ReadMessage(ctx context.Context) (*kafkago.Message, error) {
	select {
	case msg := <-c.messages:
		return &msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *scriptedConsumer) Close() error { return nil }

func newFeedConsumer(submitter Submitter) *FeedConsumer {
	logger, _ := newObservedLogger()
	return NewFeedConsumer(&scriptedConsumer{messages: make(chan kafkago.Message)}, submitter, logger)
}

func TestHandleStockFeedSubmitsValidEvent(t *testing.T) {
	submitter := new(MockSubmitter)
	submitter.On("Submit", mock.Anything, 4, 11).Return(uuid.New(), nil).Once()

	feed := newFeedConsumer(submitter)
	err := feed.HandleStockFeed(context.Background(), kafkago.Message{Value: []byte(`{"product_id":4,"quantity":11}`)})

	require.NoError(t, err)
	submitter.AssertExpectations(t)
}

func TestHandleStockFeedRejectsInvalidMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"product_id":`},
		{name: "missing product", payload: `{"quantity":3}`},
		{name: "negative quantity", payload: `{"product_id":2,"quantity":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := new(MockSubmitter)
			feed := newFeedConsumer(submitter)

			err := feed.HandleStockFeed(context.Background(), kafkago.Message{Value: []byte(tt.payload)})

			assert.Error(t, err)
			submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleStockFeedPropagatesTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	submitter := new(MockSubmitter)
	submitter.On("Submit", mock.MatchedBy(func(ctx context.Context) bool {
		return trace.SpanContextFromContext(ctx).TraceID().String() == "4bf92f3577b34da6a3ce929d0e0e4736"
	}), 1, 2).Return(uuid.New(), nil).Once()

	feed := newFeedConsumer(submitter)
	err := feed.HandleStockFeed(context.Background(), kafkago.Message{
		Value:   []byte(`{"product_id":1,"quantity":2}`),
		Headers: []kafkago.Header{{Key: "traceparent", Value: []byte(traceparent)}},
	})

	require.NoError(t, err)
	submitter.AssertExpectations(t)
}

func TestFeedConsumerStartSubmitsUntilCancelled(t *testing.T) {
	submitter := new(MockSubmitter)
	submitter.On("Submit", mock.Anything, 1, 5).Return(uuid.New(), nil).Once()
	submitter.On("Submit", mock.Anything, 2, 0).Return(uuid.New(), nil).Once()

	consumer := &scriptedConsumer{messages: make(chan kafkago.Message)}
	logger, _ := newObservedLogger()
	feed := NewFeedConsumer(consumer, submitter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Start(ctx) }()

	consumer.messages <- kafkago.Message{Value: []byte(`{"product_id":1,"quantity":5}`)}
	consumer.messages <- kafkago.Message{Value: []byte(`not json`)}
	consumer.messages <- kafkago.Message{Value: []byte(`{"product_id":2,"quantity":0}`)}

	require.Eventually(t, func() bool { return len(submitter.Calls) == 2 }, waitFor, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("feed consumer did not stop")
	}
	submitter.AssertExpectations(t)
}
