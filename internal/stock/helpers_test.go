package stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const waitFor = 2 * time.Second

// fakeStore is an in-memory ScopeFactory whose behaviour can be scripted per product.
type fakeStore struct {
	mu            sync.Mutex
	stock         map[int]int
	calls         []int
	failOn        map[int]error
	panicOn       map[int]bool
	scopeFailures int
	block         chan struct{}
	blockOn       int
	seenCtxErr    []error
	opened        int
	committed     int
	discarded     int
}

func newFakeStore(ids ...int) *fakeStore {
	s := &fakeStore{
		stock:   make(map[int]int),
		failOn:  make(map[int]error),
		panicOn: make(map[int]bool),
	}
	for _, id := range ids {
		s.stock[id] = 0
	}
	return s
}

func (s *fakeStore) NewScope(ctx context.Context) (Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opened++
	if s.scopeFailures > 0 {
		s.scopeFailures--
		return nil, errors.New("connection refused")
	}
	return &fakeScope{store: s, pending: make(map[int]int)}, nil
}

func (s *fakeStore) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}

func (s *fakeStore) Quantity(id int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.stock[id]
	return q, ok
}

func (s *fakeStore) Counts() (opened, committed, discarded int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.committed, s.discarded
}

type fakeScope struct {
	store   *fakeStore
	pending map[int]int
}

func (sc *fakeScope) UpdateStockQuantity(ctx context.Context, productID, quantity int) (bool, error) {
	s := sc.store

	s.mu.Lock()
	s.calls = append(s.calls, productID)
	block := s.block
	blockOn := s.blockOn
	s.mu.Unlock()

	if block != nil && blockOn == productID {
		<-block
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seenCtxErr = append(s.seenCtxErr, ctx.Err())
	if s.panicOn[productID] {
		panic("scope exploded")
	}
	if err := s.failOn[productID]; err != nil {
		return false, err
	}
	if _, ok := s.stock[productID]; !ok {
		return false, nil
	}
	sc.pending[productID] = quantity
	return true, nil
}

func (sc *fakeScope) Commit() error {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, q := range sc.pending {
		s.stock[id] = q
	}
	sc.pending = nil
	s.committed++
	return nil
}

func (sc *fakeScope) Discard() {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sc.pending = nil
	s.discarded++
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []StockUpdatedEvent
	err    error
}

func (p *recordingPublisher) PublishStockUpdated(_ context.Context, event StockUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []StockUpdatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]StockUpdatedEvent(nil), p.events...)
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

type harness struct {
	queue     *BoundedQueue
	store     *fakeStore
	publisher *recordingPublisher
	consumer  *UpdateConsumer
	submitter *QueueSubmitter
	logs      *observer.ObservedLogs
}

func newHarness(capacity int, store *fakeStore) *harness {
	logger, logs := newObservedLogger()
	queue := NewBoundedQueue(capacity)
	metrics := NewNopMetrics(queue)
	publisher := &recordingPublisher{}
	tracer := noop.NewTracerProvider().Tracer("test")

	return &harness{
		queue:     queue,
		store:     store,
		publisher: publisher,
		consumer:  NewUpdateConsumer(queue, store, publisher, logger, tracer, metrics),
		submitter: NewQueueSubmitter(context.Background(), queue, logger, metrics),
		logs:      logs,
	}
}

// start runs the consumer in the background and returns a stop function
// that cancels it and waits for Start to return.
func (h *harness) start(t *testing.T) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.consumer.Start(ctx) }()

	require.Eventually(t, func() bool {
		return h.consumer.State() == StateDraining || h.consumer.State() == StateProcessing
	}, waitFor, 5*time.Millisecond)

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(waitFor):
				t.Fatal("consumer did not stop")
			}
		})
	}
	t.Cleanup(stop)
	return stop
}

func (h *harness) submit(t *testing.T, productID, quantity int) string {
	t.Helper()
	id, err := h.submitter.Submit(context.Background(), productID, quantity)
	require.NoError(t, err)
	return id.String()
}
