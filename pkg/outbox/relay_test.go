package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/stackline/order-service/pkg/logging"
	"github.com/stackline/order-service/pkg/outbox"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []outbox.Event
	sent    []int64
	failed  map[int64]string
}

func (s *fakeStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.pending
	s.pending = nil
	return batch, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

func (s *fakeStore) ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error {
	return nil
}

type fakeProducer struct {
	mu       sync.Mutex
	messages []kafka.Message
	failKeys map[string]bool
}

func (p *fakeProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		if p.failKeys[string(m.Key)] {
			return errors.New("broker unavailable")
		}
		p.messages = append(p.messages, m)
	}
	return nil
}

func runRelay(t *testing.T, store *fakeStore, producer *fakeProducer) {
	t.Helper()
	log := logging.New()
	dispatch := outbox.NewDispatcher(log, producer, "order.events")
	relay := outbox.NewRelay(log, store, dispatch, "test-relay")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, relay.Run(ctx))
}

func TestRelay_DispatchesAndMarksSent(t *testing.T) {
	store := &fakeStore{pending: []outbox.Event{
		{ID: 1, AggregateType: "order", AggregateID: "order-1", Type: "OrderPlaced", Payload: []byte(`{"order_id":"order-1"}`), Traceparent: "00-aa-bb-01"},
		{ID: 2, AggregateType: "order", AggregateID: "order-2", Type: "OrderPlaced", Payload: []byte(`{"order_id":"order-2"}`)},
	}}
	producer := &fakeProducer{}

	runRelay(t, store, producer)

	require.ElementsMatch(t, []int64{1, 2}, store.sent)
	require.Len(t, producer.messages, 2)
	require.Equal(t, "order-1", string(producer.messages[0].Key))
	require.Equal(t, "order.events", producer.messages[0].Topic)

	var haveType, haveTrace bool
	for _, h := range producer.messages[0].Headers {
		switch h.Key {
		case "event_type":
			haveType = string(h.Value) == "OrderPlaced"
		case "traceparent":
			haveTrace = string(h.Value) == "00-aa-bb-01"
		}
	}
	require.True(t, haveType)
	require.True(t, haveTrace)
}

func TestRelay_FailedDispatchDoesNotBlockBatch(t *testing.T) {
	store := &fakeStore{pending: []outbox.Event{
		{ID: 1, AggregateID: "order-bad", Type: "OrderPlaced"},
		{ID: 2, AggregateID: "order-good", Type: "OrderPlaced"},
	}}
	producer := &fakeProducer{failKeys: map[string]bool{"order-bad": true}}

	runRelay(t, store, producer)

	require.Equal(t, []int64{2}, store.sent)
	require.Contains(t, store.failed, int64(1))
	require.Len(t, producer.messages, 1)
	require.Equal(t, "order-good", string(producer.messages[0].Key))
}
