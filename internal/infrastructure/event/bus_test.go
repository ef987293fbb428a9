package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), uuid.New()),
		Data:            "payload",
	}
}

type recordingHandler struct {
	types   []string
	mu      sync.Mutex
	handled []string
	err     error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, ev.EventType())
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func startedBus(t *testing.T) *InMemoryEventBus {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t)
	payments := &recordingHandler{types: []string{"PaymentRecorded"}}
	all := &recordingHandler{}
	bus.Subscribe(payments)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("PaymentRecorded"), newTestEvent("DocumentCreated"))
	require.NoError(t, err)

	assert.Equal(t, []string{"PaymentRecorded"}, payments.handled)
	assert.Equal(t, []string{"PaymentRecorded", "DocumentCreated"}, all.handled)
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := startedBus(t)
	failing := &recordingHandler{err: errors.New("nope")}
	panicking := &recordingHandler{panics: true}
	ok := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))
	assert.Len(t, ok.handled, 1)
	assert.Len(t, failing.handled, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	h := &recordingHandler{types: []string{"A", "B"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
	assert.Empty(t, h.handled)
	assert.Empty(t, bus.registry.Handlers("B"))
}

func TestInMemoryEventBus_StoppedDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
	assert.Empty(t, h.handled)
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))
	ev := newTestEvent("PaymentReversed")

	require.NoError(t, h.Handle(context.Background(), ev))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "PaymentReversed", fields["event_type"])
	assert.Equal(t, ev.AggregateID().String(), fields["aggregate_id"])
	assert.Contains(t, fields["payload"], `"data":"payload"`)
	assert.Nil(t, h.EventTypes())
}
