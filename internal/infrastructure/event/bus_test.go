package event

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/inventory"
	"github.com/stockbooks/backend/internal/domain/shared"
)

type recordingHandler struct {
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) Handle(event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func newReceivedEvent(t *testing.T) *inventory.StockReceivedEvent {
	t.Helper()
	position, err := inventory.NewProductPosition("OIL", "Sunflower oil", "l", accounting.AccountCodeInventory)
	require.NoError(t, err)
	lot, err := position.Receive(
		decimal.NewFromInt(10),
		decimal.NewFromInt(800),
		inventory.SupplierRef{ID: "SUP-1"},
		time.Now().UTC(),
	)
	require.NoError(t, err)
	return inventory.NewStockReceivedEvent(position, lot)
}

func TestInMemoryEventBus(t *testing.T) {
	t.Run("delivers events to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{inventory.EventTypeStockReceived}}
		bus.Subscribe(handler)

		event := newReceivedEvent(t)
		require.NoError(t, bus.Publish(event))

		require.Len(t, handler.handled, 1)
		assert.Equal(t, inventory.EventTypeStockReceived, handler.handled[0].EventType())
	})

	t.Run("ignores events with no handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{inventory.EventTypeStockIssued}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(newReceivedEvent(t)))
		assert.Empty(t, handler.handled)
	})

	t.Run("failing handler does not block the rest", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{
			types: []string{inventory.EventTypeStockReceived},
			err:   errors.New("boom"),
		}
		healthy := &recordingHandler{types: []string{inventory.EventTypeStockReceived}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(newReceivedEvent(t)))
		assert.Len(t, healthy.handled, 1)
	})

	t.Run("recovers from a panicking handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{
			types:  []string{inventory.EventTypeStockReceived},
			panics: true,
		}
		healthy := &recordingHandler{types: []string{inventory.EventTypeStockReceived}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(newReceivedEvent(t)))
		assert.Len(t, healthy.handled, 1)
	})
}

func TestStockAuditHandler(t *testing.T) {
	handler := NewStockAuditHandler(zap.NewNop())
	assert.ElementsMatch(t,
		[]string{inventory.EventTypeStockReceived, inventory.EventTypeStockIssued},
		handler.EventTypes(),
	)
	assert.NoError(t, handler.Handle(newReceivedEvent(t)))
}
