package event

import (
	"go.uber.org/zap"

	"github.com/stockbooks/backend/internal/domain/inventory"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// StockAuditHandler writes an audit log line for every stock event
type StockAuditHandler struct {
	logger *zap.Logger
}

// NewStockAuditHandler creates a new StockAuditHandler
func NewStockAuditHandler(logger *zap.Logger) *StockAuditHandler {
	return &StockAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler processes
func (h *StockAuditHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockIssued,
	}
}

// Handle logs the event with its quantities and costs
func (h *StockAuditHandler) Handle(event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockReceivedEvent:
		h.logger.Info("Stock received",
			zap.String("product_code", e.ProductCode),
			zap.String("lot_id", e.LotID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("unit_cost", e.UnitCost.String()),
		)
	case *inventory.StockIssuedEvent:
		h.logger.Info("Stock issued",
			zap.String("product_code", e.ProductCode),
			zap.String("quantity", e.Quantity.String()),
			zap.String("consumed_cost", e.ConsumedCost.String()),
		)
	default:
		h.logger.Info("Stock event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	return nil
}

var _ Handler = (*StockAuditHandler)(nil)
