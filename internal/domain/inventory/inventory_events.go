package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProductPosition = "ProductPosition"

// Event type constants
const (
	EventTypeStockReceived = "StockReceived"
	EventTypeStockIssued   = "StockIssued"
)

// StockReceivedEvent is raised when a receipt creates a new lot
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	PositionID  uuid.UUID       `json:"position_id"`
	ProductCode string          `json:"product_code"`
	LotID       uuid.UUID       `json:"lot_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(position *ProductPosition, lot *StockLot) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeProductPosition, position.ID),
		PositionID:      position.ID,
		ProductCode:     position.ProductCode,
		LotID:           lot.ID,
		Quantity:        lot.OriginalQuantity,
		UnitCost:        lot.UnitCost,
	}
}

// EventType returns the event type name
func (e *StockReceivedEvent) EventType() string {
	return EventTypeStockReceived
}

// StockIssuedEvent is raised when an issue consumes stock in FIFO order
type StockIssuedEvent struct {
	shared.BaseDomainEvent
	PositionID   uuid.UUID       `json:"position_id"`
	ProductCode  string          `json:"product_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	ConsumedCost decimal.Decimal `json:"consumed_cost"`
}

// NewStockIssuedEvent creates a new StockIssuedEvent
func NewStockIssuedEvent(position *ProductPosition, quantity, consumedCost decimal.Decimal) *StockIssuedEvent {
	return &StockIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIssued, AggregateTypeProductPosition, position.ID),
		PositionID:      position.ID,
		ProductCode:     position.ProductCode,
		Quantity:        quantity,
		ConsumedCost:    consumedCost,
	}
}

// EventType returns the event type name
func (e *StockIssuedEvent) EventType() string {
	return EventTypeStockIssued
}
