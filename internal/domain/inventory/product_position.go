package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// ProductPosition is the aggregate root for one product's stock. It owns the
// ordered list of lots (insertion order is receipt order, which is the FIFO
// consumption order) and the derived aggregates: quantity on hand, total
// value and weighted average cost. Name, unit and inventory account are fixed
// by the first receipt. Positions are never deleted, even at zero quantity,
// because lots, movements and postings keep referencing them.
type ProductPosition struct {
	shared.BaseAggregateRoot
	ProductCode          string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	ProductName          string          `gorm:"type:varchar(255);not null"`
	Unit                 string          `gorm:"type:varchar(32);not null"`
	InventoryAccountCode string          `gorm:"type:varchar(16);not null"`
	QuantityOnHand       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightedAverageCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Lots []StockLot `gorm:"foreignKey:PositionID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductPosition) TableName() string {
	return "product_positions"
}

// NewProductPosition creates an empty position for a product. The first
// receipt determines the descriptive fields, so they are required here.
func NewProductPosition(productCode, productName, unit, inventoryAccountCode string) (*ProductPosition, error) {
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if inventoryAccountCode == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Inventory account code cannot be empty")
	}

	return &ProductPosition{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		ProductCode:          productCode,
		ProductName:          productName,
		Unit:                 unit,
		InventoryAccountCode: inventoryAccountCode,
		QuantityOnHand:       decimal.Zero,
		TotalValue:           decimal.Zero,
		WeightedAverageCost:  decimal.Zero,
		Lots:                 make([]StockLot, 0),
	}, nil
}

// Receive appends a new lot for a goods receipt and recomputes the aggregates.
// The lot becomes the last in consumption order.
func (p *ProductPosition) Receive(
	quantity, unitCost decimal.Decimal,
	supplier SupplierRef,
	receivedAt time.Time,
) (*StockLot, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewInvalidQuantityError("Receipt quantity must be positive")
	}
	if unitCost.LessThanOrEqual(decimal.Zero) {
		return nil, NewInvalidPriceError("Unit cost must be positive")
	}

	lot := NewStockLot(p.ID, p.ProductCode, quantity, unitCost, supplier, receivedAt)
	p.Lots = append(p.Lots, *lot)
	p.recalculate()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockReceivedEvent(p, lot))

	return lot, nil
}

// LotConsumption records how much an issue took from one lot
type LotConsumption struct {
	LotID         uuid.UUID       `json:"lot_id"`
	QuantityTaken decimal.Decimal `json:"quantity_taken"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// IssueBreakdown is the result of a FIFO issue
type IssueBreakdown struct {
	ConsumedCost      decimal.Decimal  `json:"consumed_cost"`
	ConsumedLots      []LotConsumption `json:"consumed_lots"`
	RemainingQuantity decimal.Decimal  `json:"remaining_quantity"`
}

// Issue consumes the requested quantity from the lots in receipt order and
// returns the cost breakdown. Availability is checked before any lot is
// touched: on InsufficientStockError the position is left exactly as it was.
func (p *ProductPosition) Issue(quantity decimal.Decimal) (*IssueBreakdown, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewInvalidQuantityError("Issue quantity must be positive")
	}

	available := p.availableQuantity()
	if available.LessThan(quantity) {
		return nil, NewInsufficientStockError(p.ProductCode, quantity, available)
	}

	remaining := quantity
	consumedCost := decimal.Zero
	consumed := make([]LotConsumption, 0)

	for i := range p.Lots {
		if remaining.IsZero() {
			break
		}
		lot := &p.Lots[i]
		if !lot.HasStock() {
			continue
		}

		taken := lot.Take(remaining)
		consumedCost = consumedCost.Add(taken.Mul(lot.UnitCost))
		consumed = append(consumed, LotConsumption{
			LotID:         lot.ID,
			QuantityTaken: taken,
			UnitCost:      lot.UnitCost,
		})
		remaining = remaining.Sub(taken)
	}

	p.recalculate()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockIssuedEvent(p, quantity, consumedCost))

	return &IssueBreakdown{
		ConsumedCost:      consumedCost,
		ConsumedLots:      consumed,
		RemainingQuantity: p.QuantityOnHand,
	}, nil
}

// ActiveLots returns the lots that still carry stock, in consumption order
func (p *ProductPosition) ActiveLots() []StockLot {
	active := make([]StockLot, 0, len(p.Lots))
	for _, lot := range p.Lots {
		if lot.HasStock() {
			active = append(active, lot)
		}
	}
	return active
}

// HasStock returns true if any quantity is on hand
func (p *ProductPosition) HasStock() bool {
	return p.QuantityOnHand.GreaterThan(decimal.Zero)
}

// CanFulfill returns true if the on-hand quantity covers the request
func (p *ProductPosition) CanFulfill(quantity decimal.Decimal) bool {
	return p.QuantityOnHand.GreaterThanOrEqual(quantity)
}

// availableQuantity derives on-hand from the lots rather than trusting the
// cached aggregate, keeping the no-negative-stock check independent of it.
func (p *ProductPosition) availableQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range p.Lots {
		total = total.Add(lot.RemainingQuantity)
	}
	return total
}

// recalculate re-derives the aggregates from the active lots. Invariant:
// QuantityOnHand and TotalValue always equal the sums over active lots.
func (p *ProductPosition) recalculate() {
	quantity := decimal.Zero
	value := decimal.Zero
	for _, lot := range p.Lots {
		if !lot.HasStock() {
			continue
		}
		quantity = quantity.Add(lot.RemainingQuantity)
		value = value.Add(lot.Value())
	}

	p.QuantityOnHand = quantity
	p.TotalValue = value
	if quantity.IsZero() {
		p.WeightedAverageCost = decimal.Zero
	} else {
		p.WeightedAverageCost = value.Div(quantity).Round(4)
	}
}
