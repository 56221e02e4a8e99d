package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// SupplierRef is an opaque reference to the supplier a lot was received from
type SupplierRef struct {
	ID   string `gorm:"column:supplier_id;type:varchar(64)" json:"id"`
	Name string `gorm:"column:supplier_name;type:varchar(255)" json:"name"`
}

// StockLot represents the remaining stock of one receipt. Lots are created on
// receipt, drawn down by issues in receipt order, and retained at zero
// remaining quantity for audit; depleted lots never take part in consumption
// again.
type StockLot struct {
	shared.BaseEntity
	PositionID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode       string          `gorm:"type:varchar(64);not null;index"`
	ReceivedAt        time.Time       `gorm:"not null;index"`
	OriginalQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SupplierRef       SupplierRef     `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (StockLot) TableName() string {
	return "stock_lots"
}

// NewStockLot creates a lot for a fresh receipt
func NewStockLot(
	positionID uuid.UUID,
	productCode string,
	quantity, unitCost decimal.Decimal,
	supplier SupplierRef,
	receivedAt time.Time,
) *StockLot {
	return &StockLot{
		BaseEntity:        shared.NewBaseEntity(),
		PositionID:        positionID,
		ProductCode:       productCode,
		ReceivedAt:        receivedAt,
		OriginalQuantity:  quantity,
		RemainingQuantity: quantity,
		UnitCost:          unitCost,
		SupplierRef:       supplier,
	}
}

// Take draws up to the requested quantity from the lot and returns the
// quantity actually taken. The lot never goes below zero.
func (l *StockLot) Take(quantity decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(quantity, l.RemainingQuantity)
	l.RemainingQuantity = l.RemainingQuantity.Sub(taken)
	l.UpdatedAt = time.Now()
	return taken
}

// HasStock returns true if the lot still has remaining quantity
func (l *StockLot) HasStock() bool {
	return l.RemainingQuantity.GreaterThan(decimal.Zero)
}

// IsDepleted returns true once the lot has been fully consumed
func (l *StockLot) IsDepleted() bool {
	return l.RemainingQuantity.LessThanOrEqual(decimal.Zero)
}

// Value returns the remaining value of the lot (remaining quantity x unit cost)
func (l *StockLot) Value() decimal.Decimal {
	return l.RemainingQuantity.Mul(l.UnitCost)
}
