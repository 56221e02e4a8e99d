package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	// MovementTypeIn is a goods receipt
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut is a goods issue
	MovementTypeOut MovementType = "OUT"
)

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// DocumentType identifies the business document behind a movement
type DocumentType string

const (
	DocumentTypePurchase DocumentType = "PURCHASE"
	DocumentTypeSale     DocumentType = "SALE"
)

// IsValid returns true if the document type is valid
func (t DocumentType) IsValid() bool {
	return t == DocumentTypePurchase || t == DocumentTypeSale
}

// Movement is one append-only audit record per receipt or issue. For OUT
// movements the unit cost is the average cost of the issue (consumed cost
// divided by quantity), not any single lot's cost.
type Movement struct {
	shared.BaseEntity
	Type           MovementType    `gorm:"type:varchar(8);not null;index"`
	ProductCode    string          `gorm:"type:varchar(64);not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DocumentType   DocumentType    `gorm:"type:varchar(16);not null"`
	DocumentNumber string          `gorm:"type:varchar(64);not null;index"`
	Description    string          `gorm:"type:text"`
	OccurredAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a movement record
func NewMovement(
	movementType MovementType,
	productCode string,
	quantity, unitCost, totalAmount decimal.Decimal,
	documentType DocumentType,
	documentNumber, description string,
	occurredAt time.Time,
) *Movement {
	return &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		Type:           movementType,
		ProductCode:    productCode,
		Quantity:       quantity,
		UnitCost:       unitCost,
		TotalAmount:    totalAmount,
		DocumentType:   documentType,
		DocumentNumber: documentNumber,
		Description:    description,
		OccurredAt:     occurredAt,
	}
}
