package accounting

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// SourceDocumentType identifies the business document that produced a posting
type SourceDocumentType string

const (
	SourceDocumentTypePurchase SourceDocumentType = "PURCHASE"
	SourceDocumentTypeSale     SourceDocumentType = "SALE"
)

// IsValid checks if the source document type is valid
func (t SourceDocumentType) IsValid() bool {
	return t == SourceDocumentTypePurchase || t == SourceDocumentTypeSale
}

// String returns the string representation
func (t SourceDocumentType) String() string {
	return string(t)
}

// Posting is one balanced double-entry line: a single amount moved from the
// credit account to the debit account. Postings are immutable once created
// and are only ever appended to the journal.
type Posting struct {
	shared.BaseEntity
	Date                 time.Time          `gorm:"not null;index"`
	DebitAccountCode     string             `gorm:"type:varchar(16);not null;index"`
	CreditAccountCode    string             `gorm:"type:varchar(16);not null;index"`
	Amount               decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Description          string             `gorm:"type:text"`
	SourceDocumentType   SourceDocumentType `gorm:"type:varchar(16);not null;index"`
	SourceDocumentNumber string             `gorm:"type:varchar(64);not null;index"`
	ProductCode          string             `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (Posting) TableName() string {
	return "postings"
}

// newPosting creates a journal line. Validation happens in the Journal before
// any posting is constructed, so this stays unexported.
func newPosting(
	debitAccountCode, creditAccountCode string,
	amount decimal.Decimal,
	docType SourceDocumentType,
	docNumber, productCode, description string,
	date time.Time,
) Posting {
	return Posting{
		BaseEntity:           shared.NewBaseEntity(),
		Date:                 date,
		DebitAccountCode:     debitAccountCode,
		CreditAccountCode:    creditAccountCode,
		Amount:               amount,
		Description:          description,
		SourceDocumentType:   docType,
		SourceDocumentNumber: docNumber,
		ProductCode:          productCode,
	}
}
