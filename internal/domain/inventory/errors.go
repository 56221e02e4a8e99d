package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// InsufficientStockError reports an issue that asked for more than the
// position has on hand. It carries both quantities so the calling layer can
// produce a precise message. The check happens before any mutation, so state
// is unchanged when this error is returned.
type InsufficientStockError struct {
	ProductCode string          `json:"product_code"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.ProductCode, e.Requested.String(), e.Available.String())
}

// Code returns the stable error code for HTTP mapping
func (e *InsufficientStockError) Code() string {
	return "INSUFFICIENT_STOCK"
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(productCode string, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		ProductCode: productCode,
		Requested:   requested,
		Available:   available,
	}
}

// NewInvalidQuantityError reports a non-positive quantity
func NewInvalidQuantityError(message string) *shared.DomainError {
	return shared.NewDomainError("INVALID_QUANTITY", message)
}

// NewInvalidPriceError reports a non-positive unit cost or sale price
func NewInvalidPriceError(message string) *shared.DomainError {
	return shared.NewDomainError("INVALID_PRICE", message)
}

// NewUnknownProductError reports an issue against a product with no position
func NewUnknownProductError(productCode string) *shared.DomainError {
	return shared.NewDomainError("UNKNOWN_PRODUCT", fmt.Sprintf("No stock position exists for product %s", productCode))
}
