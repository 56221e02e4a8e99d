package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductPositionRepository defines the interface for position persistence.
//
// StockLot is a child entity within the ProductPosition aggregate: lots are
// loaded and saved with their position, in receipt order, and are never
// modified outside the aggregate root's Receive/Issue methods.
type ProductPositionRepository interface {
	// FindByID finds a position by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductPosition, error)

	// FindByProductCode finds a position by its product code, lots included
	FindByProductCode(ctx context.Context, productCode string) (*ProductPosition, error)

	// FindAll returns all positions ordered by product name, lots included
	FindAll(ctx context.Context) ([]ProductPosition, error)

	// ExistsByProductCode checks whether a position exists for the code
	ExistsByProductCode(ctx context.Context, productCode string) (bool, error)

	// Save creates or updates a position together with its lots
	Save(ctx context.Context, position *ProductPosition) error

	// Count returns the number of positions
	Count(ctx context.Context) (int64, error)
}

// MovementRepository defines the interface for movement persistence.
// Movements are an append-only audit trail: create only, no update or delete.
type MovementRepository interface {
	// Create appends a movement record
	Create(ctx context.Context, movement *Movement) error

	// FindByProductCode returns movements for a product, oldest first
	FindByProductCode(ctx context.Context, productCode string) ([]Movement, error)

	// FindAll returns all movements, oldest first
	FindAll(ctx context.Context) ([]Movement, error)

	// Count returns the number of movement records
	Count(ctx context.Context) (int64, error)
}
