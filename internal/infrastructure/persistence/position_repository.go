package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockbooks/backend/internal/domain/inventory"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// GormProductPositionRepository implements ProductPositionRepository using GORM.
// Lots are loaded with their position in receipt order and saved through the
// aggregate, never independently.
type GormProductPositionRepository struct {
	db *gorm.DB
}

// NewGormProductPositionRepository creates a new GormProductPositionRepository
func NewGormProductPositionRepository(db *gorm.DB) *GormProductPositionRepository {
	return &GormProductPositionRepository{db: db}
}

func withLots(db *gorm.DB) *gorm.DB {
	return db.Preload("Lots", func(db *gorm.DB) *gorm.DB {
		return db.Order("received_at ASC, created_at ASC")
	})
}

// FindByID finds a position by its ID
func (r *GormProductPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductPosition, error) {
	var position inventory.ProductPosition
	if err := withLots(r.db.WithContext(ctx)).First(&position, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

// FindByProductCode finds a position by its product code, lots included
func (r *GormProductPositionRepository) FindByProductCode(ctx context.Context, productCode string) (*inventory.ProductPosition, error) {
	var position inventory.ProductPosition
	if err := withLots(r.db.WithContext(ctx)).
		Where("product_code = ?", productCode).
		First(&position).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

// FindAll returns all positions ordered by product name, lots included
func (r *GormProductPositionRepository) FindAll(ctx context.Context) ([]inventory.ProductPosition, error) {
	var positions []inventory.ProductPosition
	if err := withLots(r.db.WithContext(ctx)).
		Order("product_name ASC").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// ExistsByProductCode checks whether a position exists for the code
func (r *GormProductPositionRepository) ExistsByProductCode(ctx context.Context, productCode string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.ProductPosition{}).
		Where("product_code = ?", productCode).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a position together with its lots. Existing lot
// rows are updated in place (remaining quantity shrinks on issues), so the
// save writes the full association set.
func (r *GormProductPositionRepository) Save(ctx context.Context, position *inventory.ProductPosition) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(position).Error
}

// Count returns the number of positions
func (r *GormProductPositionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.ProductPosition{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.ProductPositionRepository = (*GormProductPositionRepository)(nil)
