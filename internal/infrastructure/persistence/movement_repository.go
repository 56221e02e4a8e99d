package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockbooks/backend/internal/domain/inventory"
)

// GormMovementRepository implements MovementRepository using GORM.
// The movement log is append-only.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a movement record
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByProductCode returns movements for a product, oldest first
func (r *GormMovementRepository) FindByProductCode(ctx context.Context, productCode string) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	if err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindAll returns all movements, oldest first
func (r *GormMovementRepository) FindAll(ctx context.Context) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	if err := r.db.WithContext(ctx).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Count returns the number of movement records
func (r *GormMovementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
