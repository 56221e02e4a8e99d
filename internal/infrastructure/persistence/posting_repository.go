package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockbooks/backend/internal/domain/accounting"
)

// GormPostingRepository implements PostingRepository using GORM.
// The posting log is append-only.
type GormPostingRepository struct {
	db *gorm.DB
}

// NewGormPostingRepository creates a new GormPostingRepository
func NewGormPostingRepository(db *gorm.DB) *GormPostingRepository {
	return &GormPostingRepository{db: db}
}

// Create appends a posting to the durable log
func (r *GormPostingRepository) Create(ctx context.Context, posting *accounting.Posting) error {
	return r.db.WithContext(ctx).Create(posting).Error
}

// CreateBatch appends multiple postings in order
func (r *GormPostingRepository) CreateBatch(ctx context.Context, postings []accounting.Posting) error {
	if len(postings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&postings).Error
}

// FindAll returns all postings ordered by date, then insertion order
func (r *GormPostingRepository) FindAll(ctx context.Context) ([]accounting.Posting, error) {
	var postings []accounting.Posting
	if err := r.db.WithContext(ctx).
		Order("date ASC, created_at ASC").
		Find(&postings).Error; err != nil {
		return nil, err
	}
	return postings, nil
}

// FindByDocument returns postings for a source document number
func (r *GormPostingRepository) FindByDocument(ctx context.Context, documentNumber string) ([]accounting.Posting, error) {
	var postings []accounting.Posting
	if err := r.db.WithContext(ctx).
		Where("source_document_number = ?", documentNumber).
		Order("date ASC, created_at ASC").
		Find(&postings).Error; err != nil {
		return nil, err
	}
	return postings, nil
}

// FindByProduct returns postings that reference a product code
func (r *GormPostingRepository) FindByProduct(ctx context.Context, productCode string) ([]accounting.Posting, error) {
	var postings []accounting.Posting
	if err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		Order("date ASC, created_at ASC").
		Find(&postings).Error; err != nil {
		return nil, err
	}
	return postings, nil
}

// Count returns the number of postings in the log
func (r *GormPostingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&accounting.Posting{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ accounting.PostingRepository = (*GormPostingRepository)(nil)
