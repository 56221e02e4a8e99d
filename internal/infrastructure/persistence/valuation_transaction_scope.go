package persistence

import (
	"context"

	"gorm.io/gorm"

	appval "github.com/stockbooks/backend/internal/application/valuation"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/inventory"
)

// GormTransactionScope implements the valuation TransactionScope using GORM
// transactions, so a receipt or issue commits its position, movement and
// postings atomically.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appval.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// PositionRepo returns the position repository scoped to the current transaction
func (r *gormTransactionalRepositories) PositionRepo() inventory.ProductPositionRepository {
	return NewGormProductPositionRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// PostingRepo returns the posting repository scoped to the current transaction
func (r *gormTransactionalRepositories) PostingRepo() accounting.PostingRepository {
	return NewGormPostingRepository(r.tx)
}

var _ appval.TransactionScope = (*GormTransactionScope)(nil)
var _ appval.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
