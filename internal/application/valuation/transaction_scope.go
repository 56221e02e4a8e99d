package valuation

import (
	"context"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the valuation repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll back
// atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a receipt or
// issue writes to, scoped to one transaction.
//
// Aggregate boundary notes:
//   - PositionRepo: repository for the ProductPosition aggregate root. Lots
//     are child entities and are persisted through the aggregate save, never
//     independently.
//   - MovementRepo and PostingRepo: append-only audit logs written alongside
//     the aggregate in the same transaction.
type TransactionalRepositories interface {
	// PositionRepo returns the position repository scoped to the current transaction
	PositionRepo() inventory.ProductPositionRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// PostingRepo returns the posting repository scoped to the current transaction
	PostingRepo() accounting.PostingRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests and for setups without transaction support.
type NoOpTransactionScope struct {
	positionRepo inventory.ProductPositionRepository
	movementRepo inventory.MovementRepository
	postingRepo  accounting.PostingRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	positionRepo inventory.ProductPositionRepository,
	movementRepo inventory.MovementRepository,
	postingRepo accounting.PostingRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		positionRepo: positionRepo,
		movementRepo: movementRepo,
		postingRepo:  postingRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PositionRepo returns the position repository
func (s *NoOpTransactionScope) PositionRepo() inventory.ProductPositionRepository {
	return s.positionRepo
}

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// PostingRepo returns the posting repository
func (s *NoOpTransactionScope) PostingRepo() accounting.PostingRepository {
	return s.postingRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
