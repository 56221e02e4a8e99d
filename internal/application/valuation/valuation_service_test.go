package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/inventory"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// MockPositionRepository is a mock implementation of ProductPositionRepository
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductPosition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductPosition), args.Error(1)
}

func (m *MockPositionRepository) FindByProductCode(ctx context.Context, productCode string) (*inventory.ProductPosition, error) {
	args := m.Called(ctx, productCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductPosition), args.Error(1)
}

func (m *MockPositionRepository) FindAll(ctx context.Context) ([]inventory.ProductPosition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.ProductPosition), args.Error(1)
}

func (m *MockPositionRepository) ExistsByProductCode(ctx context.Context, productCode string) (bool, error) {
	args := m.Called(ctx, productCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockPositionRepository) Save(ctx context.Context, position *inventory.ProductPosition) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

func (m *MockPositionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByProductCode(ctx context.Context, productCode string) ([]inventory.Movement, error) {
	args := m.Called(ctx, productCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindAll(ctx context.Context) ([]inventory.Movement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPostingRepository is a mock implementation of PostingRepository
type MockPostingRepository struct {
	mock.Mock
}

func (m *MockPostingRepository) Create(ctx context.Context, posting *accounting.Posting) error {
	args := m.Called(ctx, posting)
	return args.Error(0)
}

func (m *MockPostingRepository) CreateBatch(ctx context.Context, postings []accounting.Posting) error {
	args := m.Called(ctx, postings)
	return args.Error(0)
}

func (m *MockPostingRepository) FindAll(ctx context.Context) ([]accounting.Posting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindByDocument(ctx context.Context, documentNumber string) ([]accounting.Posting, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindByProduct(ctx context.Context, productCode string) ([]accounting.Posting, error) {
	args := m.Called(ctx, productCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.Posting), args.Error(1)
}

func (m *MockPostingRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type serviceFixture struct {
	service      *ValuationService
	positionRepo *MockPositionRepository
	movementRepo *MockMovementRepository
	postingRepo  *MockPostingRepository
	journal      *accounting.Journal
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	positionRepo := new(MockPositionRepository)
	movementRepo := new(MockMovementRepository)
	postingRepo := new(MockPostingRepository)
	catalog := accounting.MustDefaultCatalog()
	journal := accounting.NewJournal(catalog)
	scope := NewNoOpTransactionScope(positionRepo, movementRepo, postingRepo)
	service := NewValuationService(
		positionRepo, movementRepo, postingRepo,
		scope, journal, catalog, zap.NewNop(), time.Second,
	)
	return &serviceFixture{
		service:      service,
		positionRepo: positionRepo,
		movementRepo: movementRepo,
		postingRepo:  postingRepo,
		journal:      journal,
	}
}

func positionWithStock(t *testing.T, quantity, unitCost float64) *inventory.ProductPosition {
	t.Helper()
	position, err := inventory.NewProductPosition("OIL", "Sunflower oil", "l", accounting.AccountCodeInventory)
	require.NoError(t, err)
	_, err = position.Receive(
		decimal.NewFromFloat(quantity),
		decimal.NewFromFloat(unitCost),
		inventory.SupplierRef{ID: "SUP-1", Name: "Agro Trade SRL"},
		time.Now(),
	)
	require.NoError(t, err)
	position.ClearDomainEvents()
	return position
}

func TestApplyReceipt(t *testing.T) {
	ctx := context.Background()

	receiptCmd := func() ReceiptCommand {
		return ReceiptCommand{
			ProductCode:    "OIL",
			ProductName:    "Sunflower oil",
			Unit:           "l",
			Quantity:       decimal.NewFromInt(10),
			UnitCost:       decimal.NewFromInt(800),
			SupplierID:     "SUP-1",
			SupplierName:   "Agro Trade SRL",
			DocumentNumber: "PO-001",
			Description:    "Initial stock",
		}
	}

	t.Run("first receipt creates the position", func(t *testing.T) {
		f := newServiceFixture(t)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(nil, shared.ErrNotFound)
		f.positionRepo.On("Save", ctx, mock.AnythingOfType("*inventory.ProductPosition")).Return(nil)
		f.movementRepo.On("Create", ctx, mock.AnythingOfType("*inventory.Movement")).Return(nil)
		f.postingRepo.On("Create", ctx, mock.AnythingOfType("*accounting.Posting")).Return(nil)

		result, err := f.service.ApplyReceipt(ctx, receiptCmd())
		require.NoError(t, err)

		assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(8000)))
		assert.True(t, result.Position.QuantityOnHand.Equal(decimal.NewFromInt(10)))
		assert.True(t, result.Position.WeightedAverageCost.Equal(decimal.NewFromInt(800)))
		assert.Equal(t, accounting.AccountCodeInventory, result.Posting.DebitAccountCode)
		assert.Equal(t, accounting.AccountCodePayables, result.Posting.CreditAccountCode)
		assert.Equal(t, 1, f.journal.Len())
		f.positionRepo.AssertExpectations(t)
		f.movementRepo.AssertExpectations(t)
		f.postingRepo.AssertExpectations(t)
	})

	t.Run("later receipt appends a lot to the existing position", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := positionWithStock(t, 10, 800)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(existing, nil)
		f.positionRepo.On("Save", ctx, existing).Return(nil)
		f.movementRepo.On("Create", ctx, mock.AnythingOfType("*inventory.Movement")).Return(nil)
		f.postingRepo.On("Create", ctx, mock.AnythingOfType("*accounting.Posting")).Return(nil)

		cmd := receiptCmd()
		cmd.Quantity = decimal.NewFromInt(5)
		cmd.UnitCost = decimal.NewFromInt(820)
		cmd.DocumentNumber = "PO-002"

		result, err := f.service.ApplyReceipt(ctx, cmd)
		require.NoError(t, err)

		assert.True(t, result.Position.QuantityOnHand.Equal(decimal.NewFromInt(15)))
		assert.Len(t, result.Position.ActiveLots, 2)
	})

	t.Run("invalid quantity reaches no repository", func(t *testing.T) {
		f := newServiceFixture(t)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(nil, shared.ErrNotFound)

		cmd := receiptCmd()
		cmd.Quantity = decimal.Zero

		_, err := f.service.ApplyReceipt(ctx, cmd)
		require.Error(t, err)
		f.positionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.journal.Len())
	})

	t.Run("missing document number is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		cmd := receiptCmd()
		cmd.DocumentNumber = ""
		_, err := f.service.ApplyReceipt(ctx, cmd)
		require.Error(t, err)
	})
}

func TestApplyIssue(t *testing.T) {
	ctx := context.Background()

	issueCmd := func() IssueCommand {
		return IssueCommand{
			ProductCode:    "OIL",
			Quantity:       decimal.NewFromInt(4),
			SalePrice:      decimal.NewFromInt(900),
			DocumentNumber: "INV-001",
			Description:    "Sale to customer",
		}
	}

	t.Run("issue posts cost and revenue and records the out movement", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := positionWithStock(t, 10, 800)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(existing, nil)
		f.positionRepo.On("Save", ctx, existing).Return(nil)

		var recorded *inventory.Movement
		f.movementRepo.On("Create", ctx, mock.AnythingOfType("*inventory.Movement")).
			Run(func(args mock.Arguments) {
				recorded = args.Get(1).(*inventory.Movement)
			}).Return(nil)
		f.postingRepo.On("CreateBatch", ctx, mock.AnythingOfType("[]accounting.Posting")).Return(nil)

		result, err := f.service.ApplyIssue(ctx, issueCmd())
		require.NoError(t, err)

		assert.True(t, result.CostOfGoodsSold.Equal(decimal.NewFromInt(3200)))
		assert.True(t, result.SaleAmount.Equal(decimal.NewFromInt(3600)))
		assert.True(t, result.Profit.Equal(decimal.NewFromInt(400)))
		assert.True(t, result.RemainingQuantity.Equal(decimal.NewFromInt(6)))
		require.Len(t, result.Postings, 2)
		assert.Equal(t, accounting.AccountCodeCOGS, result.Postings[0].DebitAccountCode)
		assert.Equal(t, accounting.AccountCodeRevenue, result.Postings[1].CreditAccountCode)
		assert.Equal(t, 2, f.journal.Len())

		require.NotNil(t, recorded)
		assert.Equal(t, inventory.MovementTypeOut, recorded.Type)
		assert.True(t, recorded.UnitCost.Equal(decimal.NewFromInt(800)))
		assert.True(t, recorded.TotalAmount.Equal(decimal.NewFromInt(3200)))
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newServiceFixture(t)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(nil, shared.ErrNotFound)

		_, err := f.service.ApplyIssue(ctx, issueCmd())
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "UNKNOWN_PRODUCT", domainErr.Code)
	})

	t.Run("insufficient stock persists nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := positionWithStock(t, 3, 820)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(existing, nil)

		cmd := issueCmd()
		cmd.Quantity = decimal.NewFromInt(100)

		_, err := f.service.ApplyIssue(ctx, cmd)
		require.Error(t, err)

		var stockErr *inventory.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(3)))

		f.positionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.postingRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.journal.Len())
		assert.True(t, existing.QuantityOnHand.Equal(decimal.NewFromInt(3)))
	})

	t.Run("non-positive sale price is rejected before lookup", func(t *testing.T) {
		f := newServiceFixture(t)
		cmd := issueCmd()
		cmd.SalePrice = decimal.Zero

		_, err := f.service.ApplyIssue(ctx, cmd)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
		f.positionRepo.AssertNotCalled(t, "FindByProductCode", mock.Anything, mock.Anything)
	})
}

func TestRehydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("reloads the journal from the posting log", func(t *testing.T) {
		f := newServiceFixture(t)

		seed := accounting.NewJournal(accounting.MustDefaultCatalog())
		_, err := seed.PostPurchase("OIL", accounting.AccountCodeInventory, accounting.AccountCodePayables,
			decimal.NewFromInt(8000), "PO-001", "", time.Now())
		require.NoError(t, err)
		_, err = seed.PostSale("OIL", accounting.AccountCodeInventory, accounting.AccountCodeCOGS,
			accounting.AccountCodeRevenue, accounting.AccountCodeReceivables,
			decimal.NewFromInt(3200), decimal.NewFromInt(3600), "INV-001", "", time.Now())
		require.NoError(t, err)

		f.postingRepo.On("FindAll", ctx).Return(seed.Postings(), nil)

		require.NoError(t, f.service.Rehydrate(ctx))
		assert.Equal(t, 3, f.journal.Len())

		debits, credits := f.journal.TrialTotals()
		assert.True(t, debits.Equal(credits))
	})
}

func TestServiceReads(t *testing.T) {
	ctx := context.Background()

	t.Run("GetPosition maps unknown code", func(t *testing.T) {
		f := newServiceFixture(t)
		f.positionRepo.On("FindByProductCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := f.service.GetPosition(ctx, "NOPE")
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "UNKNOWN_PRODUCT", domainErr.Code)
	})

	t.Run("ListLots includes depleted lots", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := positionWithStock(t, 10, 800)
		_, err := existing.Issue(decimal.NewFromInt(10))
		require.NoError(t, err)
		f.positionRepo.On("FindByProductCode", ctx, "OIL").Return(existing, nil)

		lots, err := f.service.ListLots(ctx, "OIL")
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.True(t, lots[0].RemainingQuantity.IsZero())
		assert.True(t, lots[0].OriginalQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("ListMovements without filter reads the full log", func(t *testing.T) {
		f := newServiceFixture(t)
		f.movementRepo.On("FindAll", ctx).Return([]inventory.Movement{}, nil)

		movements, err := f.service.ListMovements(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, movements)
		f.movementRepo.AssertCalled(t, "FindAll", ctx)
	})

	t.Run("AccountBalances comes from journal replay", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.journal.PostPurchase("OIL", accounting.AccountCodeInventory, accounting.AccountCodePayables,
			decimal.NewFromInt(100), "PO-001", "", time.Now())
		require.NoError(t, err)

		balances := f.service.AccountBalances()
		require.Len(t, balances, 2)
	})
}
