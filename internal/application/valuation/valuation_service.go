package valuation

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/inventory"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// ValuationService orchestrates goods receipts and issues: it is the only
// writer of positions, movements and postings. Reads go straight to the
// repositories; writes run under a per-product lock and a transaction scope.
type ValuationService struct {
	positionRepo   inventory.ProductPositionRepository
	movementRepo   inventory.MovementRepository
	postingRepo    accounting.PostingRepository
	scope          TransactionScope
	journal        *accounting.Journal
	catalog        *accounting.Catalog
	locks          *productLocks
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewValuationService creates a ValuationService
func NewValuationService(
	positionRepo inventory.ProductPositionRepository,
	movementRepo inventory.MovementRepository,
	postingRepo accounting.PostingRepository,
	scope TransactionScope,
	journal *accounting.Journal,
	catalog *accounting.Catalog,
	logger *zap.Logger,
	lockTimeout time.Duration,
) *ValuationService {
	return &ValuationService{
		positionRepo: positionRepo,
		movementRepo: movementRepo,
		postingRepo:  postingRepo,
		scope:        scope,
		journal:      journal,
		catalog:      catalog,
		locks:        newProductLocks(lockTimeout),
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for domain events raised by the aggregates
func (s *ValuationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Rehydrate reloads the in-memory journal from the durable posting log.
// Called at startup, before the service accepts writes.
func (s *ValuationService) Rehydrate(ctx context.Context) error {
	postings, err := s.postingRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	s.journal.Load(postings)
	s.logger.Info("Journal rehydrated", zap.Int("postings", len(postings)))
	return nil
}

// ApplyReceipt records a goods receipt: it lazily creates the product
// position, appends a stock lot, posts the purchase (debit inventory, credit
// payables) and writes the IN movement. All persistence happens in one
// transaction scope.
func (s *ValuationService) ApplyReceipt(ctx context.Context, cmd ReceiptCommand) (*ReceiptResult, error) {
	if cmd.ProductCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if cmd.DocumentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document number cannot be empty")
	}

	release, err := s.locks.Acquire(ctx, cmd.ProductCode)
	if err != nil {
		return nil, err
	}
	defer release()

	receivedAt := cmd.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	position, err := s.positionRepo.FindByProductCode(ctx, cmd.ProductCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		inventoryAccount := cmd.InventoryAccountCode
		if inventoryAccount == "" {
			inventoryAccount = accounting.AccountCodeInventory
		}
		if !s.catalog.Contains(inventoryAccount) {
			return nil, accounting.NewUnknownAccountError(inventoryAccount)
		}
		position, err = inventory.NewProductPosition(
			cmd.ProductCode, cmd.ProductName, cmd.Unit, inventoryAccount)
		if err != nil {
			return nil, err
		}
	}

	lot, err := position.Receive(
		cmd.Quantity,
		cmd.UnitCost,
		inventory.SupplierRef{ID: cmd.SupplierID, Name: cmd.SupplierName},
		receivedAt,
	)
	if err != nil {
		return nil, err
	}

	totalAmount := cmd.Quantity.Mul(cmd.UnitCost)
	posting, err := s.journal.PostPurchase(
		cmd.ProductCode,
		position.InventoryAccountCode,
		accounting.AccountCodePayables,
		totalAmount,
		cmd.DocumentNumber,
		cmd.Description,
		receivedAt,
	)
	if err != nil {
		return nil, err
	}

	movement := inventory.NewMovement(
		inventory.MovementTypeIn,
		cmd.ProductCode,
		cmd.Quantity,
		cmd.UnitCost,
		totalAmount,
		inventory.DocumentTypePurchase,
		cmd.DocumentNumber,
		cmd.Description,
		receivedAt,
	)

	// Persistence failures leave the in-memory journal ahead of the durable
	// log; Rehydrate on restart resynchronizes the two.
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PositionRepo().Save(ctx, position); err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		return repos.PostingRepo().Create(ctx, posting)
	})
	if err != nil {
		s.logger.Error("Failed to persist receipt",
			zap.String("product_code", cmd.ProductCode),
			zap.String("document", cmd.DocumentNumber),
			zap.Error(err))
		return nil, err
	}

	s.publishDomainEvents(position)

	s.logger.Info("Goods receipt applied",
		zap.String("product_code", cmd.ProductCode),
		zap.String("document", cmd.DocumentNumber),
		zap.String("quantity", cmd.Quantity.String()),
		zap.String("unit_cost", cmd.UnitCost.String()))

	return &ReceiptResult{
		LotID:       lot.ID,
		TotalAmount: totalAmount,
		Position:    toPositionSnapshot(position),
		Posting:     toPostingSnapshot(posting),
	}, nil
}

// ApplyIssue records a goods issue for a sale: it consumes lots in receipt
// order, posts cost of goods sold and revenue under the same document and
// writes the OUT movement at the average cost of the issue.
func (s *ValuationService) ApplyIssue(ctx context.Context, cmd IssueCommand) (*IssueResult, error) {
	if cmd.ProductCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if cmd.DocumentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document number cannot be empty")
	}
	if cmd.SalePrice.LessThanOrEqual(decimal.Zero) {
		return nil, inventory.NewInvalidPriceError("Sale price must be positive")
	}

	release, err := s.locks.Acquire(ctx, cmd.ProductCode)
	if err != nil {
		return nil, err
	}
	defer release()

	issuedAt := cmd.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	position, err := s.positionRepo.FindByProductCode(ctx, cmd.ProductCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, inventory.NewUnknownProductError(cmd.ProductCode)
		}
		return nil, err
	}

	breakdown, err := position.Issue(cmd.Quantity)
	if err != nil {
		return nil, err
	}

	saleAmount := cmd.Quantity.Mul(cmd.SalePrice)
	postings, err := s.journal.PostSale(
		cmd.ProductCode,
		position.InventoryAccountCode,
		accounting.AccountCodeCOGS,
		accounting.AccountCodeRevenue,
		accounting.AccountCodeReceivables,
		breakdown.ConsumedCost,
		saleAmount,
		cmd.DocumentNumber,
		cmd.Description,
		issuedAt,
	)
	if err != nil {
		return nil, err
	}

	averageCost := breakdown.ConsumedCost.Div(cmd.Quantity).Round(4)
	movement := inventory.NewMovement(
		inventory.MovementTypeOut,
		cmd.ProductCode,
		cmd.Quantity,
		averageCost,
		breakdown.ConsumedCost,
		inventory.DocumentTypeSale,
		cmd.DocumentNumber,
		cmd.Description,
		issuedAt,
	)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PositionRepo().Save(ctx, position); err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		return repos.PostingRepo().CreateBatch(ctx, postings)
	})
	if err != nil {
		s.logger.Error("Failed to persist issue",
			zap.String("product_code", cmd.ProductCode),
			zap.String("document", cmd.DocumentNumber),
			zap.Error(err))
		return nil, err
	}

	s.publishDomainEvents(position)

	profit := saleAmount.Sub(breakdown.ConsumedCost)
	s.logger.Info("Goods issue applied",
		zap.String("product_code", cmd.ProductCode),
		zap.String("document", cmd.DocumentNumber),
		zap.String("quantity", cmd.Quantity.String()),
		zap.String("cost_of_goods_sold", breakdown.ConsumedCost.String()))

	consumed := make([]LotConsumption, 0, len(breakdown.ConsumedLots))
	for _, c := range breakdown.ConsumedLots {
		consumed = append(consumed, LotConsumption{
			LotID:         c.LotID,
			QuantityTaken: c.QuantityTaken,
			UnitCost:      c.UnitCost,
		})
	}

	results := make([]PostingSnapshot, 0, len(postings))
	for i := range postings {
		results = append(results, toPostingSnapshot(&postings[i]))
	}

	return &IssueResult{
		CostOfGoodsSold:   breakdown.ConsumedCost,
		SaleAmount:        saleAmount,
		Profit:            profit,
		RemainingQuantity: breakdown.RemainingQuantity,
		ConsumedLots:      consumed,
		Position:          toPositionSnapshot(position),
		Postings:          results,
	}, nil
}

// GetPosition returns the current position for a product code
func (s *ValuationService) GetPosition(ctx context.Context, productCode string) (*PositionSnapshot, error) {
	position, err := s.positionRepo.FindByProductCode(ctx, productCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, inventory.NewUnknownProductError(productCode)
		}
		return nil, err
	}
	snapshot := toPositionSnapshot(position)
	return &snapshot, nil
}

// ListPositions returns all positions ordered by product name
func (s *ValuationService) ListPositions(ctx context.Context) ([]PositionSnapshot, error) {
	positions, err := s.positionRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]PositionSnapshot, 0, len(positions))
	for i := range positions {
		snapshots = append(snapshots, toPositionSnapshot(&positions[i]))
	}
	return snapshots, nil
}

// ListLots returns all lots of a product, depleted ones included, in receipt order
func (s *ValuationService) ListLots(ctx context.Context, productCode string) ([]LotSnapshot, error) {
	position, err := s.positionRepo.FindByProductCode(ctx, productCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, inventory.NewUnknownProductError(productCode)
		}
		return nil, err
	}
	lots := make([]LotSnapshot, 0, len(position.Lots))
	for i := range position.Lots {
		lots = append(lots, toLotSnapshot(&position.Lots[i]))
	}
	return lots, nil
}

// ListMovements returns the movement log, optionally filtered by product code
func (s *ValuationService) ListMovements(ctx context.Context, productCode string) ([]MovementSnapshot, error) {
	var (
		movements []inventory.Movement
		err       error
	)
	if productCode == "" {
		movements, err = s.movementRepo.FindAll(ctx)
	} else {
		movements, err = s.movementRepo.FindByProductCode(ctx, productCode)
	}
	if err != nil {
		return nil, err
	}
	snapshots := make([]MovementSnapshot, 0, len(movements))
	for i := range movements {
		snapshots = append(snapshots, toMovementSnapshot(&movements[i]))
	}
	return snapshots, nil
}

// ListPostings returns the posting log, optionally filtered by product code
func (s *ValuationService) ListPostings(ctx context.Context, productCode string) ([]PostingSnapshot, error) {
	var (
		postings []accounting.Posting
		err      error
	)
	if productCode == "" {
		postings, err = s.postingRepo.FindAll(ctx)
	} else {
		postings, err = s.postingRepo.FindByProduct(ctx, productCode)
	}
	if err != nil {
		return nil, err
	}
	snapshots := make([]PostingSnapshot, 0, len(postings))
	for i := range postings {
		snapshots = append(snapshots, toPostingSnapshot(&postings[i]))
	}
	return snapshots, nil
}

// Accounts returns the chart of accounts ordered by code
func (s *ValuationService) Accounts() []accounting.Account {
	return s.catalog.Accounts()
}

// AccountBalances replays the journal into per-account balances
func (s *ValuationService) AccountBalances() []accounting.AccountBalance {
	return s.journal.AccountBalances()
}

func (s *ValuationService) publishDomainEvents(position *inventory.ProductPosition) {
	events := position.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(events...); err != nil {
			s.logger.Warn("Failed to publish domain events",
				zap.String("product_code", position.ProductCode),
				zap.Error(err))
		}
	}
	position.ClearDomainEvents()
}
