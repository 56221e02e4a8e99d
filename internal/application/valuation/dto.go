package valuation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/inventory"
)

// ReceiptCommand describes one goods receipt. The first receipt of a product
// fixes its name, unit and inventory account; later receipts may leave those
// fields empty. An empty InventoryAccountCode falls back to the default
// inventory account.
type ReceiptCommand struct {
	ProductCode          string
	ProductName          string
	Unit                 string
	InventoryAccountCode string
	Quantity             decimal.Decimal
	UnitCost             decimal.Decimal
	SupplierID           string
	SupplierName         string
	DocumentNumber       string
	Description          string
	ReceivedAt           time.Time
}

// IssueCommand describes one goods issue against a sale document
type IssueCommand struct {
	ProductCode    string
	Quantity       decimal.Decimal
	SalePrice      decimal.Decimal
	DocumentNumber string
	Description    string
	IssuedAt       time.Time
}

// LotSnapshot is the read model of one stock lot
type LotSnapshot struct {
	LotID             uuid.UUID       `json:"lot_id"`
	ReceivedAt        time.Time       `json:"received_at"`
	OriginalQuantity  decimal.Decimal `json:"original_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	SupplierName      string          `json:"supplier_name,omitempty"`
}

// PositionSnapshot is the read model of one product position
type PositionSnapshot struct {
	PositionID          uuid.UUID       `json:"position_id"`
	ProductCode         string          `json:"product_code"`
	ProductName         string          `json:"product_name"`
	Unit                string          `json:"unit"`
	QuantityOnHand      decimal.Decimal `json:"quantity_on_hand"`
	TotalValue          decimal.Decimal `json:"total_value"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	ActiveLots          []LotSnapshot   `json:"active_lots"`
}

// PostingSnapshot is the read model of one journal posting
type PostingSnapshot struct {
	PostingID            uuid.UUID       `json:"posting_id"`
	Date                 time.Time       `json:"date"`
	DebitAccountCode     string          `json:"debit_account"`
	CreditAccountCode    string          `json:"credit_account"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	SourceDocumentType   string          `json:"source_document_type"`
	SourceDocumentNumber string          `json:"source_document_number"`
	ProductCode          string          `json:"product_code"`
}

// MovementSnapshot is the read model of one stock movement
type MovementSnapshot struct {
	MovementID     uuid.UUID       `json:"movement_id"`
	Type           string          `json:"type"`
	ProductCode    string          `json:"product_code"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DocumentType   string          `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	Description    string          `json:"description,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// ReceiptResult reports the outcome of ApplyReceipt
type ReceiptResult struct {
	LotID       uuid.UUID        `json:"lot_id"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Position    PositionSnapshot `json:"position"`
	Posting     PostingSnapshot  `json:"posting"`
}

// IssueResult reports the outcome of ApplyIssue
type IssueResult struct {
	CostOfGoodsSold   decimal.Decimal   `json:"cost_of_goods_sold"`
	SaleAmount        decimal.Decimal   `json:"sale_amount"`
	Profit            decimal.Decimal   `json:"profit"`
	RemainingQuantity decimal.Decimal   `json:"remaining_quantity"`
	ConsumedLots      []LotConsumption  `json:"consumed_lots"`
	Position          PositionSnapshot  `json:"position"`
	Postings          []PostingSnapshot `json:"postings"`
}

// LotConsumption mirrors inventory.LotConsumption for the read side
type LotConsumption struct {
	LotID         uuid.UUID       `json:"lot_id"`
	QuantityTaken decimal.Decimal `json:"quantity_taken"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

func toLotSnapshot(lot *inventory.StockLot) LotSnapshot {
	return LotSnapshot{
		LotID:             lot.ID,
		ReceivedAt:        lot.ReceivedAt,
		OriginalQuantity:  lot.OriginalQuantity,
		RemainingQuantity: lot.RemainingQuantity,
		UnitCost:          lot.UnitCost,
		SupplierID:        lot.SupplierRef.ID,
		SupplierName:      lot.SupplierRef.Name,
	}
}

func toPositionSnapshot(position *inventory.ProductPosition) PositionSnapshot {
	active := position.ActiveLots()
	lots := make([]LotSnapshot, 0, len(active))
	for i := range active {
		lots = append(lots, toLotSnapshot(&active[i]))
	}
	return PositionSnapshot{
		PositionID:          position.ID,
		ProductCode:         position.ProductCode,
		ProductName:         position.ProductName,
		Unit:                position.Unit,
		QuantityOnHand:      position.QuantityOnHand,
		TotalValue:          position.TotalValue,
		WeightedAverageCost: position.WeightedAverageCost,
		ActiveLots:          lots,
	}
}

func toPostingSnapshot(posting *accounting.Posting) PostingSnapshot {
	return PostingSnapshot{
		PostingID:            posting.ID,
		Date:                 posting.Date,
		DebitAccountCode:     posting.DebitAccountCode,
		CreditAccountCode:    posting.CreditAccountCode,
		Amount:               posting.Amount,
		Description:          posting.Description,
		SourceDocumentType:   string(posting.SourceDocumentType),
		SourceDocumentNumber: posting.SourceDocumentNumber,
		ProductCode:          posting.ProductCode,
	}
}

func toMovementSnapshot(movement *inventory.Movement) MovementSnapshot {
	return MovementSnapshot{
		MovementID:     movement.ID,
		Type:           movement.Type.String(),
		ProductCode:    movement.ProductCode,
		Quantity:       movement.Quantity,
		UnitCost:       movement.UnitCost,
		TotalAmount:    movement.TotalAmount,
		DocumentType:   string(movement.DocumentType),
		DocumentNumber: movement.DocumentNumber,
		Description:    movement.Description,
		OccurredAt:     movement.OccurredAt,
	}
}
