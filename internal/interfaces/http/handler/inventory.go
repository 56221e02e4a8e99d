package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/stockbooks/backend/internal/application/valuation"
)

// ReceiptRequest is the payload for recording a goods receipt
type ReceiptRequest struct {
	ProductCode      string  `json:"product_code" binding:"required"`
	ProductName      string  `json:"product_name"`
	Unit             string  `json:"unit"`
	InventoryAccount string  `json:"inventory_account" binding:"omitempty,accountcode"`
	Quantity         float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost         float64 `json:"unit_cost" binding:"required,gt=0"`
	SupplierID       string  `json:"supplier_id"`
	SupplierName     string  `json:"supplier_name"`
	DocumentNumber   string  `json:"document_number" binding:"required"`
	Description      string  `json:"description"`
	ReceivedAt       string  `json:"received_at"`
}

// IssueRequest is the payload for recording a goods issue
type IssueRequest struct {
	ProductCode    string  `json:"product_code" binding:"required"`
	Quantity       float64 `json:"quantity" binding:"required,gt=0"`
	SalePrice      float64 `json:"sale_price" binding:"required,gt=0"`
	DocumentNumber string  `json:"document_number" binding:"required"`
	Description    string  `json:"description"`
	IssuedAt       string  `json:"issued_at"`
}

// InventoryHandler exposes inventory valuation operations over HTTP
type InventoryHandler struct {
	BaseHandler
	service *valuation.ValuationService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *valuation.ValuationService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.POST("/receipts", h.CreateReceipt)
		inventory.POST("/issues", h.CreateIssue)
		inventory.GET("/positions", h.ListPositions)
		inventory.GET("/positions/:code", h.GetPosition)
		inventory.GET("/positions/:code/lots", h.ListLots)
		inventory.GET("/movements", h.ListMovements)
	}
}

// CreateReceipt records a goods receipt
func (h *InventoryHandler) CreateReceipt(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := valuation.ReceiptCommand{
		ProductCode:          req.ProductCode,
		ProductName:          req.ProductName,
		Unit:                 req.Unit,
		InventoryAccountCode: req.InventoryAccount,
		Quantity:             decimal.NewFromFloat(req.Quantity),
		UnitCost:             decimal.NewFromFloat(req.UnitCost),
		SupplierID:           req.SupplierID,
		SupplierName:         req.SupplierName,
		DocumentNumber:       req.DocumentNumber,
		Description:          req.Description,
	}

	if req.ReceivedAt != "" {
		receivedAt, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			h.BadRequest(c, "Invalid received_at, expected RFC 3339")
			return
		}
		cmd.ReceivedAt = receivedAt
	}

	result, err := h.service.ApplyReceipt(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// CreateIssue records a goods issue
func (h *InventoryHandler) CreateIssue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := valuation.IssueCommand{
		ProductCode:    req.ProductCode,
		Quantity:       decimal.NewFromFloat(req.Quantity),
		SalePrice:      decimal.NewFromFloat(req.SalePrice),
		DocumentNumber: req.DocumentNumber,
		Description:    req.Description,
	}

	if req.IssuedAt != "" {
		issuedAt, err := time.Parse(time.RFC3339, req.IssuedAt)
		if err != nil {
			h.BadRequest(c, "Invalid issued_at, expected RFC 3339")
			return
		}
		cmd.IssuedAt = issuedAt
	}

	result, err := h.service.ApplyIssue(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListPositions returns all product positions
func (h *InventoryHandler) ListPositions(c *gin.Context) {
	positions, err := h.service.ListPositions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, positions)
}

// GetPosition returns the position for one product
func (h *InventoryHandler) GetPosition(c *gin.Context) {
	position, err := h.service.GetPosition(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position)
}

// ListLots returns all lots of a product, depleted ones included
func (h *InventoryHandler) ListLots(c *gin.Context) {
	lots, err := h.service.ListLots(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// ListMovements returns the movement log, optionally filtered by product
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	movements, err := h.service.ListMovements(c.Request.Context(), c.Query("product_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}
