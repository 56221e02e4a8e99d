package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stockbooks/backend/internal/application/valuation"
)

// AccountingHandler exposes the chart of accounts and the posting log over HTTP
type AccountingHandler struct {
	BaseHandler
	service *valuation.ValuationService
}

// NewAccountingHandler creates a new AccountingHandler
func NewAccountingHandler(service *valuation.ValuationService) *AccountingHandler {
	return &AccountingHandler{service: service}
}

// RegisterRoutes registers accounting routes
func (h *AccountingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounting := rg.Group("/accounting")
	{
		accounting.GET("/accounts", h.ListAccounts)
		accounting.GET("/postings", h.ListPostings)
		accounting.GET("/balances", h.ListBalances)
	}
}

// ListAccounts returns the chart of accounts
func (h *AccountingHandler) ListAccounts(c *gin.Context) {
	h.Success(c, h.service.Accounts())
}

// ListPostings returns the posting log, optionally filtered by product
func (h *AccountingHandler) ListPostings(c *gin.Context) {
	postings, err := h.service.ListPostings(c.Request.Context(), c.Query("product_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, postings)
}

// ListBalances replays the journal into per-account balances
func (h *AccountingHandler) ListBalances(c *gin.Context) {
	h.Success(c, h.service.AccountBalances())
}
