package handler

import (
	"time"

	appfinance "github.com/comfort/backend/internal/application/finance"
	appinventory "github.com/comfort/backend/internal/application/inventory"
	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
)

// BalanceQuery bounds a balance query by posting date (YYYY-MM-DD, inclusive)
type BalanceQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (q BalanceQuery) filter() finance.BalanceFilter {
	var f finance.BalanceFilter
	if q.From != "" {
		f.From, _ = time.Parse(time.DateOnly, q.From)
	}
	if q.To != "" {
		to, _ := time.Parse(time.DateOnly, q.To)
		f.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	return f
}

// AccountBalanceResponse is the balance of one account
type AccountBalanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

// TrialBalanceResponse is total debit minus total credit; zero when the ledger is consistent
type TrialBalanceResponse struct {
	Total    int64 `json:"total"`
	Balanced bool  `json:"balanced"`
}

// StockLineResponse is the quantity of one item in a bucket
type StockLineResponse struct {
	ItemCode string `json:"item_code"`
	Qty      int64  `json:"qty"`
}

// StockBalanceResponse is the content of one stock bucket
type StockBalanceResponse struct {
	StockType string              `json:"stock_type"`
	Items     []StockLineResponse `json:"items"`
}

// FinanceHandler serves ledger and stock balance queries
type FinanceHandler struct {
	BaseHandler
	ledger *appfinance.Ledger
	stock  *appinventory.Stock
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(ledger *appfinance.Ledger, stock *appinventory.Stock) *FinanceHandler {
	return &FinanceHandler{ledger: ledger, stock: stock}
}

// RegisterRoutes mounts the balance routes
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fin := rg.Group("/finance")
	fin.GET("/trial-balance", h.TrialBalance)
	fin.GET("/accounts", h.AccountTree)
	fin.GET("/accounts/:name/balance", h.AccountBalance)

	rg.GET("/stock", h.StockBalances)
	rg.GET("/stock/:type", h.StockBalance)
}

// TrialBalance handles GET /finance/trial-balance
func (h *FinanceHandler) TrialBalance(c *gin.Context) {
	total, err := h.ledger.TrialBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TrialBalanceResponse{Total: total, Balanced: total == 0})
}

// AccountTree handles GET /finance/accounts: the chart with rolled-up balances
func (h *FinanceHandler) AccountTree(c *gin.Context) {
	var q BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
		return
	}

	tree, err := h.ledger.AccountTree(c.Request.Context(), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// AccountBalance handles GET /finance/accounts/:name/balance
func (h *FinanceHandler) AccountBalance(c *gin.Context) {
	var q BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
		return
	}
	name := c.Param("name")

	balance, err := h.ledger.AccountBalance(c.Request.Context(), name, q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AccountBalanceResponse{Account: name, Balance: balance})
}

// StockBalances handles GET /stock: every bucket
func (h *FinanceHandler) StockBalances(c *gin.Context) {
	out := make([]StockBalanceResponse, 0, len(inventory.AllStockTypes))
	for _, t := range inventory.AllStockTypes {
		resp, err := h.stockBalance(c, t)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		out = append(out, resp)
	}
	h.Success(c, out)
}

// StockBalance handles GET /stock/:type, e.g. /stock/Available%20Actual
func (h *FinanceHandler) StockBalance(c *gin.Context) {
	stockType, err := inventory.ParseStockType(c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.stockBalance(c, stockType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *FinanceHandler) stockBalance(c *gin.Context, stockType inventory.StockType) (StockBalanceResponse, error) {
	items, err := h.stock.Balance(c.Request.Context(), stockType)
	if err != nil {
		return StockBalanceResponse{}, err
	}
	lines := make([]StockLineResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, StockLineResponse{ItemCode: it.ItemCode, Qty: it.Qty})
	}
	return StockBalanceResponse{StockType: stockType.String(), Items: lines}, nil
}
