package handler

import (
	"net/http"

	apptrade "github.com/comfort/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateSalesReturnRequest names the Sales Order a return is drafted against
type CreateSalesReturnRequest struct {
	SalesOrderID uuid.UUID `json:"sales_order_id" binding:"required"`
}

// CreatePurchaseReturnRequest names the Purchase Order a return is drafted against
type CreatePurchaseReturnRequest struct {
	PurchaseOrderID uuid.UUID `json:"purchase_order_id" binding:"required"`
}

// SalesReturnHandler handles Sales Return endpoints
type SalesReturnHandler struct {
	BaseHandler
	returnService *apptrade.SalesReturnService
}

// NewSalesReturnHandler creates a new SalesReturnHandler
func NewSalesReturnHandler(returnService *apptrade.SalesReturnService) *SalesReturnHandler {
	return &SalesReturnHandler{returnService: returnService}
}

// RegisterRoutes mounts the Sales Return routes
func (h *SalesReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/sales-returns")
	returns.POST("", h.Create)
	returns.GET("/:id", h.GetByID)
	returns.GET("/:id/available-items", h.ItemsAvailableToAdd)
	returns.POST("/:id/items", h.AddItems)
	returns.POST("/:id/submit", h.Submit)
	returns.POST("/:id/cancel", h.Cancel)
}

// Create handles POST /sales-returns
func (h *SalesReturnHandler) Create(c *gin.Context) {
	var req CreateSalesReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.returnService.Create(c.Request.Context(), req.SalesOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// GetByID handles GET /sales-returns/:id
func (h *SalesReturnHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// ItemsAvailableToAdd handles GET /sales-returns/:id/available-items
func (h *SalesReturnHandler) ItemsAvailableToAdd(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.returnService.ItemsAvailableToAdd(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddItems handles POST /sales-returns/:id/items
func (h *SalesReturnHandler) AddItems(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.ReturnItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.returnService.AddItems(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Submit handles POST /sales-returns/:id/submit
func (h *SalesReturnHandler) Submit(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Cancel handles POST /sales-returns/:id/cancel. Sales Returns cannot be
// cancelled, so a well-formed request always ends in a validation error.
func (h *SalesReturnHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.returnService.Cancel(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PurchaseReturnHandler handles Purchase Return endpoints
type PurchaseReturnHandler struct {
	BaseHandler
	returnService *apptrade.PurchaseReturnService
}

// NewPurchaseReturnHandler creates a new PurchaseReturnHandler
func NewPurchaseReturnHandler(returnService *apptrade.PurchaseReturnService) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{returnService: returnService}
}

// RegisterRoutes mounts the Purchase Return routes
func (h *PurchaseReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/purchase-returns")
	returns.POST("", h.Create)
	returns.GET("/:id", h.GetByID)
	returns.GET("/:id/available-items", h.ItemsAvailableToAdd)
	returns.POST("/:id/items", h.AddItems)
	returns.POST("/:id/submit", h.Submit)
	returns.POST("/:id/cancel", h.Cancel)
}

// Create handles POST /purchase-returns
func (h *PurchaseReturnHandler) Create(c *gin.Context) {
	var req CreatePurchaseReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.returnService.Create(c.Request.Context(), req.PurchaseOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// GetByID handles GET /purchase-returns/:id
func (h *PurchaseReturnHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// ItemsAvailableToAdd handles GET /purchase-returns/:id/available-items
func (h *PurchaseReturnHandler) ItemsAvailableToAdd(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.returnService.ItemsAvailableToAdd(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddItems handles POST /purchase-returns/:id/items
func (h *PurchaseReturnHandler) AddItems(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.ReturnItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.returnService.AddItems(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Submit handles POST /purchase-returns/:id/submit
func (h *PurchaseReturnHandler) Submit(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Cancel handles POST /purchase-returns/:id/cancel
func (h *PurchaseReturnHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
