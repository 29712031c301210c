package handler

import (
	"errors"
	"io"

	apptrade "github.com/comfort/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// PurchaseOrderHandler handles Purchase Order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *apptrade.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *apptrade.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// RegisterRoutes mounts the Purchase Order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.POST("/:id/submit", h.Submit)
	orders.POST("/:id/checkout", h.Checkout)
	orders.POST("/:id/receipts", h.AddReceipt)
	orders.POST("/:id/cancel", h.Cancel)
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req apptrade.PurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.PurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Submit handles POST /purchase-orders/:id/submit. The body is optional;
// without it the supplier is paid from the bank.
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.SubmitPurchaseOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.BadRequest(c, "Invalid request body")
			return
		}
	}

	order, err := h.orderService.Submit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Checkout handles POST /purchase-orders/:id/checkout
func (h *PurchaseOrderHandler) Checkout(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AddReceipt handles POST /purchase-orders/:id/receipts: the goods arrived from the supplier
func (h *PurchaseOrderHandler) AddReceipt(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	receipt, err := h.orderService.AddReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
