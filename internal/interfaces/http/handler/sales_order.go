package handler

import (
	apptrade "github.com/comfort/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SalesOrderHandler handles Sales Order endpoints
type SalesOrderHandler struct {
	BaseHandler
	orderService *apptrade.SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orderService *apptrade.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orderService: orderService}
}

// RegisterRoutes mounts the Sales Order routes
func (h *SalesOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/sales-orders")
	orders.POST("", h.Create)
	orders.POST("/calculate", h.Calculate)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.POST("/:id/submit", h.Submit)
	orders.POST("/:id/cancel", h.Cancel)
	orders.POST("/:id/payments", h.AddPayment)
	orders.POST("/:id/receipts", h.AddReceipt)
	orders.POST("/:id/split-combinations", h.SplitCombinations)
}

// Create handles POST /sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req apptrade.SalesOrderRequest
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

// Calculate handles POST /sales-orders/calculate: it prices an unsaved order
// and returns its commission and margin
func (h *SalesOrderHandler) Calculate(c *gin.Context) {
	var req apptrade.SalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CalculateCommissionAndMargin(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByID handles GET /sales-orders/:id
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
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

// Update handles PUT /sales-orders/:id
func (h *SalesOrderHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.SalesOrderRequest
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

// Submit handles POST /sales-orders/:id/submit
func (h *SalesOrderHandler) Submit(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /sales-orders/:id/cancel
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
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

// AddPayment handles POST /sales-orders/:id/payments
func (h *SalesOrderHandler) AddPayment(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.AddPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.orderService.AddPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// AddReceipt handles POST /sales-orders/:id/receipts: the goods were handed to the customer
func (h *SalesOrderHandler) AddReceipt(c *gin.Context) {
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

// SplitCombinations handles POST /sales-orders/:id/split-combinations
func (h *SalesOrderHandler) SplitCombinations(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req apptrade.SplitCombinationsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.SplitCombinations(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
