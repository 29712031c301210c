package handler

import (
	appcatalog "github.com/comfort/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler maintains catalog items and the commission table
type CatalogHandler struct {
	BaseHandler
	itemService       *appcatalog.ItemService
	commissionService *appcatalog.CommissionService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(itemService *appcatalog.ItemService, commissionService *appcatalog.CommissionService) *CatalogHandler {
	return &CatalogHandler{itemService: itemService, commissionService: commissionService}
}

// RegisterRoutes mounts the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/items", h.SaveItem)
	rg.GET("/items/:code", h.GetItem)
	rg.GET("/commission", h.GetCommission)
	rg.PUT("/commission", h.SaveCommission)
}

// SaveItem handles PUT /items: create or replace by code
func (h *CatalogHandler) SaveItem(c *gin.Context) {
	var req appcatalog.SaveItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.itemService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// GetItem handles GET /items/:code
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.itemService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// GetCommission handles GET /commission
func (h *CatalogHandler) GetCommission(c *gin.Context) {
	table, err := h.commissionService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}

// SaveCommission handles PUT /commission
func (h *CatalogHandler) SaveCommission(c *gin.Context) {
	var req appcatalog.SaveCommissionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	table, err := h.commissionService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}
