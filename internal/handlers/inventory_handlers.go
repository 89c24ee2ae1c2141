package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

func (h *InventoryHandler) CreateStockItem(c *gin.Context) {
	var req services.CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateStockItem")
		return
	}
	item, err := h.inventoryService.CreateStockItem(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create stock item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *InventoryHandler) GetStockItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.inventoryService.GetStockItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch stock item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) ListStockItems(c *gin.Context) {
	items, err := h.inventoryService.ListStockItems(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch stock items")
		return
	}
	if items == nil {
		items = []models.StockItem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// AdjustStock applies a signed delta; consumption below zero is rejected.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "AdjustStock")
		return
	}
	item, err := h.inventoryService.AdjustStock(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		respondServiceError(c, err, "adjust stock")
		return
	}
	c.JSON(http.StatusOK, item)
}

// Restock adds stock and books the matching expense.
func (h *InventoryHandler) Restock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Restock")
		return
	}
	result, err := h.inventoryService.Restock(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		respondServiceError(c, err, "restock item")
		return
	}
	c.JSON(http.StatusOK, result)
}
