package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetStockMovements lists the stock movement log, newest first.
// Filters: stock_item_id, movement_type, page, page_size.
func (h *InventoryHandler) GetStockMovements(c *gin.Context) {
	stockItemID, ok := parseOptionalIDQuery(c, "stock_item_id")
	if !ok {
		return
	}
	var movementType *string
	if mt := c.Query("movement_type"); mt != "" {
		movementType = &mt
	}
	page, pageSize, ok := parsePaging(c, 20)
	if !ok {
		return
	}

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), stockItemID, movementType, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "fetch stock movements")
		return
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      movements,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
