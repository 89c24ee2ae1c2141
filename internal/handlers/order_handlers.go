package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder handles the creation of a new order with its items
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateOrder")
		return
	}
	// Servers creating their own orders need not send server_id.
	if req.ServerID == 0 {
		if uid := currentUserID(c); uid != nil {
			req.ServerID = *uid
		}
	}

	createdOrder, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create order")
		return
	}
	c.JSON(http.StatusCreated, createdOrder)
}

// GetOrders handles fetching all orders with filters
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters

	serverID, ok := parseOptionalIDQuery(c, "server_id")
	if !ok {
		return
	}
	filters.ServerID = serverID
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if table := c.Query("table"); table != "" {
		filters.TableName = &table
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}
	page, pageSize, ok := parsePaging(c, 10)
	if !ok {
		return
	}
	filters.Page, filters.PageSize = page, pageSize

	orders, totalCount, err := h.orderService.ListOrders(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "fetch orders")
		return
	}
	if orders == nil { // Ensure we return an empty list instead of null if no orders found
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetOrderByID handles fetching a single order with its items and units
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder replaces the table, server, party size and items of an open order
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateOrder")
		return
	}
	updatedOrder, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "update order")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// UpdateOrderStatus handles updating the status of an order
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateOrderStatus")
		return
	}
	updatedOrder, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, updatedOrder)
}

// SettleOrder closes an order at the amount the caller charged
func (h *OrderHandler) SettleOrder(c *gin.Context) {
	var req services.SettleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "SettleOrder")
		return
	}
	settled, err := h.orderService.SettleOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "settle order")
		return
	}
	c.JSON(http.StatusOK, settled)
}

// GetPartialCost previews what settling the order now would charge
func (h *OrderHandler) GetPartialCost(c *gin.Context) {
	cost, err := h.orderService.PreviewPartialCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "compute partial cost")
		return
	}
	c.JSON(http.StatusOK, cost)
}

// SetUnitStatus moves one preparation unit instance of an order item
func (h *OrderHandler) SetUnitStatus(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	unitID, ok := parseIDParam(c, "unitId")
	if !ok {
		return
	}
	var req services.UnitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "SetUnitStatus")
		return
	}

	unit, err := h.orderService.SetPreparationUnitStatus(c.Request.Context(), c.Param("id"), itemID, unitID, req)
	if err != nil {
		respondServiceError(c, err, "set preparation unit status")
		return
	}
	c.JSON(http.StatusOK, unit)
}

// GetKitchenQueue lists open orders with their preparation progress, oldest first
func (h *OrderHandler) GetKitchenQueue(c *gin.Context) {
	tickets, err := h.orderService.KitchenQueue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch kitchen queue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tickets})
}

// DeleteOrder handles deleting an order
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")
	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondServiceError(c, err, "delete order")
		return
	}
	utils.LogInfo("Order deleted via API", map[string]interface{}{"order_id": orderID})
	c.Status(http.StatusNoContent)
}
