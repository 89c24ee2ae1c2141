package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// TableHandler holds the table service.
type TableHandler struct {
	tableService services.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req services.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateTable")
		return
	}
	table, err := h.tableService.CreateTable(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create table")
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) GetTable(c *gin.Context) {
	table, err := h.tableService.GetTable(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, err, "fetch table")
		return
	}
	c.JSON(http.StatusOK, table)
}

// ListTables lists tables, optionally for one floor (?floor=).
func (h *TableHandler) ListTables(c *gin.Context) {
	var floor *string
	if f := c.Query("floor"); f != "" {
		floor = &f
	}
	tables, err := h.tableService.ListTables(c.Request.Context(), floor)
	if err != nil {
		respondServiceError(c, err, "fetch tables")
		return
	}
	if tables == nil {
		tables = []models.Table{}
	}
	c.JSON(http.StatusOK, gin.H{"data": tables})
}
