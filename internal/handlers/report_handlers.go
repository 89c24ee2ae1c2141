package handlers

import (
	"net/http"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const DefaultReportDateLayout = "2006-01-02"

// ReportHandler serves the financial ledger and stock reports.
type ReportHandler struct {
	financeService   services.FinanceService
	inventoryService services.InventoryService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(fs services.FinanceService, is services.InventoryService) *ReportHandler {
	return &ReportHandler{financeService: fs, inventoryService: is}
}

// parseReportRange reads start_date and end_date (YYYY-MM-DD, both inclusive)
// into a half-open [from, to) range.
func parseReportRange(c *gin.Context) (from, to *time.Time, ok bool) {
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(DefaultReportDateLayout, v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid start_date format. Use YYYY-MM-DD.", err.Error()))
			return nil, nil, false
		}
		from = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(DefaultReportDateLayout, v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid end_date format. Use YYYY-MM-DD.", err.Error()))
			return nil, nil, false
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, true
}

// GetFinancialRecords lists ledger records. Filters: category, start_date, end_date, page, page_size.
func (h *ReportHandler) GetFinancialRecords(c *gin.Context) {
	var filters models.FinanceFilters
	from, to, ok := parseReportRange(c)
	if !ok {
		return
	}
	filters.From, filters.To = from, to
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	page, pageSize, ok := parsePaging(c, 50)
	if !ok {
		return
	}
	filters.Page, filters.PageSize = page, pageSize

	records, total, err := h.financeService.ListRecords(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "fetch financial records")
		return
	}
	if records == nil {
		records = []models.FinancialRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// DeleteFinancialRecord removes a ledger record. Admin only.
func (h *ReportHandler) DeleteFinancialRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.financeService.DeleteRecord(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete financial record")
		return
	}
	utils.LogInfo("Financial record deleted", map[string]interface{}{"record_id": utils.Int64ToStr(id)})
	c.Status(http.StatusNoContent)
}

// GetFinanceSummary totals revenue and expense for a date range.
func (h *ReportHandler) GetFinanceSummary(c *gin.Context) {
	from, to, ok := parseReportRange(c)
	if !ok {
		return
	}
	summary, err := h.financeService.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err, "summarize finances")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetLowStockReport lists stock items at or below their reorder threshold.
func (h *ReportHandler) GetLowStockReport(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch low stock report")
		return
	}
	if items == nil {
		items = []models.StockItem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
