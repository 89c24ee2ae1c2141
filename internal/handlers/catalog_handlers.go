package handlers

import (
	"net/http"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves dishes, preparation units and menu availability.
type CatalogHandler struct {
	catalogService      services.CatalogService
	availabilityService services.AvailabilityService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService, as services.AvailabilityService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs, availabilityService: as}
}

// --- Preparation units ---

func (h *CatalogHandler) CreatePreparationUnit(c *gin.Context) {
	var req services.PreparationUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreatePreparationUnit")
		return
	}
	def, err := h.catalogService.CreatePreparationUnit(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create preparation unit")
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (h *CatalogHandler) UpdatePreparationUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.PreparationUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdatePreparationUnit")
		return
	}
	def, err := h.catalogService.UpdatePreparationUnit(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update preparation unit")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *CatalogHandler) GetPreparationUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	def, err := h.catalogService.GetPreparationUnit(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch preparation unit")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *CatalogHandler) ListPreparationUnits(c *gin.Context) {
	defs, err := h.catalogService.ListPreparationUnits(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch preparation units")
		return
	}
	if defs == nil {
		defs = []models.PreparationUnitDefinition{}
	}
	c.JSON(http.StatusOK, gin.H{"data": defs})
}

// --- Dishes ---

func (h *CatalogHandler) CreateDish(c *gin.Context) {
	var req services.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateDish")
		return
	}
	dish, err := h.catalogService.CreateDish(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create dish")
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (h *CatalogHandler) UpdateDish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateDish")
		return
	}
	dish, err := h.catalogService.UpdateDish(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update dish")
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *CatalogHandler) GetDish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	dish, err := h.catalogService.GetDish(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch dish")
		return
	}
	c.JSON(http.StatusOK, dish)
}

// ListDishes lists the menu. ?visibility=public hides internal dishes.
func (h *CatalogHandler) ListDishes(c *gin.Context) {
	dishes, err := h.catalogService.ListDishes(c.Request.Context(), c.Query("visibility") == models.VisibilityPublic)
	if err != nil {
		respondServiceError(c, err, "fetch dishes")
		return
	}
	if dishes == nil {
		dishes = []models.DishDefinition{}
	}
	c.JSON(http.StatusOK, gin.H{"data": dishes})
}

// --- Availability ---

func (h *CatalogHandler) GetDishAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	available, err := h.availabilityService.IsDishAvailable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "compute dish availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dish_id": id, "available": available})
}

func (h *CatalogHandler) GetMenuAvailability(c *gin.Context) {
	menu, err := h.availabilityService.ListMenuAvailability(c.Request.Context(), c.Query("visibility") == models.VisibilityPublic)
	if err != nil {
		respondServiceError(c, err, "compute menu availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": menu})
}
