package router

import (
	"restaurant_ops_backend/internal/handlers"
	"restaurant_ops_backend/internal/middleware"
	"restaurant_ops_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	adminOnly    = middleware.RoleAuthMiddleware(models.RoleAdmin)
	floorStaff   = middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleServer)
	kitchenStaff = middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCook)
	anyStaff     = middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleServer, models.RoleCook)
)

// SetupUserRoutes sets up staff account management.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(adminOnly)
	{
		userRoutes.POST("", authHandler.CreateUser)
	}
}

// SetupOrderRoutes sets up the order routes. Unit status is open to cooks;
// everything else belongs to the floor.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", floorStaff, orderHandler.CreateOrder)
		orderRoutes.GET("", floorStaff, orderHandler.GetOrders)
		orderRoutes.GET("/:id", anyStaff, orderHandler.GetOrderByID)
		orderRoutes.PUT("/:id", floorStaff, orderHandler.UpdateOrder)
		orderRoutes.PATCH("/:id/status", floorStaff, orderHandler.UpdateOrderStatus)
		orderRoutes.POST("/:id/settle", floorStaff, orderHandler.SettleOrder)
		orderRoutes.GET("/:id/partial-cost", floorStaff, orderHandler.GetPartialCost)
		orderRoutes.DELETE("/:id", adminOnly, orderHandler.DeleteOrder)
		orderRoutes.PATCH("/:id/items/:itemId/units/:unitId", kitchenStaff, orderHandler.SetUnitStatus)
	}
}

// SetupKitchenRoutes sets up the kitchen display routes.
func SetupKitchenRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	kitchenRoutes := authenticatedGroup.Group("/kitchen")
	kitchenRoutes.Use(kitchenStaff)
	{
		kitchenRoutes.GET("/queue", orderHandler.GetKitchenQueue)
	}
}

// SetupDishRoutes sets up the menu routes. Reads are open to all staff.
func SetupDishRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	dishRoutes := authenticatedGroup.Group("/dishes")
	{
		dishRoutes.GET("", anyStaff, catalogHandler.ListDishes)
		dishRoutes.POST("", adminOnly, catalogHandler.CreateDish)
		dishRoutes.GET("/:id", anyStaff, catalogHandler.GetDish)
		dishRoutes.PUT("/:id", adminOnly, catalogHandler.UpdateDish)
		dishRoutes.GET("/:id/availability", anyStaff, catalogHandler.GetDishAvailability)
	}
	authenticatedGroup.GET("/menu/availability", anyStaff, catalogHandler.GetMenuAvailability)
}

// SetupPreparationUnitRoutes sets up the preparation unit definition routes.
func SetupPreparationUnitRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	unitRoutes := authenticatedGroup.Group("/preparation-units")
	{
		unitRoutes.GET("", anyStaff, catalogHandler.ListPreparationUnits)
		unitRoutes.POST("", adminOnly, catalogHandler.CreatePreparationUnit)
		unitRoutes.GET("/:id", anyStaff, catalogHandler.GetPreparationUnit)
		unitRoutes.PUT("/:id", adminOnly, catalogHandler.UpdatePreparationUnit)
	}
}

// SetupInventoryRoutes sets up the stock item and stock movement routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	stockRoutes := authenticatedGroup.Group("/stock-items")
	stockRoutes.Use(adminOnly)
	{
		stockRoutes.GET("", inventoryHandler.ListStockItems)
		stockRoutes.POST("", inventoryHandler.CreateStockItem)
		stockRoutes.GET("/:id", inventoryHandler.GetStockItem)
		stockRoutes.POST("/:id/adjust", inventoryHandler.AdjustStock)
		stockRoutes.POST("/:id/restock", inventoryHandler.Restock)
	}

	movementRoutes := authenticatedGroup.Group("/stock-movements")
	movementRoutes.Use(adminOnly)
	{
		movementRoutes.GET("", inventoryHandler.GetStockMovements)
	}
}

// SetupTableRoutes sets up the floor table routes.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	tableRoutes := authenticatedGroup.Group("/tables")
	{
		tableRoutes.GET("", floorStaff, tableHandler.ListTables)
		tableRoutes.POST("", adminOnly, tableHandler.CreateTable)
		tableRoutes.GET("/:name", floorStaff, tableHandler.GetTable)
	}
}

// SetupFinanceRoutes sets up the ledger routes.
func SetupFinanceRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	financeRoutes := authenticatedGroup.Group("/finance")
	financeRoutes.Use(adminOnly)
	{
		financeRoutes.GET("/records", reportHandler.GetFinancialRecords)
		financeRoutes.DELETE("/records/:id", reportHandler.DeleteFinancialRecord)
		financeRoutes.GET("/summary", reportHandler.GetFinanceSummary)
	}
}

// SetupReportRoutes sets up the reporting routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(adminOnly)
	{
		reportRoutes.GET("/low-stock", reportHandler.GetLowStockReport)
	}
}
