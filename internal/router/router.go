package router

import (
	"net/http"

	"restaurant_ops_backend/internal/handlers"
	"restaurant_ops_backend/internal/middleware"
	"restaurant_ops_backend/internal/repositories"
	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies carries what Setup needs to build the service graph.
type Dependencies struct {
	Store          repositories.TxRunner
	Repos          repositories.Set
	Tokens         *utils.TokenManager
	Clock          services.Clock
	AllowedOrigins []string
}

// Setup initializes middleware and the routing for the application.
func Setup(engine *gin.Engine, deps Dependencies) {
	clock := deps.Clock
	if clock == nil {
		clock = services.SystemClock{}
	}
	repos := deps.Repos

	// Initialize Services
	financeService := services.NewFinanceService(deps.Store, repos.Finance, clock)
	tableService := services.NewTableService(deps.Store, repos.Tables, clock)
	inventoryService := services.NewInventoryService(deps.Store, repos.Inventory, financeService, clock)
	catalogService := services.NewCatalogService(deps.Store, repos.Catalog, clock)
	availabilityService := services.NewAvailabilityService(deps.Store, repos.Catalog, repos.Inventory)
	orderService := services.NewOrderService(deps.Store, repos.Orders, repos.Catalog, repos.Inventory, tableService, financeService, clock)
	authService := services.NewAuthService(deps.Store, repos.Auth, deps.Tokens, clock)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, availabilityService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	tableHandler := handlers.NewTableHandler(tableService)
	reportHandler := handlers.NewReportHandler(financeService, inventoryService)

	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	if len(deps.AllowedOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = deps.AllowedOrigins
		config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
		config.ExposeHeaders = []string{"X-Request-ID"}
		config.AllowCredentials = true
		engine.Use(cors.New(config))
	}

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, authHandler)

		SetupOrderRoutes(authenticated, orderHandler)
		SetupKitchenRoutes(authenticated, orderHandler)
		SetupDishRoutes(authenticated, catalogHandler)
		SetupPreparationUnitRoutes(authenticated, catalogHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupTableRoutes(authenticated, tableHandler)
		SetupFinanceRoutes(authenticated, reportHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}
