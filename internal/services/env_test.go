package services

import (
	"context"
	"testing"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)

type testEnv struct {
	store *memory.Store

	orders       OrderService
	inventory    InventoryService
	catalog      CatalogService
	tables       TableService
	finance      FinanceService
	availability AvailabilityService
	auth         AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := fixedClock{t: testNow}

	inventoryRepo := memory.NewInventoryRepository(store)
	catalogRepo := memory.NewCatalogRepository(store)

	finance := NewFinanceService(store, memory.NewFinanceRepository(store), clock)
	tables := NewTableService(store, memory.NewTableRepository(store), clock)
	return &testEnv{
		store:        store,
		finance:      finance,
		tables:       tables,
		inventory:    NewInventoryService(store, inventoryRepo, finance, clock),
		catalog:      NewCatalogService(store, catalogRepo, clock),
		availability: NewAvailabilityService(store, catalogRepo, inventoryRepo),
		orders:       NewOrderService(store, memory.NewOrderRepository(store), catalogRepo, inventoryRepo, tables, finance, clock),
		auth:         NewAuthService(store, memory.NewAuthRepository(store), stubTokens{}, clock),
	}
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID int64, username, role string) (string, error) {
	return "token-" + username + "-" + role, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *testEnv) stockItem(t *testing.T, name, quantity, unitPrice string) *models.StockItem {
	t.Helper()
	item, err := e.inventory.CreateStockItem(context.Background(), CreateStockItemRequest{
		Name:      name,
		Unit:      "kg",
		Quantity:  dec(quantity),
		UnitPrice: dec(unitPrice),
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) prepUnit(t *testing.T, name string, ingredients ...IngredientRequest) *models.PreparationUnitDefinition {
	t.Helper()
	def, err := e.catalog.CreatePreparationUnit(context.Background(), PreparationUnitRequest{
		Name:             name,
		EstimatedMinutes: 5,
		Ingredients:      ingredients,
	})
	require.NoError(t, err)
	return def
}

func (e *testEnv) dish(t *testing.T, name, price string, unitIDs ...int64) *models.DishDefinition {
	t.Helper()
	dish, err := e.catalog.CreateDish(context.Background(), DishRequest{
		Name:               name,
		Category:           "mains",
		Price:              dec(price),
		PreparationUnitIDs: unitIDs,
	})
	require.NoError(t, err)
	return dish
}

func (e *testEnv) table(t *testing.T, name string) *models.Table {
	t.Helper()
	table, err := e.tables.CreateTable(context.Background(), CreateTableRequest{Name: name, Floor: "main"})
	require.NoError(t, err)
	return table
}

func (e *testEnv) records(t *testing.T) []models.FinancialRecord {
	t.Helper()
	records, _, err := e.finance.ListRecords(context.Background(), models.FinanceFilters{})
	require.NoError(t, err)
	return records
}

func ingredient(stockItemID int64, quantity, wastage string) IngredientRequest {
	return IngredientRequest{StockItemID: stockItemID, Quantity: dec(quantity), WastagePercent: dec(wastage)}
}

func int64Ptr(v int64) *int64 { return &v }
