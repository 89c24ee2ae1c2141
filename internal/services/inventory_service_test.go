package services

import (
	"context"
	"errors"
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryService_Restock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.stockItem(t, "Flour", "2", "1.5")

	result, err := env.inventory.Restock(ctx, flour.ID, RestockRequest{Quantity: dec("4")}, int64Ptr(1))
	require.NoError(t, err)
	assertDecimal(t, "6", result.StockItem.Quantity)
	require.NotNil(t, result.Expense)

	records := env.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, models.RecordCategoryExpense, records[0].Category)
	assertDecimal(t, "6", records[0].Amount)
	assert.Equal(t, "Restock: 4 x Flour", records[0].Description)

	movements, total, err := env.inventory.ListMovements(ctx, &flour.ID, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.MovementTypeRestock, movements[0].MovementType)
	assertDecimal(t, "2", movements[0].PreviousQuantity)
	assertDecimal(t, "6", movements[0].NewQuantity)
	require.NotNil(t, movements[0].StaffID)
	assert.Equal(t, int64(1), *movements[0].StaffID)
}

func TestInventoryService_RestockIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.stockItem(t, "Flour", "2", "1.5")
	env.store.FailNext("FinanceRepository.CreateRecord", errors.New("ledger unavailable"))

	_, err := env.inventory.Restock(ctx, flour.ID, RestockRequest{Quantity: dec("4")}, nil)
	require.ErrorIs(t, err, ErrStorage)

	item, err := env.inventory.GetStockItem(ctx, flour.ID)
	require.NoError(t, err)
	assertDecimal(t, "2", item.Quantity)
	assert.Empty(t, env.records(t))
	_, total, err := env.inventory.ListMovements(ctx, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestInventoryService_RestockWithoutPriceSkipsExpense(t *testing.T) {
	env := newTestEnv(t)
	salt := env.stockItem(t, "Salt", "1", "0")

	result, err := env.inventory.Restock(context.Background(), salt.ID, RestockRequest{Quantity: dec("3")}, nil)
	require.NoError(t, err)
	assert.Nil(t, result.Expense)
	assertDecimal(t, "4", result.StockItem.Quantity)
	assert.Empty(t, env.records(t))
}

func TestInventoryService_AdjustStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.stockItem(t, "Flour", "2", "1.5")

	t.Run("consumption", func(t *testing.T) {
		item, err := env.inventory.AdjustStock(ctx, flour.ID, AdjustStockRequest{Delta: dec("-1.25"), Reason: "bread"}, nil)
		require.NoError(t, err)
		assertDecimal(t, "0.75", item.Quantity)
	})

	t.Run("cannot go negative", func(t *testing.T) {
		_, err := env.inventory.AdjustStock(ctx, flour.ID, AdjustStockRequest{Delta: dec("-1")}, nil)
		require.ErrorIs(t, err, ErrInsufficientStock)
		require.ErrorIs(t, err, ErrValidation)
		item, err := env.inventory.GetStockItem(ctx, flour.ID)
		require.NoError(t, err)
		assertDecimal(t, "0.75", item.Quantity)
	})

	t.Run("zero delta", func(t *testing.T) {
		_, err := env.inventory.AdjustStock(ctx, flour.ID, AdjustStockRequest{}, nil)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := env.inventory.AdjustStock(ctx, 404, AdjustStockRequest{Delta: dec("1")}, nil)
		require.ErrorIs(t, err, ErrStockItemNotFound)
	})

	consumption := models.MovementTypeConsumption
	movements, total, err := env.inventory.ListMovements(ctx, nil, &consumption, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.NotNil(t, movements[0].Reason)
	assert.Equal(t, "bread", *movements[0].Reason)
}

func TestInventoryService_CreateStockItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.stockItem(t, "Flour", "2", "1.5")

	_, err := env.inventory.CreateStockItem(ctx, CreateStockItemRequest{Name: "FLOUR", Unit: "kg"})
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.inventory.CreateStockItem(ctx, CreateStockItemRequest{Name: "Oil", Unit: "l", Quantity: dec("-1")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.inventory.CreateStockItem(ctx, CreateStockItemRequest{Name: " ", Unit: "l"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestInventoryService_ListLowStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.inventory.CreateStockItem(ctx, CreateStockItemRequest{Name: "Milk", Unit: "l", Quantity: dec("2"), ReorderThreshold: dec("2")})
	require.NoError(t, err)
	_, err = env.inventory.CreateStockItem(ctx, CreateStockItemRequest{Name: "Eggs", Unit: "pcs", Quantity: dec("30"), ReorderThreshold: dec("12")})
	require.NoError(t, err)

	low, err := env.inventory.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Milk", low[0].Name)
}
