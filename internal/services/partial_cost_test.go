package services

import (
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitsWith(statuses ...models.UnitStatus) []models.PreparationUnitInstance {
	units := make([]models.PreparationUnitInstance, len(statuses))
	for i, s := range statuses {
		units[i] = models.PreparationUnitInstance{ID: int64(i + 1), DefinitionID: int64(i + 1), Status: s}
	}
	return units
}

func TestCalculatePartialCost(t *testing.T) {
	definitions := map[int64]models.PreparationUnitDefinition{
		1: {ID: 1, Ingredients: []models.IngredientRequirement{{StockItemID: 10, Quantity: dec("1"), WastagePercent: dec("0")}}},
		2: {ID: 2, Ingredients: []models.IngredientRequirement{{StockItemID: 11, Quantity: dec("0.5"), WastagePercent: dec("50")}}},
	}
	stock := map[int64]models.StockItem{
		10: {ID: 10, UnitPrice: dec("2")},
		11: {ID: 11, UnitPrice: dec("4")},
	}

	t.Run("mixed item charged by ready ingredient cost", func(t *testing.T) {
		order := &models.Order{ID: "ORD001", Total: dec("30"), Items: []models.OrderItem{
			{ID: 1, Price: dec("10"), Quantity: 1, Units: unitsWith(models.UnitStatusReady)},
			{ID: 2, Price: dec("20"), Quantity: 1, Units: unitsWith(models.UnitStatusReady, models.UnitStatusPending)},
		}}
		cost := CalculatePartialCost(order, definitions, stock)
		assertDecimal(t, "30", cost.NominalTotal)
		assertDecimal(t, "16", cost.AdjustedTotal)
		assert.True(t, cost.IsPartial)
	})

	t.Run("fully prepared returns nominal total", func(t *testing.T) {
		order := &models.Order{Total: dec("23"), Items: []models.OrderItem{
			{ID: 1, Price: dec("10"), Quantity: 2, Units: unitsWith(models.UnitStatusReady, models.UnitStatusReady)},
			{ID: 2, Price: dec("3"), Quantity: 1},
		}}
		cost := CalculatePartialCost(order, definitions, stock)
		assertDecimal(t, "23", cost.AdjustedTotal)
		assert.False(t, cost.IsPartial)
	})

	t.Run("untouched items contribute nothing", func(t *testing.T) {
		order := &models.Order{Total: dec("15"), Items: []models.OrderItem{
			{ID: 1, Price: dec("10"), Quantity: 1, Units: unitsWith(models.UnitStatusPending)},
			{ID: 2, Price: dec("5"), Quantity: 1},
		}}
		cost := CalculatePartialCost(order, definitions, stock)
		assertDecimal(t, "5", cost.AdjustedTotal)
		require.Len(t, cost.Items, 2)
		assertDecimal(t, "0", cost.Items[0].Amount)
		assert.True(t, cost.IsPartial)
	})

	t.Run("nothing ready is not partial", func(t *testing.T) {
		order := &models.Order{Total: dec("10"), Items: []models.OrderItem{
			{ID: 1, Price: dec("10"), Quantity: 1, Units: unitsWith(models.UnitStatusPending)},
		}}
		cost := CalculatePartialCost(order, definitions, stock)
		assert.True(t, cost.AdjustedTotal.IsZero())
		assert.False(t, cost.IsPartial)
	})

	t.Run("wastage and quantity scale the raw cost", func(t *testing.T) {
		order := &models.Order{Total: dec("100"), Items: []models.OrderItem{
			{ID: 1, Price: dec("50"), Quantity: 2, Units: []models.PreparationUnitInstance{
				{ID: 1, DefinitionID: 2, Status: models.UnitStatusReady},
				{ID: 2, DefinitionID: 1, Status: models.UnitStatusPending},
			}},
		}}
		// 0.5 / (1 - 0.5) * 4 = 4, times markup 3, times quantity 2.
		cost := CalculatePartialCost(order, definitions, stock)
		assertDecimal(t, "24", cost.AdjustedTotal)
	})

	// Unresolvable definitions and stock items are skipped rather than failing.
	t.Run("dangling references contribute zero", func(t *testing.T) {
		order := &models.Order{Total: dec("50"), Items: []models.OrderItem{
			{ID: 1, Price: dec("50"), Quantity: 1, Units: []models.PreparationUnitInstance{
				{ID: 1, DefinitionID: 99, Status: models.UnitStatusReady},
				{ID: 2, DefinitionID: 1, Status: models.UnitStatusPending},
			}},
		}}
		cost := CalculatePartialCost(order, definitions, map[int64]models.StockItem{})
		assert.True(t, cost.AdjustedTotal.IsZero())
	})

	t.Run("nominal total is the stored order total", func(t *testing.T) {
		order := &models.Order{Total: dec("12"), Items: []models.OrderItem{
			{ID: 1, Price: dec("10"), Quantity: 1, Units: unitsWith(models.UnitStatusReady)},
			{ID: 2, Price: dec("20"), Quantity: 1, Units: unitsWith(models.UnitStatusReady, models.UnitStatusPending)},
		}}
		cost := CalculatePartialCost(order, definitions, stock)
		assertDecimal(t, "12", cost.NominalTotal)
		assertDecimal(t, "16", cost.AdjustedTotal)
		assert.False(t, cost.IsPartial)

		order.Items[1].Units[1].Status = models.UnitStatusReady
		cost = CalculatePartialCost(order, definitions, stock)
		assertDecimal(t, "12", cost.AdjustedTotal)
	})
}
