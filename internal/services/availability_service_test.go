package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_IsDishAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	beef := env.stockItem(t, "Beef", "2", "10")
	grill := env.prepUnit(t, "Grill", ingredient(beef.ID, "2", "25"))
	steak := env.dish(t, "Steak", "30", grill.ID)

	available, err := env.availability.IsDishAvailable(ctx, steak.ID)
	require.NoError(t, err)
	assert.True(t, available, "2kg on hand covers a 2kg requirement; wastage is ignored")

	_, err = env.inventory.AdjustStock(ctx, beef.ID, AdjustStockRequest{Delta: dec("-0.01"), Reason: "trim"}, nil)
	require.NoError(t, err)
	available, err = env.availability.IsDishAvailable(ctx, steak.ID)
	require.NoError(t, err)
	assert.False(t, available, "1.99kg does not cover 2kg")
}

func TestAvailabilityService_ShortCircuitsOnFirstShortfall(t *testing.T) {
	env := newTestEnv(t)
	rice := env.stockItem(t, "Rice", "5", "1")
	fish := env.stockItem(t, "Fish", "0.1", "20")
	base := env.prepUnit(t, "Rice base", ingredient(rice.ID, "0.2", "0"))
	topping := env.prepUnit(t, "Fish topping", ingredient(fish.ID, "0.15", "0"))
	bowl := env.dish(t, "Poke", "14", base.ID, topping.ID)

	available, err := env.availability.IsDishAvailable(context.Background(), bowl.ID)
	require.NoError(t, err)
	assert.False(t, available)
}

// Dangling catalog links read as "no constraint". This keeps the existing
// behavior visible; a dish whose references were removed still shows as
// available.
func TestAvailabilityService_DanglingReferencesReadAsAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("missing stock item", func(t *testing.T) {
		env := newTestEnv(t)
		beef := env.stockItem(t, "Beef", "0", "10")
		grill := env.prepUnit(t, "Grill", ingredient(beef.ID, "1", "0"))
		steak := env.dish(t, "Steak", "30", grill.ID)

		available, err := env.availability.IsDishAvailable(ctx, steak.ID)
		require.NoError(t, err)
		require.False(t, available)

		env.store.RemoveStockItem(beef.ID)
		available, err = env.availability.IsDishAvailable(ctx, steak.ID)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("missing preparation unit", func(t *testing.T) {
		env := newTestEnv(t)
		beef := env.stockItem(t, "Beef", "0", "10")
		grill := env.prepUnit(t, "Grill", ingredient(beef.ID, "1", "0"))
		steak := env.dish(t, "Steak", "30", grill.ID)

		env.store.RemoveDefinition(grill.ID)
		available, err := env.availability.IsDishAvailable(ctx, steak.ID)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("unknown dish", func(t *testing.T) {
		env := newTestEnv(t)
		available, err := env.availability.IsDishAvailable(ctx, 404)
		require.NoError(t, err)
		assert.True(t, available)
	})
}

func TestAvailabilityService_ListMenuAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.stockItem(t, "Flour", "1", "1")
	caviar := env.stockItem(t, "Caviar", "0", "300")
	dough := env.prepUnit(t, "Dough", ingredient(flour.ID, "0.3", "0"))
	garnish := env.prepUnit(t, "Garnish", ingredient(caviar.ID, "0.01", "0"))
	env.dish(t, "Bread", "3", dough.ID)
	env.dish(t, "Blini", "40", dough.ID, garnish.ID)
	_, err := env.catalog.CreateDish(ctx, DishRequest{Name: "Staff Meal", Price: dec("0"), Visibility: "internal"})
	require.NoError(t, err)

	menu, err := env.availability.ListMenuAvailability(ctx, true)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	byName := map[string]bool{}
	for _, d := range menu {
		byName[d.Name] = d.Available
	}
	assert.Equal(t, map[string]bool{"Bread": true, "Blini": false}, byName)

	all, err := env.availability.ListMenuAvailability(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
