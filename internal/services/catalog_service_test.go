package services

import (
	"context"
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_PreparationUnits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.stockItem(t, "Flour", "2", "1.5")
	dough := env.prepUnit(t, "Dough", ingredient(flour.ID, "0.3", "5"))

	require.Len(t, dough.Ingredients, 1)
	assert.Equal(t, dough.ID, dough.Ingredients[0].DefinitionID)

	t.Run("name conflict is case-insensitive", func(t *testing.T) {
		_, err := env.catalog.CreatePreparationUnit(ctx, PreparationUnitRequest{Name: "dough"})
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  PreparationUnitRequest
		}{
			{"empty name", PreparationUnitRequest{Name: "  "}},
			{"negative minutes", PreparationUnitRequest{Name: "Rest", EstimatedMinutes: -1}},
			{"zero quantity", PreparationUnitRequest{Name: "Knead", Ingredients: []IngredientRequest{ingredient(flour.ID, "0", "0")}}},
			{"full wastage", PreparationUnitRequest{Name: "Knead", Ingredients: []IngredientRequest{ingredient(flour.ID, "1", "100")}}},
			{"negative wastage", PreparationUnitRequest{Name: "Knead", Ingredients: []IngredientRequest{ingredient(flour.ID, "1", "-1")}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.catalog.CreatePreparationUnit(ctx, tt.req)
				require.ErrorIs(t, err, ErrValidation)
			})
		}
	})

	t.Run("unknown stock item", func(t *testing.T) {
		_, err := env.catalog.CreatePreparationUnit(ctx, PreparationUnitRequest{Name: "Glaze", Ingredients: []IngredientRequest{ingredient(404, "1", "0")}})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update replaces ingredients", func(t *testing.T) {
		updated, err := env.catalog.UpdatePreparationUnit(ctx, dough.ID, PreparationUnitRequest{
			Name:             "Dough",
			EstimatedMinutes: 20,
			Ingredients:      []IngredientRequest{ingredient(flour.ID, "0.5", "0")},
		})
		require.NoError(t, err)
		assert.Equal(t, 20, updated.EstimatedMinutes)

		reloaded, err := env.catalog.GetPreparationUnit(ctx, dough.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Ingredients, 1)
		assertDecimal(t, "0.5", reloaded.Ingredients[0].Quantity)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := env.catalog.GetPreparationUnit(ctx, 404)
		require.ErrorIs(t, err, ErrDefinitionNotFound)
		_, err = env.catalog.UpdatePreparationUnit(ctx, 404, PreparationUnitRequest{Name: "Ghost"})
		require.ErrorIs(t, err, ErrDefinitionNotFound)
	})
}

func TestCatalogService_Dishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dough := env.prepUnit(t, "Dough")
	pizza := env.dish(t, "Margherita", "12", dough.ID)
	assert.Equal(t, models.VisibilityPublic, pizza.Visibility)
	assert.Equal(t, []int64{dough.ID}, pizza.PreparationUnitIDs)

	_, err := env.catalog.CreateDish(ctx, DishRequest{Name: "MARGHERITA", Price: dec("9")})
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.catalog.CreateDish(ctx, DishRequest{Name: "Calzone", Price: dec("-1")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.catalog.CreateDish(ctx, DishRequest{Name: "Calzone", Price: dec("11"), Visibility: "secret"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.catalog.CreateDish(ctx, DishRequest{Name: "Calzone", Price: dec("11"), PreparationUnitIDs: []int64{404}})
	require.ErrorIs(t, err, ErrNotFound)

	env.dish(t, "Marinara", "10", dough.ID)
	_, err = env.catalog.UpdateDish(ctx, pizza.ID, DishRequest{Name: "marinara", Price: dec("12")})
	require.ErrorIs(t, err, ErrConflict, "renaming onto another dish conflicts")

	_, err = env.catalog.CreateDish(ctx, DishRequest{Name: "Staff Pizza", Price: dec("0"), Visibility: models.VisibilityInternal})
	require.NoError(t, err)
	public, err := env.catalog.ListDishes(ctx, true)
	require.NoError(t, err)
	assert.Len(t, public, 2)
	all, err := env.catalog.ListDishes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
