package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dish visibility
const (
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
)

// IngredientRequirement is one stock line of a preparation unit definition.
type IngredientRequirement struct {
	DefinitionID   int64           `json:"-" db:"definition_id"`
	StockItemID    int64           `json:"stock_item_id" db:"stock_item_id"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	WastagePercent decimal.Decimal `json:"wastage_percent" db:"wastage_percent"`
	Position       int             `json:"position" db:"position"`
}

// PreparationUnitDefinition is a reusable kitchen task shared across dishes.
type PreparationUnitDefinition struct {
	ID               int64                   `json:"id" db:"id"`
	Name             string                  `json:"name" db:"name"`
	Description      string                  `json:"description" db:"description"`
	EstimatedMinutes int                     `json:"estimated_minutes" db:"estimated_minutes"`
	Ingredients      []IngredientRequirement `json:"ingredients"`
	CreatedAt        time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at" db:"updated_at"`
}

// DishDefinition is a sellable menu entry composed of an ordered list of
// preparation units.
type DishDefinition struct {
	ID                 int64           `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Category           string          `json:"category" db:"category"`
	Price              decimal.Decimal `json:"price" db:"price"`
	Visibility         string          `json:"visibility" db:"visibility"`
	PreparationUnitIDs []int64         `json:"preparation_unit_ids"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// DishAvailability pairs a dish with its current availability.
type DishAvailability struct {
	DishID    int64  `json:"dish_id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}
