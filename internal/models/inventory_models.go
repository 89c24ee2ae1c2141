package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is an inventory-tracked ingredient or material.
type StockItem struct {
	ID               int64           `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Category         string          `json:"category" db:"category"`
	Unit             string          `json:"unit" db:"unit"`
	Quantity         decimal.Decimal `json:"quantity" db:"quantity"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold" db:"reorder_threshold"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLow reports whether the item is at or below its reorder threshold.
func (s *StockItem) IsLow() bool {
	return s.Quantity.LessThanOrEqual(s.ReorderThreshold)
}

// Stock movement types
const (
	MovementTypeRestock     = "restock"
	MovementTypeConsumption = "consumption"
	MovementTypeAdjustment  = "adjustment"
)

// StockMovement represents a change in stock for an item
type StockMovement struct {
	ID               int64           `json:"id" db:"id"`
	StockItemID      int64           `json:"stock_item_id" db:"stock_item_id"`
	StaffID          *int64          `json:"staff_id,omitempty" db:"staff_id"`
	MovementType     string          `json:"movement_type" db:"movement_type"`
	Delta            decimal.Decimal `json:"delta" db:"delta"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity" db:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity" db:"new_quantity"`
	Reason           *string         `json:"reason,omitempty" db:"reason"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// NewNullString is a helper for string pointers, returning nil if string is empty.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
