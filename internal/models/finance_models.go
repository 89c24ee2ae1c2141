package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Financial record categories
const (
	RecordCategoryRevenue = "revenue"
	RecordCategoryExpense = "expense"
)

// FinancialRecord is an append-only ledger entry. Records are never updated.
type FinancialRecord struct {
	ID          int64           `json:"id" db:"id"`
	RecordedAt  time.Time       `json:"recorded_at" db:"recorded_at"`
	Category    string          `json:"category" db:"category"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
}

// FinanceFilters holds the parameters for listing ledger records.
type FinanceFilters struct {
	Category *string    `form:"category"`
	From     *time.Time `form:"from"`
	To       *time.Time `form:"to"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// FinanceSummary holds ledger totals for a period.
type FinanceSummary struct {
	From    *time.Time      `json:"from,omitempty"`
	To      *time.Time      `json:"to,omitempty"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Records int             `json:"records"`
}

// PartialCost is the settlement preview for an order that may not be fully
// prepared.
type PartialCost struct {
	OrderID       string          `json:"order_id"`
	NominalTotal  decimal.Decimal `json:"nominal_total"`
	AdjustedTotal decimal.Decimal `json:"adjusted_total"`
	IsPartial     bool            `json:"is_partial"`
	Items         []ItemCost      `json:"items"`
}

// ItemCost is one item's contribution to a PartialCost.
type ItemCost struct {
	ItemID     int64           `json:"item_id"`
	Name       string          `json:"name"`
	ReadyUnits int             `json:"ready_units"`
	TotalUnits int             `json:"total_units"`
	Amount     decimal.Decimal `json:"amount"`
}

// KitchenTicket is a derived kitchen view of an open order.
type KitchenTicket struct {
	Order         *Order `json:"order"`
	UnitsReady    int    `json:"units_ready"`
	UnitsTotal    int    `json:"units_total"`
	FullyPrepared bool   `json:"fully_prepared"`
}
