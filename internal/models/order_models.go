package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the stored lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValidOrderStatus checks if the provided status string is a valid OrderStatus.
func IsValidOrderStatus(status string) bool {
	switch OrderStatus(status) {
	case OrderStatusPending,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the order has left the floor. Final orders hold no table.
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// UnitStatus is the kitchen state of a single preparation unit instance.
type UnitStatus string

const (
	UnitStatusPending   UnitStatus = "pending"
	UnitStatusPreparing UnitStatus = "preparing"
	UnitStatusReady     UnitStatus = "ready"
)

// IsValidUnitStatus checks if the provided status string is a valid UnitStatus.
func IsValidUnitStatus(status string) bool {
	switch UnitStatus(status) {
	case UnitStatusPending, UnitStatusPreparing, UnitStatusReady:
		return true
	default:
		return false
	}
}

// Order is a table's (or takeaway) order. The order owns its items and their
// preparation unit instances.
type Order struct {
	ID            string           `json:"id" db:"id"`
	TableName     string           `json:"table_name" db:"table_name"`
	ServerID      int64            `json:"server_id" db:"server_id"`
	Status        OrderStatus      `json:"status" db:"status"`
	Total         decimal.Decimal  `json:"total" db:"total_amount"`
	PartySize     int              `json:"party_size" db:"party_size"`
	PaymentMethod *string          `json:"payment_method,omitempty" db:"payment_method"`
	FinalAmount   *decimal.Decimal `json:"final_amount,omitempty" db:"final_amount"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
	Items         []OrderItem      `json:"items"`
}

// FullyPrepared reports whether every unit of every item is ready. It is a
// derived fact and is independent of the stored Status.
func (o *Order) FullyPrepared() bool {
	for _, item := range o.Items {
		if !item.AllUnitsReady() {
			return false
		}
	}
	return true
}

// UnitProgress returns the number of ready units and the total number of units.
func (o *Order) UnitProgress() (ready, total int) {
	for _, item := range o.Items {
		for _, u := range item.Units {
			total++
			if u.Status == UnitStatusReady {
				ready++
			}
		}
	}
	return ready, total
}

// FindItem looks an item up by its order-scoped id.
func (o *Order) FindItem(itemID int64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// FindItemByDish returns the first item referencing the given dish.
func (o *Order) FindItemByDish(dishID int64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].DishID == dishID {
			return &o.Items[i]
		}
	}
	return nil
}

// OrderItem is one line of an order. Name and Price are captured when the line
// is created and do not follow later dish edits.
type OrderItem struct {
	ID       int64                     `json:"id" db:"id"`
	OrderID  string                    `json:"order_id" db:"order_id"`
	DishID   int64                     `json:"dish_id" db:"dish_id"`
	Name     string                    `json:"name" db:"name"`
	Price    decimal.Decimal           `json:"price" db:"price"`
	Quantity int                       `json:"quantity" db:"quantity"`
	Note     string                    `json:"note" db:"note"`
	Units    []PreparationUnitInstance `json:"units"`
}

// LineTotal is price × quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AllUnitsReady is true for items with no units as well.
func (i *OrderItem) AllUnitsReady() bool {
	for _, u := range i.Units {
		if u.Status != UnitStatusReady {
			return false
		}
	}
	return true
}

// ReadyUnits counts the item's units in the ready state.
func (i *OrderItem) ReadyUnits() int {
	n := 0
	for _, u := range i.Units {
		if u.Status == UnitStatusReady {
			n++
		}
	}
	return n
}

// FindUnit looks a unit instance up by id.
func (i *OrderItem) FindUnit(unitID int64) *PreparationUnitInstance {
	for k := range i.Units {
		if i.Units[k].ID == unitID {
			return &i.Units[k]
		}
	}
	return nil
}

// PreparationUnitInstance is the order-scoped copy of a preparation unit
// definition, tracked through the kitchen independently of its siblings.
type PreparationUnitInstance struct {
	ID               int64      `json:"id" db:"id"`
	OrderID          string     `json:"order_id" db:"order_id"`
	ItemID           int64      `json:"item_id" db:"item_id"`
	DefinitionID     int64      `json:"definition_id" db:"definition_id"`
	Position         int        `json:"position" db:"position"`
	Status           UnitStatus `json:"status" db:"status"`
	CookID           *int64     `json:"cook_id,omitempty" db:"cook_id"`
	Name             string     `json:"name" db:"name"`
	Description      string     `json:"description" db:"description"`
	EstimatedMinutes int        `json:"estimated_minutes" db:"estimated_minutes"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	Status    *string `form:"status"`
	TableName *string `form:"table"`
	ServerID  *int64  `form:"server_id"`
	Date      *string `form:"date"` // Expected format YYYY-MM-DD
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
