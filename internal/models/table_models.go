package models

import "time"

// TableStatus defines the type for table occupancy statuses
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusReserved  TableStatus = "reserved"
)

// IsValidTableStatus checks if the provided status string is a valid TableStatus.
func IsValidTableStatus(status string) bool {
	s := TableStatus(status)
	switch s {
	case TableStatusAvailable,
		TableStatusOccupied,
		TableStatusReserved:
		return true
	default:
		return false
	}
}

// Table represents a physical table on a floor. Its status mirrors the order it
// is bound to; OrderID is a back-reference by value.
type Table struct {
	ID        int64       `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Floor     string      `json:"floor" db:"floor"`
	Shape     string      `json:"shape" db:"shape"`
	PositionX int         `json:"position_x" db:"position_x"`
	PositionY int         `json:"position_y" db:"position_y"`
	Status    TableStatus `json:"status" db:"status"`
	OrderID   *string     `json:"order_id,omitempty" db:"order_id"`
	PartySize *int        `json:"party_size,omitempty" db:"party_size"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
