package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// TableRepository defines the interface for restaurant table database operations.
type TableRepository interface {
	CreateTable(ctx context.Context, exec SQLExecutor, table *models.Table) error
	GetTableByName(ctx context.Context, exec SQLExecutor, name string) (*models.Table, error)
	ListTables(ctx context.Context, exec SQLExecutor, floor *string) ([]models.Table, error)
	// SetOccupancy overwrites status, order back-reference and party size of a table.
	SetOccupancy(ctx context.Context, exec SQLExecutor, name string, status models.TableStatus, orderID *string, partySize *int, updatedAt time.Time) error
}

type tableRepository struct{}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository() TableRepository {
	return &tableRepository{}
}

const tableColumns = `id, name, floor, shape, position_x, position_y, status, order_id, party_size, created_at, updated_at`

func (r *tableRepository) CreateTable(ctx context.Context, exec SQLExecutor, table *models.Table) error {
	query := `INSERT INTO restaurant_tables (name, floor, shape, position_x, position_y, status, order_id, party_size, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	err := exec.QueryRowxContext(ctx, query,
		table.Name, table.Floor, table.Shape, table.PositionX, table.PositionY, table.Status,
		table.OrderID, table.PartySize, table.CreatedAt, table.UpdatedAt,
	).Scan(&table.ID)
	if err != nil {
		return mapPQError(err, "creating table")
	}
	return nil
}

func (r *tableRepository) GetTableByName(ctx context.Context, exec SQLExecutor, name string) (*models.Table, error) {
	table := &models.Table{}
	err := sqlx.GetContext(ctx, exec, table, `SELECT `+tableColumns+` FROM restaurant_tables WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table %q: %v", ErrDatabaseError, name, err)
	}
	return table, nil
}

func (r *tableRepository) ListTables(ctx context.Context, exec SQLExecutor, floor *string) ([]models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables`
	var args []interface{}
	if floor != nil && *floor != "" {
		query += ` WHERE floor = $1`
		args = append(args, *floor)
	}
	query += ` ORDER BY floor, name`

	tables := []models.Table{}
	if err := sqlx.SelectContext(ctx, exec, &tables, query, args...); err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", ErrDatabaseError, err)
	}
	return tables, nil
}

func (r *tableRepository) SetOccupancy(ctx context.Context, exec SQLExecutor, name string, status models.TableStatus, orderID *string, partySize *int, updatedAt time.Time) error {
	query := `UPDATE restaurant_tables SET status = $1, order_id = $2, party_size = $3, updated_at = $4 WHERE name = $5`
	result, err := exec.ExecContext(ctx, query, status, orderID, partySize, updatedAt, name)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("updating occupancy of table %q", name))
	}
	return requireAffected(result, fmt.Sprintf("updating occupancy of table %q", name))
}
