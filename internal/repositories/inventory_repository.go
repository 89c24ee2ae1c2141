package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// InventoryRepository defines the interface for stock item and stock movement database operations.
type InventoryRepository interface {
	CreateStockItem(ctx context.Context, exec SQLExecutor, item *models.StockItem) error
	GetStockItem(ctx context.Context, exec SQLExecutor, id int64) (*models.StockItem, error)
	FindStockItemByName(ctx context.Context, exec SQLExecutor, name string) (*models.StockItem, error) // case-insensitive
	ListStockItems(ctx context.Context, exec SQLExecutor) ([]models.StockItem, error)
	ListLowStockItems(ctx context.Context, exec SQLExecutor) ([]models.StockItem, error)
	GetStockItemsByIDs(ctx context.Context, exec SQLExecutor, ids []int64) (map[int64]models.StockItem, error)

	// AdjustQuantity applies delta in a single guarded statement and returns the
	// quantities before and after. ErrCheckViolation means the result would be negative.
	AdjustQuantity(ctx context.Context, exec SQLExecutor, id int64, delta decimal.Decimal, updatedAt time.Time) (previous, current decimal.Decimal, err error)

	CreateMovement(ctx context.Context, exec SQLExecutor, movement *models.StockMovement) error
	ListMovements(ctx context.Context, exec SQLExecutor, stockItemID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type inventoryRepository struct{}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository() InventoryRepository {
	return &inventoryRepository{}
}

const stockItemColumns = `id, name, category, unit, quantity, reorder_threshold, unit_price, created_at, updated_at`

func (r *inventoryRepository) CreateStockItem(ctx context.Context, exec SQLExecutor, item *models.StockItem) error {
	query := `INSERT INTO stock_items (name, category, unit, quantity, reorder_threshold, unit_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	err := exec.QueryRowxContext(ctx, query,
		item.Name, item.Category, item.Unit, item.Quantity, item.ReorderThreshold, item.UnitPrice,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return mapPQError(err, "creating stock item")
	}
	return nil
}

func (r *inventoryRepository) GetStockItem(ctx context.Context, exec SQLExecutor, id int64) (*models.StockItem, error) {
	item := &models.StockItem{}
	err := sqlx.GetContext(ctx, exec, item, `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting stock item %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *inventoryRepository) FindStockItemByName(ctx context.Context, exec SQLExecutor, name string) (*models.StockItem, error) {
	item := &models.StockItem{}
	err := sqlx.GetContext(ctx, exec, item, `SELECT `+stockItemColumns+` FROM stock_items WHERE LOWER(name) = LOWER($1)`, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding stock item by name: %v", ErrDatabaseError, err)
	}
	return item, nil
}

func (r *inventoryRepository) ListStockItems(ctx context.Context, exec SQLExecutor) ([]models.StockItem, error) {
	items := []models.StockItem{}
	if err := sqlx.SelectContext(ctx, exec, &items, `SELECT `+stockItemColumns+` FROM stock_items ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%w: listing stock items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *inventoryRepository) ListLowStockItems(ctx context.Context, exec SQLExecutor) ([]models.StockItem, error) {
	items := []models.StockItem{}
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE quantity <= reorder_threshold ORDER BY name`
	if err := sqlx.SelectContext(ctx, exec, &items, query); err != nil {
		return nil, fmt.Errorf("%w: listing low stock items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *inventoryRepository) GetStockItemsByIDs(ctx context.Context, exec SQLExecutor, ids []int64) (map[int64]models.StockItem, error) {
	result := make(map[int64]models.StockItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+stockItemColumns+` FROM stock_items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: building stock item query: %v", ErrDatabaseError, err)
	}
	items := []models.StockItem{}
	if err := sqlx.SelectContext(ctx, exec, &items, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%w: getting stock items by ids: %v", ErrDatabaseError, err)
	}
	for _, it := range items {
		result[it.ID] = it
	}
	return result, nil
}

func (r *inventoryRepository) AdjustQuantity(ctx context.Context, exec SQLExecutor, id int64, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `UPDATE stock_items
	          SET quantity = quantity + $1, updated_at = $2
	          WHERE id = $3 AND quantity + $1 >= 0
	          RETURNING quantity - $1, quantity`
	var previous, current decimal.Decimal
	err := exec.QueryRowxContext(ctx, query, delta, updatedAt, id).Scan(&previous, &current)
	if err == nil {
		return previous, current, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, decimal.Zero, mapPQError(err, fmt.Sprintf("adjusting stock item %d", id))
	}

	// No row matched: either the item is missing or the guard rejected the delta.
	var exists bool
	if err := exec.QueryRowxContext(ctx, `SELECT EXISTS(SELECT 1 FROM stock_items WHERE id = $1)`, id).Scan(&exists); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: checking stock item %d: %v", ErrDatabaseError, id, err)
	}
	if !exists {
		return decimal.Zero, decimal.Zero, ErrNotFound
	}
	return decimal.Zero, decimal.Zero, fmt.Errorf("%w: stock item %d would go negative", ErrCheckViolation, id)
}

func (r *inventoryRepository) CreateMovement(ctx context.Context, exec SQLExecutor, movement *models.StockMovement) error {
	query := `INSERT INTO stock_movements
	          (stock_item_id, staff_id, movement_type, delta, previous_quantity, new_quantity, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	err := exec.QueryRowxContext(ctx, query,
		movement.StockItemID, movement.StaffID, movement.MovementType, movement.Delta,
		movement.PreviousQuantity, movement.NewQuantity, movement.Reason, movement.CreatedAt,
	).Scan(&movement.ID)
	if err != nil {
		return mapPQError(err, "creating stock movement")
	}
	return nil
}

func (r *inventoryRepository) ListMovements(ctx context.Context, exec SQLExecutor, stockItemID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, stock_item_id, staff_id, movement_type, delta, previous_quantity,
	    new_quantity, reason, created_at, COUNT(*) OVER() AS total_count
	  FROM stock_movements`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if stockItemID != nil {
		conditions = append(conditions, fmt.Sprintf("stock_item_id = $%d", argCount))
		args = append(args, *stockItemID)
		argCount++
	}
	if movementType != nil && *movementType != "" {
		conditions = append(conditions, fmt.Sprintf("movement_type = $%d", argCount))
		args = append(args, *movementType)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	appendPaging(&queryBuilder, &args, argCount, page, pageSize)

	rows := []struct {
		models.StockMovement
		TotalCount int `db:"total_count"`
	}{}
	if err := sqlx.SelectContext(ctx, exec, &rows, queryBuilder.String(), args...); err != nil {
		return nil, 0, fmt.Errorf("%w: querying stock movements: %v", ErrDatabaseError, err)
	}

	movements := make([]models.StockMovement, 0, len(rows))
	totalCount := 0
	for _, row := range rows {
		movements = append(movements, row.StockMovement)
		totalCount = row.TotalCount
	}
	return movements, totalCount, nil
}

// appendPaging adds LIMIT/OFFSET placeholders and returns the next placeholder index.
func appendPaging(qb *strings.Builder, args *[]interface{}, argCount, page, pageSize int) int {
	if pageSize <= 0 {
		return argCount
	}
	qb.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
	*args = append(*args, pageSize)
	argCount++
	if page > 0 {
		qb.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
		*args = append(*args, (page-1)*pageSize)
		argCount++
	}
	return argCount
}
