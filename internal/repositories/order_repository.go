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
)

// orderIDLockKey serializes order id allocation across concurrent transactions.
const orderIDLockKey = 7_201_001

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// NextOrderNumber returns the highest numeric suffix of existing order ids plus one.
	// It must be called inside a transaction; the allocation lock is held until commit.
	NextOrderNumber(ctx context.Context, exec SQLExecutor) (int, error)

	// Order methods
	CreateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error
	UpdateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error
	GetOrder(ctx context.Context, exec SQLExecutor, orderID string) (*models.Order, error) // with items and units
	ListOrders(ctx context.Context, exec SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error)
	ListActiveOrders(ctx context.Context, exec SQLExecutor) ([]models.Order, error) // oldest first
	DeleteOrder(ctx context.Context, exec SQLExecutor, orderID string) error

	// OrderItem methods
	CreateItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error // with units
	UpdateItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error
	DeleteItem(ctx context.Context, exec SQLExecutor, orderID string, itemID int64) error

	// UpdateUnit persists status and cook of one preparation unit instance,
	// provided the stored row still matches prev. Otherwise it returns
	// ErrStaleUpdate.
	UpdateUnit(ctx context.Context, exec SQLExecutor, unit *models.PreparationUnitInstance, prev models.PreparationUnitInstance) error
}

type orderRepository struct{}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

const orderColumns = `id, table_name, server_id, status, total_amount, party_size, payment_method, final_amount, created_at, updated_at`

// --- Order Methods ---

func (r *orderRepository) NextOrderNumber(ctx context.Context, exec SQLExecutor) (int, error) {
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, orderIDLockKey); err != nil {
		return 0, fmt.Errorf("%w: locking order id allocation: %v", ErrDatabaseError, err)
	}
	var maxNumber int
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 4) AS INTEGER)), 0)
	          FROM orders WHERE id ~ '^ORD[0-9]+$'`
	if err := sqlx.GetContext(ctx, exec, &maxNumber, query); err != nil {
		return 0, fmt.Errorf("%w: reading highest order id: %v", ErrDatabaseError, err)
	}
	return maxNumber + 1, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := exec.ExecContext(ctx, query,
		order.ID, order.TableName, order.ServerID, order.Status, order.Total, order.PartySize,
		order.PaymentMethod, order.FinalAmount, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("creating order %s", order.ID))
	}
	return nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error {
	query := `UPDATE orders
	          SET table_name = $1, server_id = $2, status = $3, total_amount = $4, party_size = $5,
	              payment_method = $6, final_amount = $7, updated_at = $8
	          WHERE id = $9`
	result, err := exec.ExecContext(ctx, query,
		order.TableName, order.ServerID, order.Status, order.Total, order.PartySize,
		order.PaymentMethod, order.FinalAmount, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("updating order %s", order.ID))
	}
	return requireAffected(result, fmt.Sprintf("updating order %s", order.ID))
}

func (r *orderRepository) GetOrder(ctx context.Context, exec SQLExecutor, orderID string) (*models.Order, error) {
	order := models.Order{}
	err := sqlx.GetContext(ctx, exec, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order %s: %v", ErrDatabaseError, orderID, err)
	}
	orders := []models.Order{order}
	if err := r.attachItems(ctx, exec, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) ListOrders(ctx context.Context, exec SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM orders`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.TableName != nil && *filters.TableName != "" {
		conditions = append(conditions, fmt.Sprintf("table_name = $%d", argCounter))
		args = append(args, *filters.TableName)
		argCounter++
	}
	if filters.ServerID != nil {
		conditions = append(conditions, fmt.Sprintf("server_id = $%d", argCounter))
		args = append(args, *filters.ServerID)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d AND created_at < $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, startOfDay.AddDate(0, 0, 1))
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	appendPaging(&queryBuilder, &args, argCounter, filters.Page, filters.PageSize)

	rows := []struct {
		models.Order
		TotalCount int `db:"total_count"`
	}{}
	if err := sqlx.SelectContext(ctx, exec, &rows, queryBuilder.String(), args...); err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}

	orders := make([]models.Order, 0, len(rows))
	totalCount := 0
	for _, row := range rows {
		orders = append(orders, row.Order)
		totalCount = row.TotalCount
	}
	if err := r.attachItems(ctx, exec, orders); err != nil {
		return nil, 0, err
	}
	return orders, totalCount, nil
}

func (r *orderRepository) ListActiveOrders(ctx context.Context, exec SQLExecutor) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE status NOT IN ($1, $2)
	          ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, exec, &orders, query, models.OrderStatusDelivered, models.OrderStatusCancelled); err != nil {
		return nil, fmt.Errorf("%w: querying active orders: %v", ErrDatabaseError, err)
	}
	if err := r.attachItems(ctx, exec, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, exec SQLExecutor, orderID string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: deleting order %s: %v", ErrDatabaseError, orderID, err)
	}
	return requireAffected(result, fmt.Sprintf("deleting order %s", orderID))
}

// attachItems loads items and unit instances for the given orders in two queries.
func (r *orderRepository) attachItems(ctx context.Context, exec SQLExecutor, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	query, args, err := sqlx.In(`SELECT order_id, id, dish_id, name, price, quantity, note
	    FROM order_items WHERE order_id IN (?) ORDER BY order_id, id`, ids)
	if err != nil {
		return fmt.Errorf("%w: building order item query: %v", ErrDatabaseError, err)
	}
	items := []models.OrderItem{}
	if err := sqlx.SelectContext(ctx, exec, &items, exec.Rebind(query), args...); err != nil {
		return fmt.Errorf("%w: loading order items: %v", ErrDatabaseError, err)
	}

	query, args, err = sqlx.In(`SELECT id, order_id, item_id, definition_id, position, status, cook_id,
	    name, description, estimated_minutes, updated_at
	    FROM preparation_unit_instances WHERE order_id IN (?) ORDER BY order_id, item_id, position, id`, ids)
	if err != nil {
		return fmt.Errorf("%w: building unit query: %v", ErrDatabaseError, err)
	}
	units := []models.PreparationUnitInstance{}
	if err := sqlx.SelectContext(ctx, exec, &units, exec.Rebind(query), args...); err != nil {
		return fmt.Errorf("%w: loading preparation units: %v", ErrDatabaseError, err)
	}

	type itemKey struct {
		orderID string
		itemID  int64
	}
	unitsByItem := make(map[itemKey][]models.PreparationUnitInstance)
	for _, u := range units {
		k := itemKey{u.OrderID, u.ItemID}
		unitsByItem[k] = append(unitsByItem[k], u)
	}
	itemsByOrder := make(map[string][]models.OrderItem, len(orders))
	for _, it := range items {
		it.Units = unitsByItem[itemKey{it.OrderID, it.ID}]
		if it.Units == nil {
			it.Units = []models.PreparationUnitInstance{}
		}
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, id, dish_id, name, price, quantity, note)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := exec.ExecContext(ctx, query,
		item.OrderID, item.ID, item.DishID, item.Name, item.Price, item.Quantity, item.Note,
	); err != nil {
		return mapPQError(err, fmt.Sprintf("creating item %d of order %s", item.ID, item.OrderID))
	}

	unitQuery := `INSERT INTO preparation_unit_instances
	              (order_id, item_id, definition_id, position, status, cook_id, name, description, estimated_minutes, updated_at)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	              RETURNING id`
	for i := range item.Units {
		u := &item.Units[i]
		u.OrderID = item.OrderID
		u.ItemID = item.ID
		if err := exec.QueryRowxContext(ctx, unitQuery,
			u.OrderID, u.ItemID, u.DefinitionID, u.Position, u.Status, u.CookID,
			u.Name, u.Description, u.EstimatedMinutes, u.UpdatedAt,
		).Scan(&u.ID); err != nil {
			return mapPQError(err, fmt.Sprintf("creating preparation unit for item %d of order %s", item.ID, item.OrderID))
		}
	}
	return nil
}

func (r *orderRepository) UpdateItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error {
	query := `UPDATE order_items SET quantity = $1, note = $2 WHERE order_id = $3 AND id = $4`
	result, err := exec.ExecContext(ctx, query, item.Quantity, item.Note, item.OrderID, item.ID)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("updating item %d of order %s", item.ID, item.OrderID))
	}
	return requireAffected(result, fmt.Sprintf("updating item %d of order %s", item.ID, item.OrderID))
}

func (r *orderRepository) DeleteItem(ctx context.Context, exec SQLExecutor, orderID string, itemID int64) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1 AND id = $2`, orderID, itemID)
	if err != nil {
		return fmt.Errorf("%w: deleting item %d of order %s: %v", ErrDatabaseError, itemID, orderID, err)
	}
	return requireAffected(result, fmt.Sprintf("deleting item %d of order %s", itemID, orderID))
}

func (r *orderRepository) UpdateUnit(ctx context.Context, exec SQLExecutor, unit *models.PreparationUnitInstance, prev models.PreparationUnitInstance) error {
	action := fmt.Sprintf("updating preparation unit %d", unit.ID)
	query := `UPDATE preparation_unit_instances SET status = $1, cook_id = $2, updated_at = $3
	          WHERE id = $4 AND order_id = $5 AND status = $6 AND cook_id IS NOT DISTINCT FROM $7::BIGINT`
	result, err := exec.ExecContext(ctx, query, unit.Status, unit.CookID, unit.UpdatedAt, unit.ID, unit.OrderID, prev.Status, prev.CookID)
	if err != nil {
		return mapPQError(err, action)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = sqlx.GetContext(ctx, exec, &exists,
		`SELECT EXISTS(SELECT 1 FROM preparation_unit_instances WHERE id = $1 AND order_id = $2)`, unit.ID, unit.OrderID)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
	}
	if !exists {
		return ErrNotFound
	}
	return fmt.Errorf("%w: preparation unit %d", ErrStaleUpdate, unit.ID)
}
