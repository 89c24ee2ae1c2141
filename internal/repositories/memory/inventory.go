package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

type inventoryRepository struct {
	s *Store
}

// NewInventoryRepository returns an InventoryRepository over the store.
func NewInventoryRepository(s *Store) repositories.InventoryRepository {
	return &inventoryRepository{s: s}
}

func (r *inventoryRepository) CreateStockItem(_ context.Context, _ repositories.SQLExecutor, item *models.StockItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("InventoryRepository.CreateStockItem"); err != nil {
		return err
	}
	for _, existing := range r.s.data.stockItems {
		if strings.EqualFold(existing.Name, strings.TrimSpace(item.Name)) {
			return fmt.Errorf("%w: stock item name %q", repositories.ErrDuplicateKey, item.Name)
		}
	}
	r.s.data.nextStockItemID++
	item.ID = r.s.data.nextStockItemID
	r.s.data.stockItems[item.ID] = *item
	return nil
}

func (r *inventoryRepository) GetStockItem(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.StockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.data.stockItems[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &item, nil
}

func (r *inventoryRepository) FindStockItemByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.StockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, item := range r.s.data.stockItems {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) {
			found := item
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *inventoryRepository) ListStockItems(_ context.Context, _ repositories.SQLExecutor) ([]models.StockItem, error) {
	return r.list(func(models.StockItem) bool { return true })
}

func (r *inventoryRepository) ListLowStockItems(_ context.Context, _ repositories.SQLExecutor) ([]models.StockItem, error) {
	return r.list(func(item models.StockItem) bool { return item.IsLow() })
}

func (r *inventoryRepository) list(keep func(models.StockItem) bool) ([]models.StockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := []models.StockItem{}
	for _, item := range r.s.data.stockItems {
		if keep(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *inventoryRepository) GetStockItemsByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int64) (map[int64]models.StockItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("InventoryRepository.GetStockItemsByIDs"); err != nil {
		return nil, err
	}
	result := make(map[int64]models.StockItem, len(ids))
	for _, id := range ids {
		if item, ok := r.s.data.stockItems[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

func (r *inventoryRepository) AdjustQuantity(_ context.Context, _ repositories.SQLExecutor, id int64, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("InventoryRepository.AdjustQuantity"); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	item, ok := r.s.data.stockItems[id]
	if !ok {
		return decimal.Zero, decimal.Zero, repositories.ErrNotFound
	}
	next := item.Quantity.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: stock item %d would go negative", repositories.ErrCheckViolation, id)
	}
	previous := item.Quantity
	item.Quantity = next
	item.UpdatedAt = updatedAt
	r.s.data.stockItems[id] = item
	return previous, next, nil
}

func (r *inventoryRepository) CreateMovement(_ context.Context, _ repositories.SQLExecutor, movement *models.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("InventoryRepository.CreateMovement"); err != nil {
		return err
	}
	if _, ok := r.s.data.stockItems[movement.StockItemID]; !ok {
		return fmt.Errorf("%w: stock item %d", repositories.ErrNotFound, movement.StockItemID)
	}
	r.s.data.nextMovementID++
	movement.ID = r.s.data.nextMovementID
	r.s.data.movements = append(r.s.data.movements, *movement)
	return nil
}

func (r *inventoryRepository) ListMovements(_ context.Context, _ repositories.SQLExecutor, stockItemID *int64, movementType *string, pageNum, pageSize int) ([]models.StockMovement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []models.StockMovement{}
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if stockItemID != nil && m.StockItemID != *stockItemID {
			continue
		}
		if movementType != nil && *movementType != "" && m.MovementType != *movementType {
			continue
		}
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	start, end := page(len(matched), pageNum, pageSize)
	return matched[start:end], len(matched), nil
}
