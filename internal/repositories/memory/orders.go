package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
)

type orderRepository struct {
	s *Store
}

// NewOrderRepository returns an OrderRepository over the store.
func NewOrderRepository(s *Store) repositories.OrderRepository {
	return &orderRepository{s: s}
}

func (r *orderRepository) NextOrderNumber(_ context.Context, _ repositories.SQLExecutor) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	highest := 0
	for id := range r.s.data.orders {
		if !strings.HasPrefix(id, "ORD") {
			continue
		}
		n, err := strconv.Atoi(id[3:])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func (r *orderRepository) CreateOrder(_ context.Context, _ repositories.SQLExecutor, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("OrderRepository.CreateOrder"); err != nil {
		return err
	}
	if _, exists := r.s.data.orders[order.ID]; exists {
		return fmt.Errorf("%w: order %s", repositories.ErrDuplicateKey, order.ID)
	}
	stored := *order
	stored.Items = []models.OrderItem{}
	r.s.data.orders[order.ID] = stored
	return nil
}

func (r *orderRepository) UpdateOrder(_ context.Context, _ repositories.SQLExecutor, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("OrderRepository.UpdateOrder"); err != nil {
		return err
	}
	stored, ok := r.s.data.orders[order.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.TableName = order.TableName
	stored.ServerID = order.ServerID
	stored.Status = order.Status
	stored.Total = order.Total
	stored.PartySize = order.PartySize
	stored.PaymentMethod = order.PaymentMethod
	stored.FinalAmount = order.FinalAmount
	stored.UpdatedAt = order.UpdatedAt
	r.s.data.orders[order.ID] = stored
	return nil
}

func (r *orderRepository) GetOrder(_ context.Context, _ repositories.SQLExecutor, orderID string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("OrderRepository.GetOrder"); err != nil {
		return nil, err
	}
	order, ok := r.s.data.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	order = cloneOrder(order)
	return &order, nil
}

func (r *orderRepository) ListOrders(_ context.Context, _ repositories.SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var dayStart, dayEnd time.Time
	filterByDate := false
	if filters.Date != nil && *filters.Date != "" {
		if parsed, err := time.Parse("2006-01-02", *filters.Date); err == nil {
			dayStart = parsed
			dayEnd = parsed.AddDate(0, 0, 1)
			filterByDate = true
		}
	}

	matched := []models.Order{}
	for _, o := range r.s.data.orders {
		if filters.Status != nil && *filters.Status != "" && string(o.Status) != *filters.Status {
			continue
		}
		if filters.TableName != nil && *filters.TableName != "" && o.TableName != *filters.TableName {
			continue
		}
		if filters.ServerID != nil && o.ServerID != *filters.ServerID {
			continue
		}
		if filterByDate && (o.CreatedAt.Before(dayStart) || !o.CreatedAt.Before(dayEnd)) {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	start, end := page(len(matched), filters.Page, filters.PageSize)
	return matched[start:end], len(matched), nil
}

func (r *orderRepository) ListActiveOrders(_ context.Context, _ repositories.SQLExecutor) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	active := []models.Order{}
	for _, o := range r.s.data.orders {
		if !o.Status.IsFinal() {
			active = append(active, cloneOrder(o))
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].ID < active[j].ID
	})
	return active, nil
}

func (r *orderRepository) DeleteOrder(_ context.Context, _ repositories.SQLExecutor, orderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.orders[orderID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.data.orders, orderID)
	return nil
}

func (r *orderRepository) CreateItem(_ context.Context, _ repositories.SQLExecutor, item *models.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("OrderRepository.CreateItem"); err != nil {
		return err
	}
	order, ok := r.s.data.orders[item.OrderID]
	if !ok {
		return fmt.Errorf("%w: order %s", repositories.ErrNotFound, item.OrderID)
	}
	if order.FindItem(item.ID) != nil {
		return fmt.Errorf("%w: item %d of order %s", repositories.ErrDuplicateKey, item.ID, item.OrderID)
	}
	for i := range item.Units {
		r.s.data.nextUnitID++
		item.Units[i].ID = r.s.data.nextUnitID
		item.Units[i].OrderID = item.OrderID
		item.Units[i].ItemID = item.ID
	}
	order.Items = append(order.Items, cloneItem(*item))
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].ID < order.Items[j].ID })
	r.s.data.orders[item.OrderID] = order
	return nil
}

func (r *orderRepository) UpdateItem(_ context.Context, _ repositories.SQLExecutor, item *models.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.data.orders[item.OrderID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored := order.FindItem(item.ID)
	if stored == nil {
		return repositories.ErrNotFound
	}
	stored.Quantity = item.Quantity
	stored.Note = item.Note
	r.s.data.orders[item.OrderID] = order
	return nil
}

func (r *orderRepository) DeleteItem(_ context.Context, _ repositories.SQLExecutor, orderID string, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.data.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := order.Items[:0]
	found := false
	for _, it := range order.Items {
		if it.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return repositories.ErrNotFound
	}
	order.Items = kept
	r.s.data.orders[orderID] = order
	return nil
}

func (r *orderRepository) UpdateUnit(_ context.Context, _ repositories.SQLExecutor, unit *models.PreparationUnitInstance, prev models.PreparationUnitInstance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("OrderRepository.UpdateUnit"); err != nil {
		return err
	}
	order, ok := r.s.data.orders[unit.OrderID]
	if !ok {
		return repositories.ErrNotFound
	}
	item := order.FindItem(unit.ItemID)
	if item == nil {
		return repositories.ErrNotFound
	}
	stored := item.FindUnit(unit.ID)
	if stored == nil {
		return repositories.ErrNotFound
	}
	if stored.Status != prev.Status || !sameCook(stored.CookID, prev.CookID) {
		return fmt.Errorf("%w: preparation unit %d", repositories.ErrStaleUpdate, unit.ID)
	}
	stored.Status = unit.Status
	stored.CookID = unit.CookID
	stored.UpdatedAt = unit.UpdatedAt
	r.s.data.orders[unit.OrderID] = order
	return nil
}

func sameCook(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
