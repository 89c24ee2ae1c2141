// Package memory provides in-process implementations of the repository
// interfaces. A Store keeps every table in maps and gives WithinTx
// all-or-nothing semantics by snapshotting state on begin and restoring it
// when the unit of work fails.
package memory

import (
	"context"
	"sync"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
)

// Store is the shared state behind all in-memory repositories.
type Store struct {
	txMu sync.Mutex // serializes units of work

	mu       sync.RWMutex
	data     *state
	failures map[string]error
}

type state struct {
	stockItems  map[int64]models.StockItem
	movements   []models.StockMovement
	definitions map[int64]models.PreparationUnitDefinition
	dishes      map[int64]models.DishDefinition
	orders      map[string]models.Order
	tables      map[string]models.Table
	records     []models.FinancialRecord
	users       map[int64]models.User

	nextStockItemID  int64
	nextMovementID   int64
	nextDefinitionID int64
	nextDishID       int64
	nextUnitID       int64
	nextTableID      int64
	nextRecordID     int64
	nextUserID       int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		data: &state{
			stockItems:  map[int64]models.StockItem{},
			definitions: map[int64]models.PreparationUnitDefinition{},
			dishes:      map[int64]models.DishDefinition{},
			orders:      map[string]models.Order{},
			tables:      map[string]models.Table{},
			users:       map[int64]models.User{},
		},
		failures: map[string]error{},
	}
}

// FailNext makes the next call of the named repository operation (for example
// "FinanceRepository.CreateRecord") return err instead of touching state.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// takeFailure must be called with mu held for writing.
func (s *Store) takeFailure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

// DB returns nil: in-memory repositories ignore the executor.
func (s *Store) DB() repositories.SQLExecutor {
	return nil
}

// WithinTx runs fn as one unit of work. State changes made by fn are discarded
// when it returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (st *state) clone() *state {
	c := *st

	c.stockItems = make(map[int64]models.StockItem, len(st.stockItems))
	for k, v := range st.stockItems {
		c.stockItems[k] = v
	}
	c.movements = append([]models.StockMovement(nil), st.movements...)

	c.definitions = make(map[int64]models.PreparationUnitDefinition, len(st.definitions))
	for k, v := range st.definitions {
		c.definitions[k] = cloneDefinition(v)
	}
	c.dishes = make(map[int64]models.DishDefinition, len(st.dishes))
	for k, v := range st.dishes {
		c.dishes[k] = cloneDish(v)
	}
	c.orders = make(map[string]models.Order, len(st.orders))
	for k, v := range st.orders {
		c.orders[k] = cloneOrder(v)
	}
	c.tables = make(map[string]models.Table, len(st.tables))
	for k, v := range st.tables {
		c.tables[k] = v
	}
	c.records = append([]models.FinancialRecord(nil), st.records...)
	c.users = make(map[int64]models.User, len(st.users))
	for k, v := range st.users {
		c.users[k] = v
	}
	return &c
}

func cloneDefinition(d models.PreparationUnitDefinition) models.PreparationUnitDefinition {
	d.Ingredients = append([]models.IngredientRequirement{}, d.Ingredients...)
	return d
}

func cloneDish(d models.DishDefinition) models.DishDefinition {
	d.PreparationUnitIDs = append([]int64{}, d.PreparationUnitIDs...)
	return d
}

func cloneItem(it models.OrderItem) models.OrderItem {
	it.Units = append([]models.PreparationUnitInstance{}, it.Units...)
	return it
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = cloneItem(it)
	}
	o.Items = items
	return o
}

// page returns the bounds of a 1-based page over n elements.
// A non-positive pageSize returns everything.
func page(n, pageNum, pageSize int) (int, int) {
	if pageSize <= 0 {
		return 0, n
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

// NewSet returns every repository backed by s.
func NewSet(s *Store) repositories.Set {
	return repositories.Set{
		Auth:      NewAuthRepository(s),
		Catalog:   NewCatalogRepository(s),
		Inventory: NewInventoryRepository(s),
		Orders:    NewOrderRepository(s),
		Tables:    NewTableRepository(s),
		Finance:   NewFinanceRepository(s),
	}
}
