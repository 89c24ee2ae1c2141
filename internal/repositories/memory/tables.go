package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
)

type tableRepository struct {
	s *Store
}

// NewTableRepository returns a TableRepository over the store.
func NewTableRepository(s *Store) repositories.TableRepository {
	return &tableRepository{s: s}
}

func (r *tableRepository) CreateTable(_ context.Context, _ repositories.SQLExecutor, table *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.data.tables[table.Name]; exists {
		return fmt.Errorf("%w: table %q", repositories.ErrDuplicateKey, table.Name)
	}
	r.s.data.nextTableID++
	table.ID = r.s.data.nextTableID
	r.s.data.tables[table.Name] = *table
	return nil
}

func (r *tableRepository) GetTableByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.Table, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	table, ok := r.s.data.tables[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &table, nil
}

func (r *tableRepository) ListTables(_ context.Context, _ repositories.SQLExecutor, floor *string) ([]models.Table, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tables := []models.Table{}
	for _, t := range r.s.data.tables {
		if floor != nil && *floor != "" && t.Floor != *floor {
			continue
		}
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Floor != tables[j].Floor {
			return tables[i].Floor < tables[j].Floor
		}
		return tables[i].Name < tables[j].Name
	})
	return tables, nil
}

func (r *tableRepository) SetOccupancy(_ context.Context, _ repositories.SQLExecutor, name string, status models.TableStatus, orderID *string, partySize *int, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("TableRepository.SetOccupancy"); err != nil {
		return err
	}
	table, ok := r.s.data.tables[name]
	if !ok {
		return repositories.ErrNotFound
	}
	table.Status = status
	table.OrderID = orderID
	table.PartySize = partySize
	table.UpdatedAt = updatedAt
	r.s.data.tables[name] = table
	return nil
}
