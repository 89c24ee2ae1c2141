package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
)

type catalogRepository struct {
	s *Store
}

// NewCatalogRepository returns a CatalogRepository over the store.
func NewCatalogRepository(s *Store) repositories.CatalogRepository {
	return &catalogRepository{s: s}
}

// --- Preparation unit definitions ---

func (r *catalogRepository) checkDefinitionName(name string, selfID int64) error {
	for id, d := range r.s.data.definitions {
		if id != selfID && strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return fmt.Errorf("%w: preparation unit name %q", repositories.ErrDuplicateKey, name)
		}
	}
	return nil
}

func (r *catalogRepository) checkIngredients(def *models.PreparationUnitDefinition) error {
	for i := range def.Ingredients {
		if _, ok := r.s.data.stockItems[def.Ingredients[i].StockItemID]; !ok {
			return fmt.Errorf("%w: stock item %d", repositories.ErrNotFound, def.Ingredients[i].StockItemID)
		}
		def.Ingredients[i].DefinitionID = def.ID
		def.Ingredients[i].Position = i
	}
	return nil
}

func (r *catalogRepository) CreateDefinition(_ context.Context, _ repositories.SQLExecutor, def *models.PreparationUnitDefinition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("CatalogRepository.CreateDefinition"); err != nil {
		return err
	}
	if err := r.checkDefinitionName(def.Name, 0); err != nil {
		return err
	}
	r.s.data.nextDefinitionID++
	def.ID = r.s.data.nextDefinitionID
	if err := r.checkIngredients(def); err != nil {
		r.s.data.nextDefinitionID--
		return err
	}
	r.s.data.definitions[def.ID] = cloneDefinition(*def)
	return nil
}

func (r *catalogRepository) UpdateDefinition(_ context.Context, _ repositories.SQLExecutor, def *models.PreparationUnitDefinition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.definitions[def.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if err := r.checkDefinitionName(def.Name, def.ID); err != nil {
		return err
	}
	if err := r.checkIngredients(def); err != nil {
		return err
	}
	def.CreatedAt = existing.CreatedAt
	r.s.data.definitions[def.ID] = cloneDefinition(*def)
	return nil
}

func (r *catalogRepository) GetDefinition(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.PreparationUnitDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	def, ok := r.s.data.definitions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	def = cloneDefinition(def)
	return &def, nil
}

func (r *catalogRepository) FindDefinitionByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.PreparationUnitDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, def := range r.s.data.definitions {
		if strings.EqualFold(def.Name, strings.TrimSpace(name)) {
			found := cloneDefinition(def)
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *catalogRepository) ListDefinitions(_ context.Context, _ repositories.SQLExecutor) ([]models.PreparationUnitDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	defs := make([]models.PreparationUnitDefinition, 0, len(r.s.data.definitions))
	for _, def := range r.s.data.definitions {
		defs = append(defs, cloneDefinition(def))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

func (r *catalogRepository) GetDefinitionsByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int64) (map[int64]models.PreparationUnitDefinition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("CatalogRepository.GetDefinitionsByIDs"); err != nil {
		return nil, err
	}
	result := make(map[int64]models.PreparationUnitDefinition, len(ids))
	for _, id := range ids {
		if def, ok := r.s.data.definitions[id]; ok {
			result[id] = cloneDefinition(def)
		}
	}
	return result, nil
}

// --- Dishes ---

func (r *catalogRepository) checkDish(dish *models.DishDefinition) error {
	for id, d := range r.s.data.dishes {
		if id != dish.ID && strings.EqualFold(d.Name, strings.TrimSpace(dish.Name)) {
			return fmt.Errorf("%w: dish name %q", repositories.ErrDuplicateKey, dish.Name)
		}
	}
	for _, defID := range dish.PreparationUnitIDs {
		if _, ok := r.s.data.definitions[defID]; !ok {
			return fmt.Errorf("%w: preparation unit %d", repositories.ErrNotFound, defID)
		}
	}
	return nil
}

func (r *catalogRepository) CreateDish(_ context.Context, _ repositories.SQLExecutor, dish *models.DishDefinition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("CatalogRepository.CreateDish"); err != nil {
		return err
	}
	if err := r.checkDish(dish); err != nil {
		return err
	}
	r.s.data.nextDishID++
	dish.ID = r.s.data.nextDishID
	r.s.data.dishes[dish.ID] = cloneDish(*dish)
	return nil
}

func (r *catalogRepository) UpdateDish(_ context.Context, _ repositories.SQLExecutor, dish *models.DishDefinition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.dishes[dish.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if err := r.checkDish(dish); err != nil {
		return err
	}
	dish.CreatedAt = existing.CreatedAt
	r.s.data.dishes[dish.ID] = cloneDish(*dish)
	return nil
}

func (r *catalogRepository) GetDish(_ context.Context, _ repositories.SQLExecutor, id int64) (*models.DishDefinition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("CatalogRepository.GetDish"); err != nil {
		return nil, err
	}
	dish, ok := r.s.data.dishes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	dish = cloneDish(dish)
	return &dish, nil
}

func (r *catalogRepository) FindDishByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.DishDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, dish := range r.s.data.dishes {
		if strings.EqualFold(dish.Name, strings.TrimSpace(name)) {
			found := cloneDish(dish)
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *catalogRepository) ListDishes(_ context.Context, _ repositories.SQLExecutor, publicOnly bool) ([]models.DishDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	dishes := []models.DishDefinition{}
	for _, dish := range r.s.data.dishes {
		if publicOnly && dish.Visibility != models.VisibilityPublic {
			continue
		}
		dishes = append(dishes, cloneDish(dish))
	}
	sort.Slice(dishes, func(i, j int) bool {
		if dishes[i].Category != dishes[j].Category {
			return dishes[i].Category < dishes[j].Category
		}
		return dishes[i].Name < dishes[j].Name
	})
	return dishes, nil
}

// RemoveDefinition deletes a definition without checking references. Tests use
// it to build dangling catalog links.
func (s *Store) RemoveDefinition(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.definitions, id)
}

// RemoveStockItem deletes a stock item without checking references.
func (s *Store) RemoveStockItem(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.stockItems, id)
}
