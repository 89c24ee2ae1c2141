package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"restaurant_ops_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// CatalogRepository defines the interface for preparation unit definitions and dishes.
type CatalogRepository interface {
	// Preparation unit definitions
	CreateDefinition(ctx context.Context, exec SQLExecutor, def *models.PreparationUnitDefinition) error
	UpdateDefinition(ctx context.Context, exec SQLExecutor, def *models.PreparationUnitDefinition) error
	GetDefinition(ctx context.Context, exec SQLExecutor, id int64) (*models.PreparationUnitDefinition, error)
	FindDefinitionByName(ctx context.Context, exec SQLExecutor, name string) (*models.PreparationUnitDefinition, error)
	ListDefinitions(ctx context.Context, exec SQLExecutor) ([]models.PreparationUnitDefinition, error)
	GetDefinitionsByIDs(ctx context.Context, exec SQLExecutor, ids []int64) (map[int64]models.PreparationUnitDefinition, error)

	// Dishes
	CreateDish(ctx context.Context, exec SQLExecutor, dish *models.DishDefinition) error
	UpdateDish(ctx context.Context, exec SQLExecutor, dish *models.DishDefinition) error
	GetDish(ctx context.Context, exec SQLExecutor, id int64) (*models.DishDefinition, error)
	FindDishByName(ctx context.Context, exec SQLExecutor, name string) (*models.DishDefinition, error)
	ListDishes(ctx context.Context, exec SQLExecutor, publicOnly bool) ([]models.DishDefinition, error)
}

type catalogRepository struct{}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepository{}
}

// --- Preparation unit definitions ---

const definitionColumns = `id, name, description, estimated_minutes, created_at, updated_at`

func (r *catalogRepository) CreateDefinition(ctx context.Context, exec SQLExecutor, def *models.PreparationUnitDefinition) error {
	query := `INSERT INTO preparation_units (name, description, estimated_minutes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if err := exec.QueryRowxContext(ctx, query,
		def.Name, def.Description, def.EstimatedMinutes, def.CreatedAt, def.UpdatedAt,
	).Scan(&def.ID); err != nil {
		return mapPQError(err, "creating preparation unit")
	}
	return r.insertIngredients(ctx, exec, def)
}

func (r *catalogRepository) UpdateDefinition(ctx context.Context, exec SQLExecutor, def *models.PreparationUnitDefinition) error {
	query := `UPDATE preparation_units SET name = $1, description = $2, estimated_minutes = $3, updated_at = $4 WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, def.Name, def.Description, def.EstimatedMinutes, def.UpdatedAt, def.ID)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("updating preparation unit %d", def.ID))
	}
	if err := requireAffected(result, fmt.Sprintf("updating preparation unit %d", def.ID)); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM preparation_unit_ingredients WHERE definition_id = $1`, def.ID); err != nil {
		return fmt.Errorf("%w: clearing ingredients of preparation unit %d: %v", ErrDatabaseError, def.ID, err)
	}
	return r.insertIngredients(ctx, exec, def)
}

func (r *catalogRepository) insertIngredients(ctx context.Context, exec SQLExecutor, def *models.PreparationUnitDefinition) error {
	query := `INSERT INTO preparation_unit_ingredients (definition_id, stock_item_id, quantity, wastage_percent, position)
	          VALUES ($1, $2, $3, $4, $5)`
	for i := range def.Ingredients {
		ing := &def.Ingredients[i]
		ing.DefinitionID = def.ID
		ing.Position = i
		if _, err := exec.ExecContext(ctx, query, def.ID, ing.StockItemID, ing.Quantity, ing.WastagePercent, ing.Position); err != nil {
			return mapPQError(err, fmt.Sprintf("adding ingredient to preparation unit %d", def.ID))
		}
	}
	return nil
}

func (r *catalogRepository) GetDefinition(ctx context.Context, exec SQLExecutor, id int64) (*models.PreparationUnitDefinition, error) {
	def := &models.PreparationUnitDefinition{}
	err := sqlx.GetContext(ctx, exec, def, `SELECT `+definitionColumns+` FROM preparation_units WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting preparation unit %d: %v", ErrDatabaseError, id, err)
	}
	ingredients, err := r.loadIngredients(ctx, exec, []int64{id})
	if err != nil {
		return nil, err
	}
	def.Ingredients = ingredients[id]
	return def, nil
}

func (r *catalogRepository) FindDefinitionByName(ctx context.Context, exec SQLExecutor, name string) (*models.PreparationUnitDefinition, error) {
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, `SELECT id FROM preparation_units WHERE LOWER(name) = LOWER($1)`, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding preparation unit by name: %v", ErrDatabaseError, err)
	}
	return r.GetDefinition(ctx, exec, id)
}

func (r *catalogRepository) ListDefinitions(ctx context.Context, exec SQLExecutor) ([]models.PreparationUnitDefinition, error) {
	defs := []models.PreparationUnitDefinition{}
	if err := sqlx.SelectContext(ctx, exec, &defs, `SELECT `+definitionColumns+` FROM preparation_units ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%w: listing preparation units: %v", ErrDatabaseError, err)
	}
	if err := r.attachIngredients(ctx, exec, defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *catalogRepository) GetDefinitionsByIDs(ctx context.Context, exec SQLExecutor, ids []int64) (map[int64]models.PreparationUnitDefinition, error) {
	result := make(map[int64]models.PreparationUnitDefinition, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+definitionColumns+` FROM preparation_units WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: building preparation unit query: %v", ErrDatabaseError, err)
	}
	defs := []models.PreparationUnitDefinition{}
	if err := sqlx.SelectContext(ctx, exec, &defs, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%w: getting preparation units by ids: %v", ErrDatabaseError, err)
	}
	if err := r.attachIngredients(ctx, exec, defs); err != nil {
		return nil, err
	}
	for _, d := range defs {
		result[d.ID] = d
	}
	return result, nil
}

func (r *catalogRepository) attachIngredients(ctx context.Context, exec SQLExecutor, defs []models.PreparationUnitDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	ids := make([]int64, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	ingredients, err := r.loadIngredients(ctx, exec, ids)
	if err != nil {
		return err
	}
	for i := range defs {
		defs[i].Ingredients = ingredients[defs[i].ID]
	}
	return nil
}

func (r *catalogRepository) loadIngredients(ctx context.Context, exec SQLExecutor, defIDs []int64) (map[int64][]models.IngredientRequirement, error) {
	query, args, err := sqlx.In(`SELECT definition_id, stock_item_id, quantity, wastage_percent, position
	    FROM preparation_unit_ingredients WHERE definition_id IN (?) ORDER BY definition_id, position`, defIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: building ingredient query: %v", ErrDatabaseError, err)
	}
	rows := []models.IngredientRequirement{}
	if err := sqlx.SelectContext(ctx, exec, &rows, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%w: loading ingredients: %v", ErrDatabaseError, err)
	}
	result := make(map[int64][]models.IngredientRequirement, len(defIDs))
	for _, ing := range rows {
		result[ing.DefinitionID] = append(result[ing.DefinitionID], ing)
	}
	return result, nil
}

// --- Dishes ---

const dishColumns = `id, name, category, price, visibility, created_at, updated_at`

func (r *catalogRepository) CreateDish(ctx context.Context, exec SQLExecutor, dish *models.DishDefinition) error {
	query := `INSERT INTO dishes (name, category, price, visibility, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if err := exec.QueryRowxContext(ctx, query,
		dish.Name, dish.Category, dish.Price, dish.Visibility, dish.CreatedAt, dish.UpdatedAt,
	).Scan(&dish.ID); err != nil {
		return mapPQError(err, "creating dish")
	}
	return r.insertDishUnits(ctx, exec, dish)
}

func (r *catalogRepository) UpdateDish(ctx context.Context, exec SQLExecutor, dish *models.DishDefinition) error {
	query := `UPDATE dishes SET name = $1, category = $2, price = $3, visibility = $4, updated_at = $5 WHERE id = $6`
	result, err := exec.ExecContext(ctx, query, dish.Name, dish.Category, dish.Price, dish.Visibility, dish.UpdatedAt, dish.ID)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("updating dish %d", dish.ID))
	}
	if err := requireAffected(result, fmt.Sprintf("updating dish %d", dish.ID)); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM dish_preparation_units WHERE dish_id = $1`, dish.ID); err != nil {
		return fmt.Errorf("%w: clearing preparation units of dish %d: %v", ErrDatabaseError, dish.ID, err)
	}
	return r.insertDishUnits(ctx, exec, dish)
}

func (r *catalogRepository) insertDishUnits(ctx context.Context, exec SQLExecutor, dish *models.DishDefinition) error {
	query := `INSERT INTO dish_preparation_units (dish_id, definition_id, position) VALUES ($1, $2, $3)`
	for pos, defID := range dish.PreparationUnitIDs {
		if _, err := exec.ExecContext(ctx, query, dish.ID, defID, pos); err != nil {
			return mapPQError(err, fmt.Sprintf("linking preparation unit %d to dish %d", defID, dish.ID))
		}
	}
	return nil
}

func (r *catalogRepository) GetDish(ctx context.Context, exec SQLExecutor, id int64) (*models.DishDefinition, error) {
	dish := &models.DishDefinition{}
	err := sqlx.GetContext(ctx, exec, dish, `SELECT `+dishColumns+` FROM dishes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting dish %d: %v", ErrDatabaseError, id, err)
	}
	dishes := []models.DishDefinition{*dish}
	if err := r.attachDishUnits(ctx, exec, dishes); err != nil {
		return nil, err
	}
	return &dishes[0], nil
}

func (r *catalogRepository) FindDishByName(ctx context.Context, exec SQLExecutor, name string) (*models.DishDefinition, error) {
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, `SELECT id FROM dishes WHERE LOWER(name) = LOWER($1)`, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding dish by name: %v", ErrDatabaseError, err)
	}
	return r.GetDish(ctx, exec, id)
}

func (r *catalogRepository) ListDishes(ctx context.Context, exec SQLExecutor, publicOnly bool) ([]models.DishDefinition, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes`
	var args []interface{}
	if publicOnly {
		query += ` WHERE visibility = $1`
		args = append(args, models.VisibilityPublic)
	}
	query += ` ORDER BY category, name`

	dishes := []models.DishDefinition{}
	if err := sqlx.SelectContext(ctx, exec, &dishes, query, args...); err != nil {
		return nil, fmt.Errorf("%w: listing dishes: %v", ErrDatabaseError, err)
	}
	if err := r.attachDishUnits(ctx, exec, dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *catalogRepository) attachDishUnits(ctx context.Context, exec SQLExecutor, dishes []models.DishDefinition) error {
	if len(dishes) == 0 {
		return nil
	}
	ids := make([]int64, len(dishes))
	for i, d := range dishes {
		ids[i] = d.ID
	}
	query, args, err := sqlx.In(`SELECT dish_id, definition_id FROM dish_preparation_units
	    WHERE dish_id IN (?) ORDER BY dish_id, position`, ids)
	if err != nil {
		return fmt.Errorf("%w: building dish unit query: %v", ErrDatabaseError, err)
	}
	links := []struct {
		DishID       int64 `db:"dish_id"`
		DefinitionID int64 `db:"definition_id"`
	}{}
	if err := sqlx.SelectContext(ctx, exec, &links, exec.Rebind(query), args...); err != nil {
		return fmt.Errorf("%w: loading dish preparation units: %v", ErrDatabaseError, err)
	}
	byDish := make(map[int64][]int64, len(dishes))
	for _, l := range links {
		byDish[l.DishID] = append(byDish[l.DishID], l.DefinitionID)
	}
	for i := range dishes {
		dishes[i].PreparationUnitIDs = byDish[dishes[i].ID]
		if dishes[i].PreparationUnitIDs == nil {
			dishes[i].PreparationUnitIDs = []int64{}
		}
	}
	return nil
}

// requireAffected turns a zero-row update or delete into ErrNotFound.
func requireAffected(result sql.Result, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
