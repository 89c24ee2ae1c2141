package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

// IngredientRequest is one stock line of a preparation unit.
type IngredientRequest struct {
	StockItemID    int64           `json:"stock_item_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	WastagePercent decimal.Decimal `json:"wastage_percent"`
}

// PreparationUnitRequest creates or replaces a preparation unit definition.
type PreparationUnitRequest struct {
	Name             string              `json:"name" binding:"required"`
	Description      string              `json:"description"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	Ingredients      []IngredientRequest `json:"ingredients"`
}

// DishRequest creates or replaces a dish.
type DishRequest struct {
	Name               string          `json:"name" binding:"required"`
	Category           string          `json:"category"`
	Price              decimal.Decimal `json:"price"`
	Visibility         string          `json:"visibility"`
	PreparationUnitIDs []int64         `json:"preparation_unit_ids"`
}

// CatalogService manages preparation unit definitions and the menu.
type CatalogService interface {
	CreatePreparationUnit(ctx context.Context, req PreparationUnitRequest) (*models.PreparationUnitDefinition, error)
	UpdatePreparationUnit(ctx context.Context, id int64, req PreparationUnitRequest) (*models.PreparationUnitDefinition, error)
	GetPreparationUnit(ctx context.Context, id int64) (*models.PreparationUnitDefinition, error)
	ListPreparationUnits(ctx context.Context) ([]models.PreparationUnitDefinition, error)

	CreateDish(ctx context.Context, req DishRequest) (*models.DishDefinition, error)
	UpdateDish(ctx context.Context, id int64, req DishRequest) (*models.DishDefinition, error)
	GetDish(ctx context.Context, id int64) (*models.DishDefinition, error)
	ListDishes(ctx context.Context, publicOnly bool) ([]models.DishDefinition, error)
}

type catalogService struct {
	store       repositories.TxRunner
	catalogRepo repositories.CatalogRepository
	clock       Clock
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(store repositories.TxRunner, cr repositories.CatalogRepository, clock Clock) CatalogService {
	return &catalogService{store: store, catalogRepo: cr, clock: clock}
}

// --- Preparation units ---

func validatePreparationUnit(req PreparationUnitRequest) ([]models.IngredientRequirement, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: preparation unit name cannot be empty", ErrValidation)
	}
	if req.EstimatedMinutes < 0 {
		return nil, fmt.Errorf("%w: estimated minutes cannot be negative", ErrValidation)
	}
	ingredients := make([]models.IngredientRequirement, 0, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		if !ing.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: ingredient %d quantity must be positive", ErrValidation, i)
		}
		if ing.WastagePercent.IsNegative() || ing.WastagePercent.GreaterThanOrEqual(hundred) {
			return nil, fmt.Errorf("%w: ingredient %d wastage must be in [0, 100)", ErrValidation, i)
		}
		ingredients = append(ingredients, models.IngredientRequirement{
			StockItemID:    ing.StockItemID,
			Quantity:       ing.Quantity,
			WastagePercent: ing.WastagePercent,
			Position:       i,
		})
	}
	return ingredients, nil
}

func (s *catalogService) CreatePreparationUnit(ctx context.Context, req PreparationUnitRequest) (*models.PreparationUnitDefinition, error) {
	ingredients, err := validatePreparationUnit(req)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	def := &models.PreparationUnitDefinition{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		EstimatedMinutes: req.EstimatedMinutes,
		Ingredients:      ingredients,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		if err := s.ensureDefinitionNameFree(ctx, exec, def.Name, 0); err != nil {
			return err
		}
		return repoError("creating preparation unit", s.catalogRepo.CreateDefinition(ctx, exec, def), ErrStockItemNotFound)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("definition_id", def.ID).Str("name", def.Name).Msg("Preparation unit created")
	return def, nil
}

func (s *catalogService) UpdatePreparationUnit(ctx context.Context, id int64, req PreparationUnitRequest) (*models.PreparationUnitDefinition, error) {
	ingredients, err := validatePreparationUnit(req)
	if err != nil {
		return nil, err
	}
	var def *models.PreparationUnitDefinition
	err = withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		existing, err := s.catalogRepo.GetDefinition(ctx, exec, id)
		if err != nil {
			return repoError("loading preparation unit", err, fmt.Errorf("%w: %d", ErrDefinitionNotFound, id))
		}
		if err := s.ensureDefinitionNameFree(ctx, exec, req.Name, id); err != nil {
			return err
		}
		existing.Name = strings.TrimSpace(req.Name)
		existing.Description = req.Description
		existing.EstimatedMinutes = req.EstimatedMinutes
		existing.Ingredients = ingredients
		existing.UpdatedAt = s.clock.Now()
		if err := s.catalogRepo.UpdateDefinition(ctx, exec, existing); err != nil {
			return repoError("updating preparation unit", err, ErrStockItemNotFound)
		}
		def = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

func (s *catalogService) ensureDefinitionNameFree(ctx context.Context, exec repositories.SQLExecutor, name string, selfID int64) error {
	existing, err := s.catalogRepo.FindDefinitionByName(ctx, exec, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return storageError("checking preparation unit name", err)
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: preparation unit %q", ErrNameConflict, name)
	}
	return nil
}

func (s *catalogService) GetPreparationUnit(ctx context.Context, id int64) (*models.PreparationUnitDefinition, error) {
	def, err := s.catalogRepo.GetDefinition(ctx, s.store.DB(), id)
	if err != nil {
		return nil, repoError("loading preparation unit", err, fmt.Errorf("%w: %d", ErrDefinitionNotFound, id))
	}
	return def, nil
}

func (s *catalogService) ListPreparationUnits(ctx context.Context) ([]models.PreparationUnitDefinition, error) {
	defs, err := s.catalogRepo.ListDefinitions(ctx, s.store.DB())
	if err != nil {
		return nil, storageError("listing preparation units", err)
	}
	return defs, nil
}

// --- Dishes ---

func validateDish(req *DishRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: dish name cannot be empty", ErrValidation)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: dish price cannot be negative", ErrValidation)
	}
	switch req.Visibility {
	case "":
		req.Visibility = models.VisibilityPublic
	case models.VisibilityPublic, models.VisibilityInternal:
	default:
		return fmt.Errorf("%w: unknown visibility %q", ErrValidation, req.Visibility)
	}
	if req.PreparationUnitIDs == nil {
		req.PreparationUnitIDs = []int64{}
	}
	return nil
}

func (s *catalogService) CreateDish(ctx context.Context, req DishRequest) (*models.DishDefinition, error) {
	if err := validateDish(&req); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	dish := &models.DishDefinition{
		Name:               strings.TrimSpace(req.Name),
		Category:           req.Category,
		Price:              req.Price,
		Visibility:         req.Visibility,
		PreparationUnitIDs: req.PreparationUnitIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		if err := s.ensureDishNameFree(ctx, exec, dish.Name, 0); err != nil {
			return err
		}
		return repoError("creating dish", s.catalogRepo.CreateDish(ctx, exec, dish), ErrDefinitionNotFound)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("dish_id", dish.ID).Str("name", dish.Name).Msg("Dish created")
	return dish, nil
}

func (s *catalogService) UpdateDish(ctx context.Context, id int64, req DishRequest) (*models.DishDefinition, error) {
	if err := validateDish(&req); err != nil {
		return nil, err
	}
	var dish *models.DishDefinition
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		existing, err := s.catalogRepo.GetDish(ctx, exec, id)
		if err != nil {
			return repoError("loading dish", err, fmt.Errorf("%w: %d", ErrDishNotFound, id))
		}
		if err := s.ensureDishNameFree(ctx, exec, req.Name, id); err != nil {
			return err
		}
		existing.Name = strings.TrimSpace(req.Name)
		existing.Category = req.Category
		existing.Price = req.Price
		existing.Visibility = req.Visibility
		existing.PreparationUnitIDs = req.PreparationUnitIDs
		existing.UpdatedAt = s.clock.Now()
		if err := s.catalogRepo.UpdateDish(ctx, exec, existing); err != nil {
			return repoError("updating dish", err, ErrDefinitionNotFound)
		}
		dish = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dish, nil
}

func (s *catalogService) ensureDishNameFree(ctx context.Context, exec repositories.SQLExecutor, name string, selfID int64) error {
	existing, err := s.catalogRepo.FindDishByName(ctx, exec, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return storageError("checking dish name", err)
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: dish %q", ErrNameConflict, name)
	}
	return nil
}

func (s *catalogService) GetDish(ctx context.Context, id int64) (*models.DishDefinition, error) {
	dish, err := s.catalogRepo.GetDish(ctx, s.store.DB(), id)
	if err != nil {
		return nil, repoError("loading dish", err, fmt.Errorf("%w: %d", ErrDishNotFound, id))
	}
	return dish, nil
}

func (s *catalogService) ListDishes(ctx context.Context, publicOnly bool) ([]models.DishDefinition, error) {
	dishes, err := s.catalogRepo.ListDishes(ctx, s.store.DB(), publicOnly)
	if err != nil {
		return nil, storageError("listing dishes", err)
	}
	return dishes, nil
}
