package services

import (
	"context"
	"errors"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// menuAvailabilityWorkers bounds concurrent dish evaluations.
const menuAvailabilityWorkers = 8

// AvailabilityService answers whether dishes can currently be produced from stock.
type AvailabilityService interface {
	IsDishAvailable(ctx context.Context, dishID int64) (bool, error)
	ListMenuAvailability(ctx context.Context, publicOnly bool) ([]models.DishAvailability, error)
}

type availabilityService struct {
	store         repositories.TxRunner
	catalogRepo   repositories.CatalogRepository
	inventoryRepo repositories.InventoryRepository
}

// NewAvailabilityService creates a new instance of AvailabilityService.
func NewAvailabilityService(store repositories.TxRunner, cr repositories.CatalogRepository, ir repositories.InventoryRepository) AvailabilityService {
	return &availabilityService{store: store, catalogRepo: cr, inventoryRepo: ir}
}

// IsDishAvailable requires every ingredient of every referenced preparation unit
// to be in stock at its stated (not wastage-adjusted) quantity. Links that do not
// resolve impose no constraint.
func (s *availabilityService) IsDishAvailable(ctx context.Context, dishID int64) (bool, error) {
	dish, err := s.catalogRepo.GetDish(ctx, s.store.DB(), dishID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Debug().Int64("dish_id", dishID).Msg("Availability requested for unknown dish; treating as unconstrained")
			return true, nil
		}
		return false, storageError("loading dish", err)
	}
	return s.evaluate(ctx, dish)
}

func (s *availabilityService) evaluate(ctx context.Context, dish *models.DishDefinition) (bool, error) {
	exec := s.store.DB()
	for _, defID := range dish.PreparationUnitIDs {
		def, err := s.catalogRepo.GetDefinition(ctx, exec, defID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				log.Debug().Int64("dish_id", dish.ID).Int64("definition_id", defID).Msg("Dish references missing preparation unit; skipped")
				continue
			}
			return false, storageError("loading preparation unit", err)
		}
		for _, ing := range def.Ingredients {
			item, err := s.inventoryRepo.GetStockItem(ctx, exec, ing.StockItemID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					log.Debug().Int64("definition_id", defID).Int64("stock_item_id", ing.StockItemID).Msg("Preparation unit references missing stock item; skipped")
					continue
				}
				return false, storageError("loading stock item", err)
			}
			if item.Quantity.LessThan(ing.Quantity) {
				return false, nil
			}
		}
	}
	return true, nil
}

// ListMenuAvailability evaluates every dish concurrently.
func (s *availabilityService) ListMenuAvailability(ctx context.Context, publicOnly bool) ([]models.DishAvailability, error) {
	dishes, err := s.catalogRepo.ListDishes(ctx, s.store.DB(), publicOnly)
	if err != nil {
		return nil, storageError("listing dishes", err)
	}

	result := make([]models.DishAvailability, len(dishes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(menuAvailabilityWorkers)
	for i := range dishes {
		g.Go(func() error {
			available, err := s.evaluate(gctx, &dishes[i])
			if err != nil {
				return err
			}
			result[i] = models.DishAvailability{DishID: dishes[i].ID, Name: dishes[i].Name, Available: available}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
