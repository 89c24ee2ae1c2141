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

// CreateStockItemRequest DTO
type CreateStockItemRequest struct {
	Name             string          `json:"name" binding:"required"`
	Category         string          `json:"category"`
	Unit             string          `json:"unit" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// AdjustStockRequest DTO. A negative delta consumes stock.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

// RestockRequest DTO
type RestockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// RestockResult is the outcome of a restock: the updated item and the expense recorded for it.
type RestockResult struct {
	StockItem *models.StockItem       `json:"stock_item"`
	Expense   *models.FinancialRecord `json:"expense,omitempty"`
}

// InventoryService manages stock items and their quantities.
type InventoryService interface {
	CreateStockItem(ctx context.Context, req CreateStockItemRequest) (*models.StockItem, error)
	GetStockItem(ctx context.Context, id int64) (*models.StockItem, error)
	ListStockItems(ctx context.Context) ([]models.StockItem, error)
	ListLowStock(ctx context.Context) ([]models.StockItem, error)

	AdjustStock(ctx context.Context, stockItemID int64, req AdjustStockRequest, staffID *int64) (*models.StockItem, error)
	Restock(ctx context.Context, stockItemID int64, req RestockRequest, staffID *int64) (*RestockResult, error)
	ListMovements(ctx context.Context, stockItemID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type inventoryService struct {
	store          repositories.TxRunner
	inventoryRepo  repositories.InventoryRepository
	financeService FinanceService
	clock          Clock
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(store repositories.TxRunner, ir repositories.InventoryRepository, fs FinanceService, clock Clock) InventoryService {
	return &inventoryService{store: store, inventoryRepo: ir, financeService: fs, clock: clock}
}

func (s *inventoryService) CreateStockItem(ctx context.Context, req CreateStockItemRequest) (*models.StockItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: stock item name cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(req.Unit) == "" {
		return nil, fmt.Errorf("%w: stock item unit cannot be empty", ErrValidation)
	}
	if req.Quantity.IsNegative() || req.ReorderThreshold.IsNegative() || req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: quantity, reorder threshold and unit price cannot be negative", ErrValidation)
	}

	now := s.clock.Now()
	item := &models.StockItem{
		Name:             name,
		Category:         req.Category,
		Unit:             req.Unit,
		Quantity:         req.Quantity,
		ReorderThreshold: req.ReorderThreshold,
		UnitPrice:        req.UnitPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.inventoryRepo.CreateStockItem(ctx, s.store.DB(), item); err != nil {
		return nil, repoError("creating stock item", err, ErrStockItemNotFound)
	}
	return item, nil
}

func (s *inventoryService) GetStockItem(ctx context.Context, id int64) (*models.StockItem, error) {
	item, err := s.inventoryRepo.GetStockItem(ctx, s.store.DB(), id)
	if err != nil {
		return nil, repoError("loading stock item", err, fmt.Errorf("%w: %d", ErrStockItemNotFound, id))
	}
	return item, nil
}

func (s *inventoryService) ListStockItems(ctx context.Context) ([]models.StockItem, error) {
	items, err := s.inventoryRepo.ListStockItems(ctx, s.store.DB())
	if err != nil {
		return nil, storageError("listing stock items", err)
	}
	return items, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]models.StockItem, error) {
	items, err := s.inventoryRepo.ListLowStockItems(ctx, s.store.DB())
	if err != nil {
		return nil, storageError("listing low stock items", err)
	}
	return items, nil
}

// AdjustStock applies delta atomically. The result may not go below zero.
func (s *inventoryService) AdjustStock(ctx context.Context, stockItemID int64, req AdjustStockRequest, staffID *int64) (*models.StockItem, error) {
	if req.Delta.IsZero() {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrValidation)
	}
	movementType := models.MovementTypeAdjustment
	if req.Delta.IsNegative() {
		movementType = models.MovementTypeConsumption
	}

	var updated *models.StockItem
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		item, err := s.applyDelta(ctx, exec, stockItemID, req.Delta, movementType, req.Reason, staffID)
		updated = item
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("stock_item_id", stockItemID).Str("delta", req.Delta.String()).Str("type", movementType).Msg("Stock adjusted")
	return updated, nil
}

// Restock adds stock and records the matching expense in one unit of work.
func (s *inventoryService) Restock(ctx context.Context, stockItemID int64, req RestockRequest, staffID *int64) (*RestockResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: restock quantity must be positive", ErrValidation)
	}

	result := &RestockResult{}
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		item, err := s.applyDelta(ctx, exec, stockItemID, req.Quantity, models.MovementTypeRestock, "Restock", staffID)
		if err != nil {
			return err
		}
		result.StockItem = item

		amount := req.Quantity.Mul(item.UnitPrice)
		if !amount.IsPositive() {
			log.Warn().Int64("stock_item_id", stockItemID).Msg("Restocked item has no unit price; no expense recorded")
			return nil
		}
		description := fmt.Sprintf("Restock: %s x %s", req.Quantity.String(), item.Name)
		record, err := s.financeService.Append(ctx, exec, models.RecordCategoryExpense, amount, description)
		if err != nil {
			return err
		}
		result.Expense = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("stock_item_id", stockItemID).Str("quantity", req.Quantity.String()).Msg("Stock item restocked")
	return result, nil
}

func (s *inventoryService) applyDelta(ctx context.Context, exec repositories.SQLExecutor, stockItemID int64, delta decimal.Decimal, movementType, reason string, staffID *int64) (*models.StockItem, error) {
	now := s.clock.Now()
	previous, current, err := s.inventoryRepo.AdjustQuantity(ctx, exec, stockItemID, delta, now)
	if err != nil {
		if errors.Is(err, repositories.ErrCheckViolation) {
			return nil, fmt.Errorf("%w: stock item %d cannot absorb %s", ErrInsufficientStock, stockItemID, delta.String())
		}
		return nil, repoError("adjusting stock", err, fmt.Errorf("%w: %d", ErrStockItemNotFound, stockItemID))
	}
	movement := &models.StockMovement{
		StockItemID:      stockItemID,
		StaffID:          staffID,
		MovementType:     movementType,
		Delta:            delta,
		PreviousQuantity: previous,
		NewQuantity:      current,
		Reason:           models.NewNullString(reason),
		CreatedAt:        now,
	}
	if err := s.inventoryRepo.CreateMovement(ctx, exec, movement); err != nil {
		return nil, repoError("recording stock movement", err, fmt.Errorf("%w: %d", ErrStockItemNotFound, stockItemID))
	}
	item, err := s.inventoryRepo.GetStockItem(ctx, exec, stockItemID)
	if err != nil {
		return nil, repoError("reloading stock item", err, fmt.Errorf("%w: %d", ErrStockItemNotFound, stockItemID))
	}
	return item, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, stockItemID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	movements, total, err := s.inventoryRepo.ListMovements(ctx, s.store.DB(), stockItemID, movementType, page, pageSize)
	if err != nil {
		return nil, 0, storageError("listing stock movements", err)
	}
	return movements, total, nil
}
