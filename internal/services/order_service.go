package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- Data Transfer Objects (DTOs) ---

// OrderItemRequest is one requested line. ID is set when editing a line that
// already exists on the order.
type OrderItemRequest struct {
	ID       *int64 `json:"id"`
	DishID   int64  `json:"dish_id" binding:"required"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// CreateOrderRequest is used for creating a new order.
type CreateOrderRequest struct {
	TableName string             `json:"table_name"`
	ServerID  int64              `json:"server_id"`
	PartySize int                `json:"party_size"`
	Items     []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest replaces the table, server, party size and items of an order.
type UpdateOrderRequest struct {
	TableName string             `json:"table_name"`
	ServerID  int64              `json:"server_id"`
	PartySize int                `json:"party_size"`
	Items     []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest is used for updating the status of an order.
type UpdateOrderStatusRequest struct {
	Status        string           `json:"status" binding:"required"`
	PaymentMethod *string          `json:"payment_method"`
	FinalAmount   *decimal.Decimal `json:"final_amount"`
}

// SettleOrderRequest closes an order with the amount actually charged.
type SettleOrderRequest struct {
	PaymentMethod string          `json:"payment_method"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
}

// UnitStatusRequest moves a preparation unit instance, optionally assigning a cook first.
type UnitStatusRequest struct {
	Status string `json:"status" binding:"required"`
	CookID *int64 `json:"cook_id"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, req UpdateOrderStatusRequest) (*models.Order, error)
	SettleOrder(ctx context.Context, orderID string, req SettleOrderRequest) (*models.Order, error)
	SetPreparationUnitStatus(ctx context.Context, orderID string, itemID, unitID int64, req UnitStatusRequest) (*models.PreparationUnitInstance, error)

	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
	PreviewPartialCost(ctx context.Context, orderID string) (*models.PartialCost, error)
	KitchenQueue(ctx context.Context) ([]models.KitchenTicket, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// --- orderService Implementation ---
type orderService struct {
	store          repositories.TxRunner
	orderRepo      repositories.OrderRepository
	catalogRepo    repositories.CatalogRepository
	inventoryRepo  repositories.InventoryRepository
	tableService   TableService
	financeService FinanceService
	clock          Clock
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	store repositories.TxRunner,
	or repositories.OrderRepository,
	cr repositories.CatalogRepository,
	ir repositories.InventoryRepository,
	ts TableService,
	fs FinanceService,
	clock Clock,
) OrderService {
	return &orderService{
		store:          store,
		orderRepo:      or,
		catalogRepo:    cr,
		inventoryRepo:  ir,
		tableService:   ts,
		financeService: fs,
		clock:          clock,
	}
}

// FormatOrderID renders the n-th order id.
func FormatOrderID(n int) string {
	return fmt.Sprintf("ORD%03d", n)
}

func validateItems(items []OrderItemRequest, partySize int) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: an order needs at least one item", ErrValidation)
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i)
		}
	}
	if partySize < 0 {
		return fmt.Errorf("%w: party size cannot be negative", ErrValidation)
	}
	return nil
}

// partySizeOrDefault seats an omitted party size as one guest.
func partySizeOrDefault(partySize int) int {
	if partySize == 0 {
		return 1
	}
	return partySize
}

// materializeItem snapshots the dish and its preparation units into a new order line.
func (s *orderService) materializeItem(ctx context.Context, exec repositories.SQLExecutor, orderID string, itemID int64, req OrderItemRequest, now time.Time) (*models.OrderItem, error) {
	dish, err := s.catalogRepo.GetDish(ctx, exec, req.DishID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown dish %d", ErrValidation, req.DishID)
		}
		return nil, storageError("loading dish", err)
	}
	defs, err := s.catalogRepo.GetDefinitionsByIDs(ctx, exec, dish.PreparationUnitIDs)
	if err != nil {
		return nil, storageError("loading preparation units", err)
	}

	item := &models.OrderItem{
		ID:       itemID,
		OrderID:  orderID,
		DishID:   dish.ID,
		Name:     dish.Name,
		Price:    dish.Price,
		Quantity: req.Quantity,
		Note:     req.Note,
		Units:    make([]models.PreparationUnitInstance, 0, len(dish.PreparationUnitIDs)),
	}
	for pos, defID := range dish.PreparationUnitIDs {
		def, ok := defs[defID]
		if !ok {
			log.Warn().Int64("dish_id", dish.ID).Int64("definition_id", defID).Msg("Dish references missing preparation unit; no instance created")
			continue
		}
		item.Units = append(item.Units, models.PreparationUnitInstance{
			OrderID:          orderID,
			ItemID:           itemID,
			DefinitionID:     def.ID,
			Position:         pos,
			Status:           models.UnitStatusPending,
			Name:             def.Name,
			Description:      def.Description,
			EstimatedMinutes: def.EstimatedMinutes,
			UpdatedAt:        now,
		})
	}
	return item, nil
}

func orderTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if err := validateItems(req.Items, req.PartySize); err != nil {
		return nil, err
	}
	req.PartySize = partySizeOrDefault(req.PartySize)
	tableName := strings.TrimSpace(req.TableName)

	var orderID string
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		n, err := s.orderRepo.NextOrderNumber(ctx, exec)
		if err != nil {
			return storageError("allocating order id", err)
		}
		orderID = FormatOrderID(n)
		now := s.clock.Now()

		items := make([]models.OrderItem, 0, len(req.Items))
		for i, itemReq := range req.Items {
			item, err := s.materializeItem(ctx, exec, orderID, int64(i+1), itemReq, now)
			if err != nil {
				return err
			}
			items = append(items, *item)
		}

		order := &models.Order{
			ID:        orderID,
			TableName: tableName,
			ServerID:  req.ServerID,
			Status:    models.OrderStatusPending,
			Total:     orderTotal(items),
			PartySize: req.PartySize,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.orderRepo.CreateOrder(ctx, exec, order); err != nil {
			return repoError("creating order", err, ErrOrderNotFound)
		}
		for i := range items {
			if err := s.orderRepo.CreateItem(ctx, exec, &items[i]); err != nil {
				return repoError("creating order item", err, ErrOrderNotFound)
			}
		}
		if tableName != "" {
			return s.tableService.Occupy(ctx, exec, tableName, orderID, req.PartySize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_id", orderID).Str("table", tableName).Int("items", len(req.Items)).Msg("Order created")
	return s.GetOrder(ctx, orderID)
}

// UpdateOrder merges the requested items into the order. A requested line whose
// id names an existing line for the same dish keeps its price snapshot and its
// preparation progress; every other line is materialized afresh and existing
// lines that are not requested are removed.
func (s *orderService) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*models.Order, error) {
	if err := validateItems(req.Items, req.PartySize); err != nil {
		return nil, err
	}
	req.PartySize = partySizeOrDefault(req.PartySize)
	tableName := strings.TrimSpace(req.TableName)

	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		existing, err := s.orderRepo.GetOrder(ctx, exec, orderID)
		if err != nil {
			return repoError("loading order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		if existing.Status.IsFinal() {
			return fmt.Errorf("%w: order %s is %s and can no longer be edited", ErrValidation, orderID, existing.Status)
		}
		now := s.clock.Now()

		var nextItemID int64
		for _, it := range existing.Items {
			if it.ID > nextItemID {
				nextItemID = it.ID
			}
		}

		kept := map[int64]bool{}
		var keptItems []models.OrderItem
		var fresh []OrderItemRequest
		for _, itemReq := range req.Items {
			if itemReq.ID != nil && !kept[*itemReq.ID] {
				if current := existing.FindItem(*itemReq.ID); current != nil && current.DishID == itemReq.DishID {
					kept[current.ID] = true
					updated := *current
					updated.Quantity = itemReq.Quantity
					updated.Note = itemReq.Note
					keptItems = append(keptItems, updated)
					continue
				}
			}
			fresh = append(fresh, itemReq)
		}

		for _, it := range existing.Items {
			if kept[it.ID] {
				continue
			}
			if err := s.orderRepo.DeleteItem(ctx, exec, orderID, it.ID); err != nil {
				return repoError("removing order item", err, ErrItemNotFound)
			}
		}
		finalItems := make([]models.OrderItem, 0, len(req.Items))
		for i := range keptItems {
			if err := s.orderRepo.UpdateItem(ctx, exec, &keptItems[i]); err != nil {
				return repoError("updating order item", err, ErrItemNotFound)
			}
			finalItems = append(finalItems, keptItems[i])
		}
		for _, itemReq := range fresh {
			nextItemID++
			item, err := s.materializeItem(ctx, exec, orderID, nextItemID, itemReq, now)
			if err != nil {
				return err
			}
			if err := s.orderRepo.CreateItem(ctx, exec, item); err != nil {
				return repoError("creating order item", err, ErrOrderNotFound)
			}
			finalItems = append(finalItems, *item)
		}

		if existing.TableName != "" && existing.TableName != tableName {
			if err := s.tableService.Release(ctx, exec, existing.TableName, orderID); err != nil {
				return err
			}
		}
		if tableName != "" {
			if err := s.tableService.Occupy(ctx, exec, tableName, orderID, req.PartySize); err != nil {
				return err
			}
		}

		existing.TableName = tableName
		existing.ServerID = req.ServerID
		existing.PartySize = req.PartySize
		existing.Total = orderTotal(finalItems)
		existing.UpdatedAt = now
		if err := s.orderRepo.UpdateOrder(ctx, exec, existing); err != nil {
			return repoError("updating order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		log.Info().
			Str("order_id", orderID).
			Int("kept_items", len(keptItems)).
			Int("new_items", len(fresh)).
			Msg("Order updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, req UpdateOrderStatusRequest) (*models.Order, error) {
	if !models.IsValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, req.Status)
	}
	if req.FinalAmount != nil && req.FinalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: final amount cannot be negative", ErrValidation)
	}
	return s.applyStatus(ctx, orderID, models.OrderStatus(req.Status), req.PaymentMethod, req.FinalAmount)
}

// SettleOrder delivers the order at the given amount. The amount is taken as is.
func (s *orderService) SettleOrder(ctx context.Context, orderID string, req SettleOrderRequest) (*models.Order, error) {
	if req.FinalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: final amount cannot be negative", ErrValidation)
	}
	amount := req.FinalAmount
	var method *string
	if pm := strings.TrimSpace(req.PaymentMethod); pm != "" {
		method = &pm
	}
	return s.applyStatus(ctx, orderID, models.OrderStatusDelivered, method, &amount)
}

// applyStatus stores the status, releases the table of a final order and books
// revenue for a positive amount, all in one unit of work.
func (s *orderService) applyStatus(ctx context.Context, orderID string, status models.OrderStatus, paymentMethod *string, finalAmount *decimal.Decimal) (*models.Order, error) {
	var revenue *models.FinancialRecord
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		order, err := s.orderRepo.GetOrder(ctx, exec, orderID)
		if err != nil {
			return repoError("loading order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		order.Status = status
		if paymentMethod != nil {
			order.PaymentMethod = paymentMethod
		}
		if finalAmount != nil {
			order.FinalAmount = finalAmount
		}
		order.UpdatedAt = s.clock.Now()
		if err := s.orderRepo.UpdateOrder(ctx, exec, order); err != nil {
			return repoError("updating order status", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}

		if status.IsFinal() && order.TableName != "" {
			if err := s.tableService.Release(ctx, exec, order.TableName, orderID); err != nil {
				return err
			}
		}

		if finalAmount != nil && finalAmount.IsPositive() {
			description := fmt.Sprintf("Order %s %s", orderID, status)
			if paymentMethod != nil && *paymentMethod != "" {
				description += fmt.Sprintf(" (%s)", *paymentMethod)
			}
			revenue, err = s.financeService.Append(ctx, exec, models.RecordCategoryRevenue, *finalAmount, description)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := log.Info().Str("order_id", orderID).Str("status", string(status))
	if revenue != nil {
		event = event.Int64("revenue_record_id", revenue.ID).Str("amount", revenue.Amount.String())
	}
	event.Msg("Order status updated")
	return s.GetOrder(ctx, orderID)
}

// SetPreparationUnitStatus resolves the item by id, falling back to the first
// item for the dish with that id, and moves one of its units.
func (s *orderService) SetPreparationUnitStatus(ctx context.Context, orderID string, itemID, unitID int64, req UnitStatusRequest) (*models.PreparationUnitInstance, error) {
	if !models.IsValidUnitStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid preparation unit status %q", ErrValidation, req.Status)
	}
	target := models.UnitStatus(req.Status)

	var result models.PreparationUnitInstance
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		order, err := s.orderRepo.GetOrder(ctx, exec, orderID)
		if err != nil {
			return repoError("loading order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		item := order.FindItem(itemID)
		if item == nil {
			item = order.FindItemByDish(itemID)
		}
		if item == nil {
			return fmt.Errorf("%w: %d on order %s", ErrItemNotFound, itemID, orderID)
		}
		unit := item.FindUnit(unitID)
		if unit == nil {
			return fmt.Errorf("%w: %d on item %d", ErrUnitNotFound, unitID, item.ID)
		}

		prev := *unit
		changed, err := applyUnitStatus(unit, target, req.CookID, s.clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := s.orderRepo.UpdateUnit(ctx, exec, unit, prev); err != nil {
				if errors.Is(err, repositories.ErrStaleUpdate) {
					return fmt.Errorf("%w: preparation unit %d changed concurrently", ErrInvalidTransition, unitID)
				}
				return repoError("updating preparation unit", err, fmt.Errorf("%w: %d", ErrUnitNotFound, unitID))
			}
		}
		result = *unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("order_id", orderID).
		Int64("item_id", result.ItemID).
		Int64("unit_id", unitID).
		Str("status", string(result.Status)).
		Msg("Preparation unit status set")
	return &result, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, s.store.DB(), orderID)
	if err != nil {
		return nil, repoError("loading order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Status != nil && *filters.Status != "" && !models.IsValidOrderStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid order status filter %q", ErrValidation, *filters.Status)
	}
	if filters.Date != nil && *filters.Date != "" {
		if _, err := time.Parse("2006-01-02", *filters.Date); err != nil {
			return nil, 0, fmt.Errorf("%w: invalid date filter format: %s, expected YYYY-MM-DD", ErrValidation, *filters.Date)
		}
	}
	orders, total, err := s.orderRepo.ListOrders(ctx, s.store.DB(), filters)
	if err != nil {
		return nil, 0, storageError("listing orders", err)
	}
	return orders, total, nil
}

// PreviewPartialCost reads the order and the catalog without locks; the result
// may reflect stock prices changed mid-read.
func (s *orderService) PreviewPartialCost(ctx context.Context, orderID string) (*models.PartialCost, error) {
	exec := s.store.DB()
	order, err := s.orderRepo.GetOrder(ctx, exec, orderID)
	if err != nil {
		return nil, repoError("loading order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
	}

	var defIDs []int64
	seen := map[int64]bool{}
	for _, item := range order.Items {
		for _, u := range item.Units {
			if !seen[u.DefinitionID] {
				seen[u.DefinitionID] = true
				defIDs = append(defIDs, u.DefinitionID)
			}
		}
	}
	defs, err := s.catalogRepo.GetDefinitionsByIDs(ctx, exec, defIDs)
	if err != nil {
		return nil, storageError("loading preparation units", err)
	}

	var stockIDs []int64
	seen = map[int64]bool{}
	for _, def := range defs {
		for _, ing := range def.Ingredients {
			if !seen[ing.StockItemID] {
				seen[ing.StockItemID] = true
				stockIDs = append(stockIDs, ing.StockItemID)
			}
		}
	}
	stock, err := s.inventoryRepo.GetStockItemsByIDs(ctx, exec, stockIDs)
	if err != nil {
		return nil, storageError("loading stock items", err)
	}

	cost := CalculatePartialCost(order, defs, stock)
	return &cost, nil
}

// KitchenQueue lists open orders oldest first with their preparation progress.
func (s *orderService) KitchenQueue(ctx context.Context) ([]models.KitchenTicket, error) {
	orders, err := s.orderRepo.ListActiveOrders(ctx, s.store.DB())
	if err != nil {
		return nil, storageError("listing active orders", err)
	}
	tickets := make([]models.KitchenTicket, 0, len(orders))
	for i := range orders {
		ready, total := orders[i].UnitProgress()
		tickets = append(tickets, models.KitchenTicket{
			Order:         &orders[i],
			UnitsReady:    ready,
			UnitsTotal:    total,
			FullyPrepared: orders[i].FullyPrepared(),
		})
	}
	return tickets, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	err := withinTx(ctx, s.store, func(exec repositories.SQLExecutor) error {
		order, err := s.orderRepo.GetOrder(ctx, exec, orderID)
		if err != nil {
			return repoError("loading order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		if order.TableName != "" {
			if err := s.tableService.Release(ctx, exec, order.TableName, orderID); err != nil {
				return err
			}
		}
		if err := s.orderRepo.DeleteOrder(ctx, exec, orderID); err != nil {
			return repoError("deleting order", err, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("order_id", orderID).Msg("Order deleted")
	return nil
}
