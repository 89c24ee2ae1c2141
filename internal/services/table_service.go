package services

import (
	"context"
	"fmt"
	"strings"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/rs/zerolog/log"
)

// CreateTableRequest DTO
type CreateTableRequest struct {
	Name      string `json:"name" binding:"required"`
	Floor     string `json:"floor"`
	Shape     string `json:"shape"`
	PositionX int    `json:"position_x"`
	PositionY int    `json:"position_y"`
}

// TableService mirrors order bindings onto physical tables. Occupy and Release
// run inside the caller's unit of work.
type TableService interface {
	Occupy(ctx context.Context, exec repositories.SQLExecutor, tableName, orderID string, partySize int) error
	Release(ctx context.Context, exec repositories.SQLExecutor, tableName, orderID string) error

	CreateTable(ctx context.Context, req CreateTableRequest) (*models.Table, error)
	GetTable(ctx context.Context, name string) (*models.Table, error)
	ListTables(ctx context.Context, floor *string) ([]models.Table, error)
}

type tableService struct {
	store     repositories.TxRunner
	tableRepo repositories.TableRepository
	clock     Clock
}

// NewTableService creates a new instance of TableService.
func NewTableService(store repositories.TxRunner, tr repositories.TableRepository, clock Clock) TableService {
	return &tableService{store: store, tableRepo: tr, clock: clock}
}

// Occupy binds the table to the order. A table already bound to another order
// is overwritten.
func (s *tableService) Occupy(ctx context.Context, exec repositories.SQLExecutor, tableName, orderID string, partySize int) error {
	table, err := s.tableRepo.GetTableByName(ctx, exec, tableName)
	if err != nil {
		return repoError("loading table", err, fmt.Errorf("%w: %q", ErrTableNotFound, tableName))
	}
	if table.Status == models.TableStatusOccupied && table.OrderID != nil && *table.OrderID != orderID {
		log.Warn().
			Str("table", tableName).
			Str("previous_order_id", *table.OrderID).
			Str("order_id", orderID).
			Msg("Table already occupied by another order; overwriting binding")
	}
	size := partySize
	if err := s.tableRepo.SetOccupancy(ctx, exec, tableName, models.TableStatusOccupied, &orderID, &size, s.clock.Now()); err != nil {
		return repoError("occupying table", err, fmt.Errorf("%w: %q", ErrTableNotFound, tableName))
	}
	return nil
}

// Release makes the table available. Releasing an available table is a no-op.
// When orderID is set, a table that has since been bound to another order is
// left alone.
func (s *tableService) Release(ctx context.Context, exec repositories.SQLExecutor, tableName, orderID string) error {
	table, err := s.tableRepo.GetTableByName(ctx, exec, tableName)
	if err != nil {
		return repoError("loading table", err, fmt.Errorf("%w: %q", ErrTableNotFound, tableName))
	}
	if table.Status == models.TableStatusAvailable && table.OrderID == nil {
		return nil
	}
	if orderID != "" && table.OrderID != nil && *table.OrderID != orderID {
		log.Debug().
			Str("table", tableName).
			Str("order_id", orderID).
			Str("bound_order_id", *table.OrderID).
			Msg("Table now belongs to another order; release skipped")
		return nil
	}
	if err := s.tableRepo.SetOccupancy(ctx, exec, tableName, models.TableStatusAvailable, nil, nil, s.clock.Now()); err != nil {
		return repoError("releasing table", err, fmt.Errorf("%w: %q", ErrTableNotFound, tableName))
	}
	return nil
}

func (s *tableService) CreateTable(ctx context.Context, req CreateTableRequest) (*models.Table, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: table name cannot be empty", ErrValidation)
	}
	now := s.clock.Now()
	table := &models.Table{
		Name:      name,
		Floor:     req.Floor,
		Shape:     req.Shape,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
		Status:    models.TableStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tableRepo.CreateTable(ctx, s.store.DB(), table); err != nil {
		return nil, repoError("creating table", err, ErrTableNotFound)
	}
	return table, nil
}

func (s *tableService) GetTable(ctx context.Context, name string) (*models.Table, error) {
	table, err := s.tableRepo.GetTableByName(ctx, s.store.DB(), name)
	if err != nil {
		return nil, repoError("loading table", err, fmt.Errorf("%w: %q", ErrTableNotFound, name))
	}
	return table, nil
}

func (s *tableService) ListTables(ctx context.Context, floor *string) ([]models.Table, error) {
	tables, err := s.tableRepo.ListTables(ctx, s.store.DB(), floor)
	if err != nil {
		return nil, storageError("listing tables", err)
	}
	return tables, nil
}
