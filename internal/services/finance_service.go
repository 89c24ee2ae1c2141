package services

import (
	"context"
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// FinanceService fronts the append-only ledger.
type FinanceService interface {
	// Append inserts a record inside the caller's unit of work.
	Append(ctx context.Context, exec repositories.SQLExecutor, category string, amount decimal.Decimal, description string) (*models.FinancialRecord, error)

	ListRecords(ctx context.Context, filters models.FinanceFilters) ([]models.FinancialRecord, int, error)
	DeleteRecord(ctx context.Context, id int64) error
	Summary(ctx context.Context, from, to *time.Time) (*models.FinanceSummary, error)
}

type financeService struct {
	store       repositories.TxRunner
	financeRepo repositories.FinanceRepository
	clock       Clock
}

// NewFinanceService creates a new instance of FinanceService.
func NewFinanceService(store repositories.TxRunner, fr repositories.FinanceRepository, clock Clock) FinanceService {
	return &financeService{store: store, financeRepo: fr, clock: clock}
}

func (s *financeService) Append(ctx context.Context, exec repositories.SQLExecutor, category string, amount decimal.Decimal, description string) (*models.FinancialRecord, error) {
	if category != models.RecordCategoryRevenue && category != models.RecordCategoryExpense {
		return nil, fmt.Errorf("%w: unknown record category %q", ErrValidation, category)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: record amount must be positive, got %s", ErrValidation, amount)
	}
	record := &models.FinancialRecord{
		RecordedAt:  s.clock.Now(),
		Category:    category,
		Amount:      amount,
		Description: description,
	}
	if err := s.financeRepo.CreateRecord(ctx, exec, record); err != nil {
		return nil, repoError("appending financial record", err, ErrRecordNotFound)
	}
	return record, nil
}

func (s *financeService) ListRecords(ctx context.Context, filters models.FinanceFilters) ([]models.FinancialRecord, int, error) {
	if filters.Category != nil && *filters.Category != "" &&
		*filters.Category != models.RecordCategoryRevenue && *filters.Category != models.RecordCategoryExpense {
		return nil, 0, fmt.Errorf("%w: unknown record category %q", ErrValidation, *filters.Category)
	}
	if err := validateRange(filters.From, filters.To); err != nil {
		return nil, 0, err
	}
	records, total, err := s.financeRepo.ListRecords(ctx, s.store.DB(), filters)
	if err != nil {
		return nil, 0, storageError("listing financial records", err)
	}
	return records, total, nil
}

func (s *financeService) DeleteRecord(ctx context.Context, id int64) error {
	if err := s.financeRepo.DeleteRecord(ctx, s.store.DB(), id); err != nil {
		return repoError("deleting financial record", err, fmt.Errorf("%w: %d", ErrRecordNotFound, id))
	}
	return nil
}

func (s *financeService) Summary(ctx context.Context, from, to *time.Time) (*models.FinanceSummary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	summary, err := s.financeRepo.Summarize(ctx, s.store.DB(), from, to)
	if err != nil {
		return nil, storageError("summarizing ledger", err)
	}
	return summary, nil
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return fmt.Errorf("%w: range end is before its start", ErrValidation)
	}
	return nil
}
