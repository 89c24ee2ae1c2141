package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

type financeRepository struct {
	s *Store
}

// NewFinanceRepository returns a FinanceRepository over the store.
func NewFinanceRepository(s *Store) repositories.FinanceRepository {
	return &financeRepository{s: s}
}

func (r *financeRepository) CreateRecord(_ context.Context, _ repositories.SQLExecutor, record *models.FinancialRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("FinanceRepository.CreateRecord"); err != nil {
		return err
	}
	if !record.Amount.IsPositive() {
		return fmt.Errorf("%w: financial record amount must be positive", repositories.ErrCheckViolation)
	}
	r.s.data.nextRecordID++
	record.ID = r.s.data.nextRecordID
	r.s.data.records = append(r.s.data.records, *record)
	return nil
}

func inRange(rec models.FinancialRecord, category *string, from, to *time.Time) bool {
	if category != nil && *category != "" && rec.Category != *category {
		return false
	}
	if from != nil && rec.RecordedAt.Before(*from) {
		return false
	}
	if to != nil && !rec.RecordedAt.Before(*to) {
		return false
	}
	return true
}

func (r *financeRepository) ListRecords(_ context.Context, _ repositories.SQLExecutor, filters models.FinanceFilters) ([]models.FinancialRecord, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []models.FinancialRecord{}
	for _, rec := range r.s.data.records {
		if inRange(rec, filters.Category, filters.From, filters.To) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].RecordedAt.Equal(matched[j].RecordedAt) {
			return matched[i].RecordedAt.After(matched[j].RecordedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	start, end := page(len(matched), filters.Page, filters.PageSize)
	return matched[start:end], len(matched), nil
}

func (r *financeRepository) DeleteRecord(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, rec := range r.s.data.records {
		if rec.ID == id {
			r.s.data.records = append(r.s.data.records[:i:i], r.s.data.records[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *financeRepository) Summarize(_ context.Context, _ repositories.SQLExecutor, from, to *time.Time) (*models.FinanceSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	summary := &models.FinanceSummary{From: from, To: to, Revenue: decimal.Zero, Expense: decimal.Zero}
	for _, rec := range r.s.data.records {
		if !inRange(rec, nil, from, to) {
			continue
		}
		summary.Records++
		switch rec.Category {
		case models.RecordCategoryRevenue:
			summary.Revenue = summary.Revenue.Add(rec.Amount)
		case models.RecordCategoryExpense:
			summary.Expense = summary.Expense.Add(rec.Amount)
		}
	}
	summary.Net = summary.Revenue.Sub(summary.Expense)
	return summary, nil
}
