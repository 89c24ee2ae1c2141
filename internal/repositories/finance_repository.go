package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// FinanceRepository defines the interface for the append-only financial ledger.
type FinanceRepository interface {
	CreateRecord(ctx context.Context, exec SQLExecutor, record *models.FinancialRecord) error
	ListRecords(ctx context.Context, exec SQLExecutor, filters models.FinanceFilters) ([]models.FinancialRecord, int, error)
	DeleteRecord(ctx context.Context, exec SQLExecutor, id int64) error
	Summarize(ctx context.Context, exec SQLExecutor, from, to *time.Time) (*models.FinanceSummary, error)
}

type financeRepository struct{}

// NewFinanceRepository creates a new instance of FinanceRepository.
func NewFinanceRepository() FinanceRepository {
	return &financeRepository{}
}

func (r *financeRepository) CreateRecord(ctx context.Context, exec SQLExecutor, record *models.FinancialRecord) error {
	query := `INSERT INTO financial_records (recorded_at, category, amount, description)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := exec.QueryRowxContext(ctx, query,
		record.RecordedAt, record.Category, record.Amount, record.Description,
	).Scan(&record.ID)
	if err != nil {
		return mapPQError(err, "creating financial record")
	}
	return nil
}

// rangeConditions builds the shared category/period WHERE clause.
func rangeConditions(category *string, from, to *time.Time) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1
	if category != nil && *category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *category)
		argCount++
	}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("recorded_at >= $%d", argCount))
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("recorded_at < $%d", argCount))
		args = append(args, *to)
	}
	return conditions, args
}

func (r *financeRepository) ListRecords(ctx context.Context, exec SQLExecutor, filters models.FinanceFilters) ([]models.FinancialRecord, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, recorded_at, category, amount, description, COUNT(*) OVER() AS total_count
	  FROM financial_records`)

	conditions, args := rangeConditions(filters.Category, filters.From, filters.To)
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY recorded_at DESC, id DESC")
	appendPaging(&queryBuilder, &args, len(args)+1, filters.Page, filters.PageSize)

	rows := []struct {
		models.FinancialRecord
		TotalCount int `db:"total_count"`
	}{}
	if err := sqlx.SelectContext(ctx, exec, &rows, queryBuilder.String(), args...); err != nil {
		return nil, 0, fmt.Errorf("%w: querying financial records: %v", ErrDatabaseError, err)
	}

	records := make([]models.FinancialRecord, 0, len(rows))
	totalCount := 0
	for _, row := range rows {
		records = append(records, row.FinancialRecord)
		totalCount = row.TotalCount
	}
	return records, totalCount, nil
}

func (r *financeRepository) DeleteRecord(ctx context.Context, exec SQLExecutor, id int64) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM financial_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting financial record %d: %v", ErrDatabaseError, id, err)
	}
	return requireAffected(result, fmt.Sprintf("deleting financial record %d", id))
}

func (r *financeRepository) Summarize(ctx context.Context, exec SQLExecutor, from, to *time.Time) (*models.FinanceSummary, error) {
	query := `SELECT
	    COALESCE(SUM(amount) FILTER (WHERE category = 'revenue'), 0) AS revenue,
	    COALESCE(SUM(amount) FILTER (WHERE category = 'expense'), 0) AS expense,
	    COUNT(*) AS records
	  FROM financial_records`
	conditions, args := rangeConditions(nil, from, to)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var row struct {
		Revenue decimal.Decimal `db:"revenue"`
		Expense decimal.Decimal `db:"expense"`
		Records int             `db:"records"`
	}
	if err := sqlx.GetContext(ctx, exec, &row, query, args...); err != nil {
		return nil, fmt.Errorf("%w: summarizing financial records: %v", ErrDatabaseError, err)
	}
	return &models.FinanceSummary{
		From:    from,
		To:      to,
		Revenue: row.Revenue,
		Expense: row.Expense,
		Net:     row.Revenue.Sub(row.Expense),
		Records: row.Records,
	}, nil
}
