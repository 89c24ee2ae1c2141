package services

import (
	"context"
	"testing"
	"time"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinanceService_Append(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record, err := env.finance.Append(ctx, env.store.DB(), models.RecordCategoryRevenue, dec("12.5"), "Order ORD001 delivered")
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Equal(t, testNow, record.RecordedAt)

	_, err = env.finance.Append(ctx, env.store.DB(), "tips", dec("1"), "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.finance.Append(ctx, env.store.DB(), models.RecordCategoryExpense, dec("0"), "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.finance.Append(ctx, env.store.DB(), models.RecordCategoryExpense, dec("-3"), "")
	require.ErrorIs(t, err, ErrValidation)

	assert.Len(t, env.records(t), 1)
}

func TestFinanceService_SummaryAndFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, r := range []struct{ category, amount string }{
		{models.RecordCategoryRevenue, "40"},
		{models.RecordCategoryRevenue, "12.5"},
		{models.RecordCategoryExpense, "20"},
	} {
		_, err := env.finance.Append(ctx, env.store.DB(), r.category, dec(r.amount), "")
		require.NoError(t, err)
	}

	summary, err := env.finance.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assertDecimal(t, "52.5", summary.Revenue)
	assertDecimal(t, "20", summary.Expense)
	assertDecimal(t, "32.5", summary.Net)
	assert.Equal(t, 3, summary.Records)

	later := testNow.Add(time.Hour)
	summary, err = env.finance.Summary(ctx, &later, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Records)

	_, err = env.finance.Summary(ctx, &later, &testNow)
	require.ErrorIs(t, err, ErrValidation)

	expense := models.RecordCategoryExpense
	records, total, err := env.finance.ListRecords(ctx, models.FinanceFilters{Category: &expense})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assertDecimal(t, "20", records[0].Amount)

	unknown := "tips"
	_, _, err = env.finance.ListRecords(ctx, models.FinanceFilters{Category: &unknown})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.finance.DeleteRecord(ctx, records[0].ID))
	require.ErrorIs(t, env.finance.DeleteRecord(ctx, records[0].ID), ErrRecordNotFound)
}
