package analytics_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pfm/internal/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func tx(kind transaction.Type, amount int64, category string, date time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		Type:     kind,
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Date:     date,
	}
}

func sample() []*transaction.Transaction {
	return []*transaction.Transaction{
		tx(transaction.TypeIncome, 50000, "salary", testNow),
		tx(transaction.TypeExpense, 1200, "food", testNow),
		tx(transaction.TypeExpense, 800, "transport", testNow.AddDate(0, 0, -3)),
		tx(transaction.TypeSavings, 10000, "other", testNow.AddDate(0, 0, -5)),
		tx(transaction.TypeExpense, 3000, "food", testNow.AddDate(0, -1, 0)),
		tx(transaction.TypeIncome, 50000, "salary", testNow.AddDate(0, -1, 0)),
	}
}

func TestAggregate(t *testing.T) {
	got := analytics.Aggregate(sample())

	assert.True(t, decimal.NewFromInt(100000).Equal(got.Income))
	assert.True(t, decimal.NewFromInt(5000).Equal(got.Expenses))
	assert.True(t, decimal.NewFromInt(10000).Equal(got.Savings))
	assert.True(t, decimal.NewFromInt(85000).Equal(got.TotalBalance))
	assert.True(t, got.Consistent())
}

func TestAggregate_Empty(t *testing.T) {
	got := analytics.Aggregate(nil)

	assert.True(t, got.Income.IsZero())
	assert.True(t, got.TotalBalance.IsZero())
	assert.True(t, got.Consistent())
}

func TestAggregate_OrderIndependent(t *testing.T) {
	txs := sample()
	want := analytics.Aggregate(txs)

	r := rand.New(rand.NewPCG(1, 2))

	for range 20 {
		shuffled := append([]*transaction.Transaction(nil), txs...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := analytics.Aggregate(shuffled)
		assert.True(t, want.TotalBalance.Equal(got.TotalBalance))
		assert.True(t, want.Savings.Equal(got.Savings))
		assert.True(t, got.Consistent())
	}
}

func TestBudgetProgress(t *testing.T) {
	type testCase struct {
		name      string
		spent     int64
		budget    int64
		wantPct   string
		wantLevel analytics.Level
	}

	tests := []testCase{
		{name: "BelowWarning", spent: 799, budget: 1000, wantPct: "79.9", wantLevel: analytics.LevelNone},
		{name: "WarningBoundary", spent: 800, budget: 1000, wantPct: "80", wantLevel: analytics.LevelWarning},
		{name: "ExceededBoundary", spent: 1000, budget: 1000, wantPct: "100", wantLevel: analytics.LevelExceeded},
		{name: "Overspent", spent: 1500, budget: 1000, wantPct: "150", wantLevel: analytics.LevelExceeded},
		{name: "ZeroBudgetNeverAlerts", spent: 5000, budget: 0, wantPct: "0", wantLevel: analytics.LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []*transaction.Transaction{
				tx(transaction.TypeExpense, tt.spent, "food", testNow),
				// Non-expense spend in the same category is ignored.
				tx(transaction.TypeSavings, 999, "food", testNow),
			}

			got := analytics.BudgetProgress(txs, map[string]decimal.Decimal{"food": decimal.NewFromInt(tt.budget)})

			p, ok := got["food"]
			require.True(t, ok)
			assert.True(t, decimal.NewFromInt(tt.spent).Equal(p.Spent))
			assert.Equal(t, tt.wantPct, p.Percentage.String())
			assert.Equal(t, tt.wantLevel, p.Level)
		})
	}
}

func TestBudgetProgress_UnspentCategory(t *testing.T) {
	got := analytics.BudgetProgress(nil, map[string]decimal.Decimal{"bills": decimal.NewFromInt(500)})

	require.Contains(t, got, "bills")
	assert.True(t, got["bills"].Spent.IsZero())
	assert.Equal(t, analytics.LevelNone, got["bills"].Level)
}

func TestAlerts(t *testing.T) {
	txs := []*transaction.Transaction{
		tx(transaction.TypeExpense, 900, "transport", testNow),
		tx(transaction.TypeExpense, 1200, "food", testNow),
		tx(transaction.TypeExpense, 850, "bills", testNow),
		tx(transaction.TypeExpense, 10, "shopping", testNow),
	}

	progress := analytics.BudgetProgress(txs, map[string]decimal.Decimal{
		"transport": decimal.NewFromInt(1000),
		"food":      decimal.NewFromInt(1000),
		"bills":     decimal.NewFromInt(1000),
		"shopping":  decimal.NewFromInt(1000),
	})

	alerts := analytics.Alerts(progress)
	require.Len(t, alerts, 3)

	assert.Equal(t, "food", alerts[0].Category)
	assert.Equal(t, analytics.LevelExceeded, alerts[0].Level)
	assert.Equal(t, "Food & Dining", alerts[0].Label)
	assert.Equal(t, "-200", alerts[0].Remaining.String())

	assert.Equal(t, "bills", alerts[1].Category)
	assert.Equal(t, "transport", alerts[2].Category)
	assert.Equal(t, analytics.LevelWarning, alerts[2].Level)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Bills & Utilities", analytics.Label("bills"))
	assert.Equal(t, "Pet Care", analytics.Label("pet care"))
}

func TestCategoryBreakdown(t *testing.T) {
	got := analytics.CategoryBreakdown(sample())
	require.Len(t, got, 2)

	assert.Equal(t, "food", got[0].Category)
	assert.Equal(t, "4200", got[0].Amount.String())
	assert.Equal(t, "84", got[0].Percentage.String())
	assert.Equal(t, "transport", got[1].Category)
	assert.Equal(t, "16", got[1].Percentage.String())
}

func TestMonthlyTrend(t *testing.T) {
	old := tx(transaction.TypeIncome, 1, "salary", testNow.AddDate(-1, 0, 0))

	got := analytics.MonthlyTrend(append(sample(), old), testNow, 3)
	require.Len(t, got, 3)

	assert.Equal(t, "2024-01", got[0].Month)
	assert.True(t, got[0].Income.IsZero())

	assert.Equal(t, "2024-02", got[1].Month)
	assert.Equal(t, "50000", got[1].Income.String())
	assert.Equal(t, "3000", got[1].Expenses.String())

	assert.Equal(t, "2024-03", got[2].Month)
	assert.Equal(t, "2000", got[2].Expenses.String())
	assert.Equal(t, "10000", got[2].Savings.String())

	assert.Nil(t, analytics.MonthlyTrend(nil, testNow, 0))
}

func TestBuildReport(t *testing.T) {
	r := analytics.BuildReport(sample(), testNow)

	assert.Equal(t, "2024-03", r.Month)
	assert.Equal(t, 4, r.TransactionCount)
	assert.Equal(t, "20", r.SavingsRate.String())
	assert.Equal(t, "4", r.ExpenseRate.String())
	assert.True(t, r.HealthySaver)
	assert.True(t, r.ControlledSpend)
	require.NotNil(t, r.TopCategory)
	assert.Equal(t, "food", r.TopCategory.Category)
	assert.Len(t, r.Trend, 6)
	assert.True(t, r.Snapshot.Consistent())
}

func TestBuildReport_NoIncome(t *testing.T) {
	r := analytics.BuildReport([]*transaction.Transaction{
		tx(transaction.TypeExpense, 100, "food", testNow),
	}, testNow)

	assert.True(t, r.SavingsRate.IsZero())
	assert.True(t, r.ExpenseRate.IsZero())
	assert.False(t, r.HealthySaver)
}
