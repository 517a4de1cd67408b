package analytics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

var knownLabels = map[string]string{
	"food":      "Food & Dining",
	"transport": "Transportation",
	"shopping":  "Shopping",
	"bills":     "Bills & Utilities",
	"salary":    "Salary",
	"other":     "Other",
}

// Label returns the display name of a category.
func Label(category string) string {
	if l, ok := knownLabels[strings.ToLower(category)]; ok {
		return l
	}

	// Casers carry state and must not be shared across goroutines.
	return cases.Title(language.English).String(category)
}

// CategoryShare is the expense total of one category.
type CategoryShare struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	// Percentage of total expenses, rounded to one place.
	Percentage decimal.Decimal `json:"percentage"`
}

// CategoryBreakdown totals expenses per category, largest first.
func CategoryBreakdown(txs []*transaction.Transaction) []CategoryShare {
	totals := make(map[string]decimal.Decimal)
	all := decimal.Zero

	for _, tx := range txs {
		if tx.Type != transaction.TypeExpense {
			continue
		}

		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		all = all.Add(tx.Amount)
	}

	shares := make([]CategoryShare, 0, len(totals))

	for category, amount := range totals {
		pct := decimal.Zero
		if all.IsPositive() {
			pct = amount.Div(all).Mul(hundred).Round(1)
		}

		shares = append(shares, CategoryShare{
			Category:   category,
			Label:      Label(category),
			Amount:     amount,
			Percentage: pct,
		})
	}

	slices.SortFunc(shares, func(a, b CategoryShare) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return shares
}

// MonthPoint is the activity of one calendar month.
type MonthPoint struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// MonthlyTrend buckets txs into the last months calendar months ending with
// the month of now, oldest first. Transactions outside the window are
// ignored. Months are taken in UTC.
func MonthlyTrend(txs []*transaction.Transaction, now time.Time, months int) []MonthPoint {
	if months <= 0 {
		return nil
	}

	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	points := make([]MonthPoint, months)
	index := make(map[string]int, months)

	for i := range points {
		key := first.AddDate(0, i, 0).Format("2006-01")
		points[i] = MonthPoint{Month: key, Income: decimal.Zero, Expenses: decimal.Zero, Savings: decimal.Zero}
		index[key] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Date.UTC().Format("2006-01")]
		if !ok {
			continue
		}

		p := &points[i]

		switch tx.Type {
		case transaction.TypeIncome:
			p.Income = p.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			p.Expenses = p.Expenses.Add(tx.Amount)
		case transaction.TypeSavings:
			p.Savings = p.Savings.Add(tx.Amount)
		}
	}

	return points
}

const (
	healthySavingsRate = 20
	healthyExpenseRate = 70
	defaultTrendMonths = 6
)

// Report summarizes the given month of activity.
type Report struct {
	Month    string   `json:"month"`
	Snapshot Snapshot `json:"snapshot"`
	// Rates are percentages of income, rounded to one place; 0 without income.
	SavingsRate  decimal.Decimal `json:"savingsRate"`
	ExpenseRate  decimal.Decimal `json:"expenseRate"`
	HealthySaver bool            `json:"healthySaver"`
	// ControlledSpend is true while expenses stay at or below 70% of income.
	ControlledSpend  bool            `json:"controlledSpend"`
	TransactionCount int             `json:"transactionCount"`
	Breakdown        []CategoryShare `json:"breakdown"`
	TopCategory      *CategoryShare  `json:"topCategory,omitempty"`
	Trend            []MonthPoint    `json:"trend"`
}

// BuildReport reports on the transactions dated in the calendar month of
// now, with a six month trend drawn from all of txs.
func BuildReport(txs []*transaction.Transaction, now time.Time) Report {
	now = now.UTC()
	month := now.Format("2006-01")

	var current []*transaction.Transaction

	for _, tx := range txs {
		if tx.Date.UTC().Format("2006-01") == month {
			current = append(current, tx)
		}
	}

	snap := Aggregate(current)

	r := Report{
		Month:            month,
		Snapshot:         snap,
		SavingsRate:      rate(snap.Savings, snap.Income),
		ExpenseRate:      rate(snap.Expenses, snap.Income),
		TransactionCount: len(current),
		Breakdown:        CategoryBreakdown(current),
		Trend:            MonthlyTrend(txs, now, defaultTrendMonths),
	}

	r.HealthySaver = r.SavingsRate.GreaterThanOrEqual(decimal.NewFromInt(healthySavingsRate))
	r.ControlledSpend = r.ExpenseRate.LessThanOrEqual(decimal.NewFromInt(healthyExpenseRate))

	if len(r.Breakdown) > 0 {
		top := r.Breakdown[0]
		r.TopCategory = &top
	}

	return r
}

func rate(part, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}

	return part.Div(income).Mul(hundred).Round(1)
}
