package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
)

// Level is the alert severity of a budget category.
type Level string

const (
	LevelNone     Level = ""
	LevelWarning  Level = "warning"
	LevelExceeded Level = "exceeded"
)

func (l Level) rank() int {
	switch l {
	case LevelExceeded:
		return 2
	case LevelWarning:
		return 1
	}

	return 0
}

// Progress is the spend against a single category budget.
type Progress struct {
	Spent  decimal.Decimal `json:"spent"`
	Budget decimal.Decimal `json:"budget"`
	// Percentage is rounded to two places for display; Level is classified
	// on the exact value.
	Percentage decimal.Decimal `json:"percentage"`
	Level      Level           `json:"alert,omitempty"`
}

// BudgetProgress computes progress for every category in budgets. Only
// expense transactions count as spend. A zero budget yields percentage 0
// and never alerts.
func BudgetProgress(txs []*transaction.Transaction, budgets map[string]decimal.Decimal) map[string]Progress {
	spent := make(map[string]decimal.Decimal, len(budgets))

	for _, tx := range txs {
		if tx.Type != transaction.TypeExpense {
			continue
		}

		if _, ok := budgets[tx.Category]; !ok {
			continue
		}

		spent[tx.Category] = spent[tx.Category].Add(tx.Amount)
	}

	progress := make(map[string]Progress, len(budgets))

	for category, budget := range budgets {
		s := spent[category]

		p := Progress{Spent: s, Budget: budget, Percentage: decimal.Zero}
		if budget.IsPositive() {
			exact := s.Div(budget).Mul(hundred)
			p.Percentage = exact.Round(2)
			p.Level = classify(exact)
		}

		progress[category] = p
	}

	return progress
}

func classify(percentage decimal.Decimal) Level {
	switch {
	case percentage.GreaterThanOrEqual(hundred):
		return LevelExceeded
	case percentage.GreaterThanOrEqual(warningThreshold):
		return LevelWarning
	default:
		return LevelNone
	}
}

// Alert is a budget category that needs the user's attention.
type Alert struct {
	Category   string          `json:"category"`
	Label      string          `json:"label"`
	Level      Level           `json:"level"`
	Spent      decimal.Decimal `json:"spent"`
	Budget     decimal.Decimal `json:"budget"`
	Percentage decimal.Decimal `json:"percentage"`
	// Remaining is negative once the budget is overspent.
	Remaining decimal.Decimal `json:"remaining"`
}

// Alerts lists the categories at warning or above, most severe first and
// then by category name.
func Alerts(progress map[string]Progress) []Alert {
	var alerts []Alert

	for category, p := range progress {
		if p.Level == LevelNone {
			continue
		}

		alerts = append(alerts, Alert{
			Category:   category,
			Label:      Label(category),
			Level:      p.Level,
			Spent:      p.Spent,
			Budget:     p.Budget,
			Percentage: p.Percentage,
			Remaining:  p.Budget.Sub(p.Spent),
		})
	}

	slices.SortFunc(alerts, func(a, b Alert) int {
		if c := cmp.Compare(b.Level.rank(), a.Level.rank()); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return alerts
}
