// Package analytics folds transaction lists into balances, budget progress
// and reports. Every function is pure and order-independent.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

// Snapshot is the running financial position of an account.
type Snapshot struct {
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Savings      decimal.Decimal `json:"savings"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// Aggregate folds txs into a Snapshot. Savings reduce the balance because
// the money is set aside rather than spendable.
func Aggregate(txs []*transaction.Transaction) Snapshot {
	s := Snapshot{
		Income:       decimal.Zero,
		Expenses:     decimal.Zero,
		Savings:      decimal.Zero,
		TotalBalance: decimal.Zero,
	}

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			s.Income = s.Income.Add(tx.Amount)
			s.TotalBalance = s.TotalBalance.Add(tx.Amount)
		case transaction.TypeExpense:
			s.Expenses = s.Expenses.Add(tx.Amount)
			s.TotalBalance = s.TotalBalance.Sub(tx.Amount)
		case transaction.TypeSavings:
			s.Savings = s.Savings.Add(tx.Amount)
			s.TotalBalance = s.TotalBalance.Sub(tx.Amount)
		}
	}

	return s
}

// Consistent reports whether the running balance matches
// income - expenses - savings.
func (s Snapshot) Consistent() bool {
	return s.TotalBalance.Equal(s.Income.Sub(s.Expenses).Sub(s.Savings))
}
