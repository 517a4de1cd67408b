package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the kind of money movement.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
	// TypeSavings is money set aside; it reduces the available balance.
	TypeSavings Type = "savings"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeSavings:
		return true
	}

	return false
}

// Transaction is a single recorded movement owned by the account with Email.
type Transaction struct {
	ID          uuid.UUID
	Email       string
	Type        Type
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
