package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CreateParams struct {
	Email       string
	Type        Type
	Amount      decimal.Decimal
	Description string
	Category    string
	// Date defaults to the creation time when nil.
	Date *time.Time
}

func (p CreateParams) normalize() (CreateParams, error) {
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)

	if err := validateType(p.Type); err != nil {
		return p, err
	}

	if err := validateAmount(p.Amount); err != nil {
		return p, err
	}

	if p.Description == "" {
		return p, &ValidationError{Field: "description", Message: "Description is required."}
	}

	if p.Category == "" {
		return p, &ValidationError{Field: "category", Message: "Category is required."}
	}

	return p, nil
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Type        *Type
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Date        *time.Time
}

func (p UpdateParams) apply(tx *Transaction) error {
	if p.Type != nil {
		if err := validateType(*p.Type); err != nil {
			return err
		}

		tx.Type = *p.Type
	}

	if p.Amount != nil {
		if err := validateAmount(*p.Amount); err != nil {
			return err
		}

		tx.Amount = *p.Amount
	}

	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			return &ValidationError{Field: "description", Message: "Description cannot be empty."}
		}

		tx.Description = d
	}

	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		if c == "" {
			return &ValidationError{Field: "category", Message: "Category cannot be empty."}
		}

		tx.Category = c
	}

	if p.Date != nil {
		tx.Date = *p.Date
	}

	return nil
}

func validateType(t Type) error {
	if !t.Valid() {
		return &ValidationError{
			Field:   "type",
			Message: "Invalid transaction type. Must be income, expense, or savings.",
		}
	}

	return nil
}

// Amounts are stored as NUMERIC(14, 2).
const (
	amountScale     = 2
	amountIntDigits = 12
	// Inputs written with more fraction digits than this are rejected
	// before any rescaling, which grows with the exponent.
	maxInputScale = 20
)

var maxAmount = decimal.New(1, amountIntDigits)

func validateAmount(a decimal.Decimal) error {
	if a.IsNegative() {
		return &ValidationError{Field: "amount", Message: "Amount must be positive."}
	}

	if a.IsZero() {
		return nil
	}

	tooLarge := &ValidationError{Field: "amount", Message: "Amount must be less than 1000000000000."}
	tooPrecise := &ValidationError{Field: "amount", Message: "Amount can have at most 2 decimal places."}

	switch {
	case a.Exponent() > amountIntDigits:
		return tooLarge
	case a.Exponent() < -maxInputScale:
		return tooPrecise
	case !a.Equal(a.Round(amountScale)):
		return tooPrecise
	case a.GreaterThanOrEqual(maxAmount):
		return tooLarge
	}

	return nil
}
