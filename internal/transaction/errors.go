package transaction

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

// ErrNotFound covers both missing transactions and ones owned by another
// account; callers must not be able to tell the two apart.
var ErrNotFound = errors.New("transaction not found or unauthorized")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// QuotaExceededError is returned when a free-tier account has used its
// monthly allowance.
type QuotaExceededError struct {
	Usage account.Usage
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly transaction limit reached (%d/%d)", e.Usage.Used, e.Usage.Limit)
}
