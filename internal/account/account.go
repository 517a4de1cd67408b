package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSecurityQuestion is assigned to every account at registration.
const DefaultSecurityQuestion = "What is your favorite color?"

// DefaultSecurityAnswer is stored when registration omits an answer.
const DefaultSecurityAnswer = "blue"

// PremiumDuration is the length of one premium grant.
const PremiumDuration = 30 * 24 * time.Hour

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectAnswer    = errors.New("incorrect security answer")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNameRequired       = errors.New("name is required")
)

// Account is a registered user with credentials and premium/usage state.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string

	IsPremium        bool
	PremiumStartDate *time.Time
	PremiumEndDate   *time.Time
	PaymentOrderID   string
	PaymentID        string

	SecurityQuestion string
	SecurityAnswer   string

	MonthlyTransactionCount  int
	LastTransactionResetDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PremiumExpired reports whether a premium grant has lapsed at now.
func (a *Account) PremiumExpired(now time.Time) bool {
	return a.IsPremium && a.PremiumEndDate != nil && now.After(*a.PremiumEndDate)
}

// Activation carries the fields written when a payment is verified.
type Activation struct {
	Start     time.Time
	End       time.Time
	OrderID   string
	PaymentID string
}

// NewActivation grants a fresh window starting at now. Repeated grants
// replace the window rather than extend it.
func NewActivation(now time.Time, orderID, paymentID string) Activation {
	return Activation{
		Start:     now,
		End:       now.Add(PremiumDuration),
		OrderID:   orderID,
		PaymentID: paymentID,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// Reservation reports the outcome of a conditional monthly-slot increment.
type Reservation struct {
	// Applied is false when the free-tier cap was already reached.
	Applied bool
	Premium bool
	// Used is the counter value after the attempt.
	Used int
}
