package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

var (
	ErrInvalidSignature = errors.New("payment verification failed: invalid signature")
	ErrMissingFields    = errors.New("order id, payment id and signature are required")
)

const premiumDescription = "Premium Subscription - 30 days"

// OrderRequest is sent to the gateway to open a checkout.
type OrderRequest struct {
	// Amount is in minor units (paise for INR).
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway's view of a created order.
type Order struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=payment
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// Premium grants premium to an account after a verified payment.
type Premium interface {
	ActivatePremium(ctx context.Context, email, orderID, paymentID string) (*account.Account, error)
}

type Config struct {
	KeySecret string
	// Price is in minor units.
	Price    int64
	Currency string
}

type Service struct {
	gateway Gateway
	premium Premium
	cfg     Config
	now     func() time.Time
}

func NewService(gateway Gateway, premium Premium, cfg Config) *Service {
	return &Service{gateway: gateway, premium: premium, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateOrder opens a premium checkout for email at the configured price.
func (s *Service) CreateOrder(ctx context.Context, email string) (*Order, error) {
	email = account.NormalizeEmail(email)

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   s.cfg.Price,
		Currency: s.cfg.Currency,
		Receipt:  fmt.Sprintf("receipt_%d", s.now().UnixMilli()),
		Notes: map[string]string{
			"email":       email,
			"description": premiumDescription,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	slog.Info("payment order created", "order_id", order.ID, "email", email)

	return order, nil
}

// Callback carries the fields returned by the checkout widget.
type Callback struct {
	OrderID   string
	PaymentID string
	Signature string
	Email     string
}

// Verify checks the callback signature and, only when it matches, grants
// thirty days of premium from now.
func (s *Service) Verify(ctx context.Context, cb Callback) (*account.Account, error) {
	cb.OrderID = strings.TrimSpace(cb.OrderID)
	cb.PaymentID = strings.TrimSpace(cb.PaymentID)
	cb.Signature = strings.TrimSpace(cb.Signature)

	if cb.OrderID == "" || cb.PaymentID == "" || cb.Signature == "" {
		return nil, ErrMissingFields
	}

	if !VerifySignature(s.cfg.KeySecret, cb.OrderID, cb.PaymentID, cb.Signature) {
		slog.Warn("payment signature mismatch", "order_id", cb.OrderID)
		return nil, ErrInvalidSignature
	}

	a, err := s.premium.ActivatePremium(ctx, cb.Email, cb.OrderID, cb.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("activating premium: %w", err)
	}

	slog.Info("premium activated", "email", a.Email, "until", a.PremiumEndDate)

	return a, nil
}
