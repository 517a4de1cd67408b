package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, email string, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, email string, filter ListFilter) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, email string, id uuid.UUID) error
	DeleteAll(ctx context.Context, email string) (int64, error)

	BeginCreate(ctx context.Context) (CreateTx, error)
}

// CreateTx groups the quota bookkeeping and the insert into one unit.
type CreateTx interface {
	// RefreshUsage applies the lazy month reset and premium demotion.
	RefreshUsage(ctx context.Context, email string, now time.Time) error
	ReserveSlot(ctx context.Context, email string, policy QuotaPolicy) (account.Reservation, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	Commit() error
	Rollback() error
}

// QuotaPolicy configures the free-tier monthly cap.
type QuotaPolicy struct {
	Limit int
	// CountPremium keeps advancing the counter for premium accounts. They
	// are never gated either way.
	CountPremium bool
}

type ListFilter struct {
	Type      *Type
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
}

type Service struct {
	repo   Repository
	policy QuotaPolicy
	now    func() time.Time
}

func NewService(repo Repository, policy QuotaPolicy) *Service {
	return &Service{repo: repo, policy: policy, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Policy() QuotaPolicy {
	return s.policy
}

type CreateResult struct {
	Transaction *Transaction
	// Usage is nil for premium accounts.
	Usage *account.Usage
}

// Create records a transaction if the account still has allowance this
// month. The month reset is committed even when the cap rejects the request.
func (s *Service) Create(ctx context.Context, params CreateParams) (*CreateResult, error) {
	params, err := params.normalize()
	if err != nil {
		return nil, err
	}

	email := account.NormalizeEmail(params.Email)
	now := s.now()

	createTx, err := s.repo.BeginCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer createTx.Rollback()

	if err := createTx.RefreshUsage(ctx, email, now); err != nil {
		return nil, fmt.Errorf("refresh usage: %w", err)
	}

	res, err := createTx.ReserveSlot(ctx, email, s.policy)
	if err != nil {
		return nil, err
	}

	if !res.Applied {
		if err := createTx.Commit(); err != nil {
			return nil, fmt.Errorf("commit usage reset: %w", err)
		}

		return nil, &QuotaExceededError{Usage: account.NewUsage(res.Used, s.policy.Limit)}
	}

	date := now
	if params.Date != nil && !params.Date.IsZero() {
		date = *params.Date
	}

	tx := &Transaction{
		Email:       email,
		Type:        params.Type,
		Amount:      params.Amount,
		Description: params.Description,
		Category:    params.Category,
		Date:        date,
	}
	if err := createTx.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := createTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	result := &CreateResult{Transaction: tx}
	if !res.Premium {
		u := account.NewUsage(res.Used, s.policy.Limit)
		result.Usage = &u
	}

	return result, nil
}

// List returns the account's transactions, newest first.
func (s *Service) List(ctx context.Context, email string, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, account.NormalizeEmail(email), filter)
}

func (s *Service) Get(ctx context.Context, email string, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, account.NormalizeEmail(email), id)
}

func (s *Service) Update(ctx context.Context, email string, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, account.NormalizeEmail(email), id)
	if err != nil {
		return nil, err
	}

	if err := params.apply(tx); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, email string, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, account.NormalizeEmail(email), id)
}

// DeleteAll removes every transaction owned by email and reports how many
// were deleted. Ownership must be checked by the caller.
func (s *Service) DeleteAll(ctx context.Context, email string) (int64, error) {
	n, err := s.repo.DeleteAll(ctx, account.NormalizeEmail(email))
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}

	return n, nil
}

// IsQuotaExceeded unwraps a *QuotaExceededError.
func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe, true
	}

	return nil, false
}
