package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

const minPasswordLength = 6

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	// ResetUsageIfStale zeroes the monthly counter and stamps now, but only
	// when the stored stamp is missing or outside now's calendar month.
	ResetUsageIfStale(ctx context.Context, email string, now time.Time) (bool, error)
	// DemoteExpiredPremium clears the premium flag when the grant ended before now.
	DemoteExpiredPremium(ctx context.Context, email string, now time.Time) (bool, error)
	ActivatePremium(ctx context.Context, email string, act Activation) (*Account, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(accountID uuid.UUID, email string) (string, error)
	IssueReset(email string) (string, error)
	VerifyReset(token string) (string, error)
}

type Service struct {
	repo         Repository
	hasher       PasswordHasher
	tokens       TokenIssuer
	monthlyLimit int
	now          func() time.Time
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer, monthlyLimit int) *Service {
	return &Service{
		repo:         repo,
		hasher:       hasher,
		tokens:       tokens,
		monthlyLimit: monthlyLimit,
		now:          time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Session is an authenticated account together with its bearer token.
type Session struct {
	Account *Account
	Token   string
}

type RegisterParams struct {
	Name           string
	Email          string
	Password       string
	SecurityAnswer string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if len(params.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	answer := NormalizeAnswer(params.SecurityAnswer)
	if answer == "" {
		answer = DefaultSecurityAnswer
	}

	now := s.now()
	a := &Account{
		Name:                     name,
		Email:                    NormalizeEmail(params.Email),
		PasswordHash:             hash,
		SecurityQuestion:         DefaultSecurityQuestion,
		SecurityAnswer:           answer,
		LastTransactionResetDate: &now,
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return s.session(a)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := s.hasher.Compare(a.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.refreshPremium(ctx, a); err != nil {
		return nil, err
	}

	return s.session(a)
}

// Get returns the account with any lapsed premium grant already demoted.
func (s *Service) Get(ctx context.Context, email string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if err := s.refreshPremium(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) SecurityQuestion(ctx context.Context, email string) (string, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	return a.SecurityQuestion, nil
}

// VerifySecurityAnswer checks the recovery answer and, on success, returns a
// short-lived token that authorizes a single password reset.
func (s *Service) VerifySecurityAnswer(ctx context.Context, email, answer string) (string, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	stored := []byte(NormalizeAnswer(a.SecurityAnswer))
	if subtle.ConstantTimeCompare(stored, []byte(NormalizeAnswer(answer))) != 1 {
		return "", ErrIncorrectAnswer
	}

	token, err := s.tokens.IssueReset(a.Email)
	if err != nil {
		return "", fmt.Errorf("issuing reset token: %w", err)
	}

	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	email, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return ErrInvalidResetToken
	}

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, email, hash)
}

type PremiumStatus struct {
	IsPremium      bool
	PremiumEndDate *time.Time
	// Expired is set when this read demoted a lapsed grant.
	Expired bool
}

func (s *Service) PremiumStatus(ctx context.Context, email string) (*PremiumStatus, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	expired := a.PremiumExpired(s.now())
	if err := s.refreshPremium(ctx, a); err != nil {
		return nil, err
	}

	return &PremiumStatus{
		IsPremium:      a.IsPremium,
		PremiumEndDate: a.PremiumEndDate,
		Expired:        expired,
	}, nil
}

type UsageStatus struct {
	IsPremium bool
	// Usage is nil for premium accounts, which are not capped.
	Usage *Usage
}

// Usage reports the monthly allowance, persisting the lazy month reset when due.
func (s *Service) Usage(ctx context.Context, email string) (*UsageStatus, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if err := s.refreshPremium(ctx, a); err != nil {
		return nil, err
	}

	now := s.now()
	if NeedsUsageReset(a.LastTransactionResetDate, now) {
		if _, err := s.repo.ResetUsageIfStale(ctx, a.Email, now); err != nil {
			return nil, err
		}

		a.MonthlyTransactionCount = 0
		a.LastTransactionResetDate = &now
	}

	status := &UsageStatus{IsPremium: a.IsPremium}
	if !a.IsPremium {
		u := NewUsage(a.MonthlyTransactionCount, s.monthlyLimit)
		status.Usage = &u
	}

	return status, nil
}

func (s *Service) ActivatePremium(ctx context.Context, email, orderID, paymentID string) (*Account, error) {
	return s.repo.ActivatePremium(ctx, NormalizeEmail(email), NewActivation(s.now(), orderID, paymentID))
}

func (s *Service) refreshPremium(ctx context.Context, a *Account) error {
	now := s.now()
	if !a.PremiumExpired(now) {
		return nil
	}

	if _, err := s.repo.DemoteExpiredPremium(ctx, a.Email, now); err != nil {
		return fmt.Errorf("demoting expired premium: %w", err)
	}

	a.IsPremium = false

	return nil
}

func (s *Service) session(a *Account) (*Session, error) {
	token, err := s.tokens.Issue(a.ID, a.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &Session{Account: a, Token: token}, nil
}
