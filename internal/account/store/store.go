package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

const uniqueViolation = "23505"

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same statements
// can run standalone or inside a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	id, name, email, password_hash, security_question, security_answer,
	is_premium, premium_start_date, premium_end_date, payment_order_id, payment_id,
	monthly_transaction_count, last_transaction_reset_date, created_at, updated_at
`

// scanAccount expects the column order of selectAccountColumns.
func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var orderID, paymentID sql.NullString

	if err := s.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.SecurityQuestion, &a.SecurityAnswer,
		&a.IsPremium, &a.PremiumStartDate, &a.PremiumEndDate, &orderID, &paymentID,
		&a.MonthlyTransactionCount, &a.LastTransactionResetDate, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.PaymentOrderID = orderID.String
	a.PaymentID = paymentID.String

	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (name, email, password_hash, security_question, security_answer,
			monthly_transaction_count, last_transaction_reset_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.Name,
		a.Email,
		a.PasswordHash,
		a.SecurityQuestion,
		a.SecurityAnswer,
		a.LastTransactionResetDate,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return account.ErrEmailTaken
		}

		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE LOWER(email) = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, updated_at = NOW()
		WHERE LOWER(email) = $2
	`

	res, err := s.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return requireRow(res)
}

func (s *Store) ResetUsageIfStale(ctx context.Context, email string, now time.Time) (bool, error) {
	start, end := account.MonthBounds(now)

	query := `
		UPDATE accounts
		SET monthly_transaction_count = 0, last_transaction_reset_date = $2, updated_at = NOW()
		WHERE LOWER(email) = $1
		  AND (last_transaction_reset_date IS NULL
		       OR last_transaction_reset_date < $3
		       OR last_transaction_reset_date >= $4)
	`

	res, err := s.db.ExecContext(ctx, query, email, now, start, end)
	if err != nil {
		return false, fmt.Errorf("resetting usage: %w", err)
	}

	return affected(res)
}

func (s *Store) DemoteExpiredPremium(ctx context.Context, email string, now time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET is_premium = FALSE, updated_at = NOW()
		WHERE LOWER(email) = $1
		  AND is_premium
		  AND premium_end_date IS NOT NULL
		  AND premium_end_date < $2
	`

	res, err := s.db.ExecContext(ctx, query, email, now)
	if err != nil {
		return false, fmt.Errorf("demoting premium: %w", err)
	}

	return affected(res)
}

func (s *Store) ActivatePremium(ctx context.Context, email string, act account.Activation) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET is_premium = TRUE,
		    premium_start_date = $2,
		    premium_end_date = $3,
		    payment_order_id = $4,
		    payment_id = $5,
		    updated_at = NOW()
		WHERE LOWER(email) = $1
		RETURNING ` + selectAccountColumns

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, email, act.Start, act.End, act.OrderID, act.PaymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("activating premium: %w", err)
	}

	return a, nil
}

// ReserveTransactionSlot increments the monthly counter in a single
// conditional UPDATE: free-tier rows only match while below limit, so two
// concurrent callers can never both take the last slot. Premium rows always
// match; countPremium decides whether their counter still advances.
func (s *Store) ReserveTransactionSlot(ctx context.Context, email string, limit int, countPremium bool) (account.Reservation, error) {
	query := `
		UPDATE accounts
		SET monthly_transaction_count = monthly_transaction_count +
		        CASE WHEN is_premium AND NOT $3::boolean THEN 0 ELSE 1 END,
		    updated_at = NOW()
		WHERE LOWER(email) = $1
		  AND (is_premium OR monthly_transaction_count < $2::integer)
		RETURNING is_premium, monthly_transaction_count
	`

	r := account.Reservation{Applied: true}

	err := s.db.QueryRowContext(ctx, query, email, limit, countPremium).Scan(&r.Premium, &r.Used)
	if err == nil {
		return r, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return account.Reservation{}, fmt.Errorf("reserving transaction slot: %w", err)
	}

	// Nothing matched: either the account is missing or the cap is reached.
	r.Applied = false

	err = s.db.QueryRowContext(ctx,
		`SELECT is_premium, monthly_transaction_count FROM accounts WHERE LOWER(email) = $1`,
		email,
	).Scan(&r.Premium, &r.Used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Reservation{}, account.ErrNotFound
		}

		return account.Reservation{}, fmt.Errorf("reading usage: %w", err)
	}

	return r, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}

	return n > 0, nil
}

func requireRow(res sql.Result) error {
	ok, err := affected(res)
	if err != nil {
		return err
	}

	if !ok {
		return account.ErrNotFound
	}

	return nil
}
