// Package importer loads transactions from CSV files: this application's
// own export, or a bank statement with a signed amount or debit/credit
// columns.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	enc "github.com/MrJamesThe3rd/pfm/internal/encoding"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

// FallbackCategory is used when a row has no category and no learned
// mapping matches its description.
const FallbackCategory = "other"

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer

type Creator interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.CreateResult, error)
}

type Suggester interface {
	Suggest(ctx context.Context, email, description string) (string, error)
}

type Service struct {
	creator   Creator
	suggester Suggester
}

func NewService(creator Creator, suggester Suggester) *Service {
	return &Service{creator: creator, suggester: suggester}
}

type Result struct {
	Profile  string                     `json:"profile"`
	Charset  enc.Charset                `json:"charset"`
	Imported []*transaction.Transaction `json:"imported"`
	Skipped  []RowError                 `json:"skipped"`
	// NotAttempted counts rows left over once the monthly quota ran out.
	NotAttempted int            `json:"notAttempted"`
	QuotaReached bool           `json:"quotaReached"`
	Usage        *account.Usage `json:"usageInfo,omitempty"`
}

// Import parses r and records each row for email. Every row counts
// against the monthly quota; the import stops at the first rejection.
// Rows committed before an unexpected error stay committed.
func (s *Service) Import(ctx context.Context, email string, r io.Reader) (*Result, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Profile: parsed.Profile,
		Charset: parsed.Charset,
		Skipped: parsed.Skipped,
	}

	for i, row := range parsed.Rows {
		params := row.Params
		params.Email = email

		if params.Category == "" {
			params.Category = s.suggest(ctx, email, params.Description)
		}

		created, err := s.creator.Create(ctx, params)
		if qe, ok := transaction.IsQuotaExceeded(err); ok {
			result.QuotaReached = true
			result.Usage = &qe.Usage
			result.NotAttempted = len(parsed.Rows) - i

			break
		}

		var verr *transaction.ValidationError
		if errors.As(err, &verr) {
			result.Skipped = append(result.Skipped, RowError{Line: row.Line, Reason: verr.Message})
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("import line %d after %d rows: %w", row.Line, len(result.Imported), err)
		}

		result.Imported = append(result.Imported, created.Transaction)
		result.Usage = created.Usage
	}

	slog.Info("csv import finished",
		"profile", result.Profile,
		"charset", result.Charset,
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
		"quotaReached", result.QuotaReached,
	)

	return result, nil
}

func (s *Service) suggest(ctx context.Context, email, description string) string {
	category, err := s.suggester.Suggest(ctx, email, description)
	if err != nil {
		slog.Warn("category suggestion failed", "error", err)
		return FallbackCategory
	}

	if category == "" {
		return FallbackCategory
	}

	return category
}
