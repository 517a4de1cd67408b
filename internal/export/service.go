package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

// Header is the column layout shared with the CSV importer.
var Header = []string{"Date", "Type", "Category", "Description", "Amount"}

const DateLayout = "2006-01-02"

// Lister returns an account's transactions, newest first.
type Lister interface {
	List(ctx context.Context, email string, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Options struct {
	// BOM prefixes the output with a UTF-8 byte order mark so spreadsheet
	// apps detect the encoding.
	BOM bool
}

// Service writes an account's transactions as CSV.
type Service struct {
	transactions Lister
}

func NewService(transactions Lister) *Service {
	return &Service{transactions: transactions}
}

// WriteCSV writes the header and one row per transaction matching filter.
// It returns the number of rows written.
func (s *Service) WriteCSV(ctx context.Context, email string, filter transaction.ListFilter, w io.Writer, opts Options) (int, error) {
	txs, err := s.transactions.List(ctx, email, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	out := w

	var bom *transform.Writer
	if opts.BOM {
		bom = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		out = bom
	}

	cw := csv.NewWriter(out)

	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		row := []string{
			tx.Date.UTC().Format(DateLayout),
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	if bom != nil {
		if err := bom.Close(); err != nil {
			return 0, fmt.Errorf("flushing encoder: %w", err)
		}
	}

	return len(txs), nil
}

// Filename is the download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("financial-data-%s.csv", now.Format(DateLayout))
}
