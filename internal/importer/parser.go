package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/pfm/internal/encoding"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

// ErrUnknownFormat is returned when no header row matches a profile.
var ErrUnknownFormat = errors.New("no supported CSV header found: need Date, Description and Amount (or Debit/Credit) columns")

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	time.RFC3339,
}

// Row is a parsed data row. Line is 1-based in the source file.
type Row struct {
	Line   int
	Params transaction.CreateParams
}

// RowError explains why a data row was skipped.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Parsed struct {
	Profile string
	Charset enc.Charset
	Rows    []Row
	Skipped []RowError
}

// Parse decodes r to UTF-8, sniffs the delimiter, finds the first header
// row matching a profile and reads every data row after it. Rows that
// cannot be read are reported in Skipped rather than failing the file.
func Parse(r io.Reader) (*Parsed, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	delim := sniffDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := readRecords(reader)
	if err != nil {
		return nil, err
	}

	profile, cols, headerIdx := detectProfile(records)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	p := &Parsed{Profile: profile.Name, Charset: charset}
	decimalComma := delim == ';'

	for _, rec := range records[headerIdx+1:] {
		if blank(rec.fields) {
			continue
		}

		params, err := parseRow(profile, cols, rec.fields, decimalComma)
		if err != nil {
			p.Skipped = append(p.Skipped, RowError{Line: rec.line, Reason: err.Error()})
			continue
		}

		p.Rows = append(p.Rows, Row{Line: rec.line, Params: params})
	}

	return p, nil
}

// sniffDelimiter picks ';' or a tab when either outnumbers commas on the
// first non-empty line.
func sniffDelimiter(data []byte) rune {
	for line := range bytes.Lines(data) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		commas := bytes.Count(line, []byte(","))
		semis := bytes.Count(line, []byte(";"))
		tabs := bytes.Count(line, []byte("\t"))

		switch {
		case semis > commas && semis >= tabs:
			return ';'
		case tabs > commas:
			return '\t'
		}

		return ','
	}

	return ','
}

type record struct {
	line   int
	fields []string
}

// readRecords keeps the source line of every record; csv.Reader skips
// empty lines, so record indexes do not map to lines.
func readRecords(reader *csv.Reader) ([]record, error) {
	var records []record

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
}

func detectProfile(records []record) (*Profile, colIndex, int) {
	for rowIdx, rec := range records {
		cols := headerIndex(rec.fields)

		for i := range profiles {
			if profiles[i].matches(cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func parseRow(p *Profile, cols colIndex, row []string, decimalComma bool) (transaction.CreateParams, error) {
	var params transaction.CreateParams

	dateStr := cellValue(row, cols.lookup(p.DateCol))
	if dateStr == "" {
		return params, errors.New("missing date")
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return params, err
	}

	desc := cellValue(row, cols.lookup(p.DescCol))
	if desc == "" {
		return params, errors.New("missing description")
	}

	amount, txType, err := rowAmount(p, cols, row, decimalComma)
	if err != nil {
		return params, err
	}

	params = transaction.CreateParams{
		Type:        txType,
		Amount:      amount,
		Description: desc,
		Category:    strings.ToLower(cellValue(row, cols.lookup(p.CategoryCol))),
		Date:        &date,
	}

	return params, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func rowAmount(p *Profile, cols colIndex, row []string, decimalComma bool) (decimal.Decimal, transaction.Type, error) {
	switch p.AmountMode {
	case amountTyped:
		txType := transaction.Type(strings.ToLower(cellValue(row, cols.lookup(p.TypeCol))))
		if !txType.Valid() {
			return decimal.Zero, "", fmt.Errorf("invalid type %q", txType)
		}

		amount, err := amountCell(row, cols.lookup(p.AmountCol), decimalComma)
		if err != nil {
			return decimal.Zero, "", err
		}

		if amount.IsNegative() {
			return decimal.Zero, "", errors.New("amount must be positive")
		}

		return amount, txType, nil
	case amountSigned:
		amount, err := amountCell(row, cols.lookup(p.AmountCol), decimalComma)
		if err != nil {
			return decimal.Zero, "", err
		}

		return signed(amount)
	case amountSplit:
		if s := cellValue(row, cols.lookup(p.DebitCol)); s != "" {
			amount, err := parseAmount(s, decimalComma)
			if err == nil && !amount.IsZero() {
				return amount.Abs(), transaction.TypeExpense, nil
			}
		}

		if s := cellValue(row, cols.lookup(p.CreditCol)); s != "" {
			amount, err := parseAmount(s, decimalComma)
			if err == nil && !amount.IsZero() {
				return amount.Abs(), transaction.TypeIncome, nil
			}
		}

		return decimal.Zero, "", errors.New("no debit or credit amount")
	}

	return decimal.Zero, "", errors.New("unsupported amount layout")
}

func amountCell(row []string, idx int, decimalComma bool) (decimal.Decimal, error) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, errors.New("missing amount")
	}

	amount, err := parseAmount(s, decimalComma)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	return amount, nil
}

func signed(amount decimal.Decimal) (decimal.Decimal, transaction.Type, error) {
	switch {
	case amount.IsZero():
		return decimal.Zero, "", errors.New("zero amount")
	case amount.IsNegative():
		return amount.Neg(), transaction.TypeExpense, nil
	}

	return amount, transaction.TypeIncome, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
