package importer

import "strings"

// amountMode determines how amount and type are read from a row.
type amountMode int

const (
	// amountTyped reads an unsigned amount plus an explicit type column,
	// the layout of this application's own export.
	amountTyped amountMode = iota
	// amountSigned reads one signed column; negatives are expenses.
	amountSigned
	// amountSplit reads separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a supported CSV format.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	CategoryCol string // optional except for amountTyped
	TypeCol     string // amountTyped only
	AmountMode  amountMode
	AmountCol   string // amountTyped and amountSigned
	DebitCol    string // amountSplit only
	CreditCol   string // amountSplit only
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountTyped:
		cols = append(cols, p.TypeCol, p.CategoryCol, p.AmountCol)
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:        "pfm",
		DateCol:     "date",
		DescCol:     "description",
		CategoryCol: "category",
		TypeCol:     "type",
		AmountMode:  amountTyped,
		AmountCol:   "amount",
	},
	{
		Name:        "debit-credit",
		DateCol:     "date",
		DescCol:     "description",
		CategoryCol: "category",
		AmountMode:  amountSplit,
		DebitCol:    "debit",
		CreditCol:   "credit",
	},
	{
		Name:        "signed",
		DateCol:     "date",
		DescCol:     "description",
		CategoryCol: "category",
		AmountMode:  amountSigned,
		AmountCol:   "amount",
	},
}

// colIndex maps lowercased column names to their position.
type colIndex map[string]int

func (c colIndex) lookup(name string) int {
	if name == "" {
		return -1
	}

	i, ok := c[name]
	if !ok {
		return -1
	}

	return i
}

func headerIndex(row []string) colIndex {
	cols := make(colIndex, len(row))

	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}

		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	return cols
}

func (p *Profile) matches(cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}
