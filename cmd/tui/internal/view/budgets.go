package view

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/budget"
)

type budgetState int

const (
	budgetStateLoading budgetState = iota
	budgetStateEditing
	budgetStateResult
)

// BudgetModel edits the monthly limits stored on this machine.
type BudgetModel struct {
	CommonModel
	store *budget.FileStore
	email string

	state  budgetState
	form   *huh.Form
	limits *budgetFields

	status string
	err    error
}

type budgetFields struct {
	categories []string
	values     map[string]*string

	newCategory string
	newLimit    string
}

func NewBudgetModel(store *budget.FileStore, email string) BudgetModel {
	return BudgetModel{store: store, email: email}
}

type budgetsLoadedMsg struct {
	budgets budget.Budgets
	err     error
}

type budgetsSavedMsg struct {
	err error
}

func (m BudgetModel) Init() tea.Cmd {
	store, email := m.store, m.email

	return func() tea.Msg {
		b, err := store.Load(email)
		return budgetsLoadedMsg{budgets: b, err: err}
	}
}

func (m BudgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case budgetsLoadedMsg:
		if msg.err != nil {
			m.state = budgetStateResult
			m.err = msg.err

			return m, nil
		}

		m.limits = newBudgetFields(msg.budgets)
		m.form = budgetForm(m.limits)
		m.state = budgetStateEditing

		return m, m.form.Init()

	case budgetsSavedMsg:
		m.state = budgetStateResult
		m.err = msg.err
		m.status = "Budgets saved."

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.state != budgetStateEditing {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	b, err := m.limits.budgets()
	if err != nil {
		m.state = budgetStateResult
		m.err = err

		return m, nil
	}

	store, email := m.store, m.email

	return m, func() tea.Msg {
		return budgetsSavedMsg{err: store.Save(email, b)}
	}
}

func newBudgetFields(b budget.Budgets) *budgetFields {
	f := &budgetFields{
		categories: slices.Sorted(maps.Keys(b)),
		values:     make(map[string]*string, len(b)),
	}

	for category, limit := range b {
		f.values[category] = new(limit.String())
	}

	return f
}

func budgetForm(f *budgetFields) *huh.Form {
	fields := make([]huh.Field, 0, len(f.categories)+2)

	for _, category := range f.categories {
		fields = append(fields, huh.NewInput().
			Title(analytics.Label(category)).
			Description("0 disables alerts").
			Value(f.values[category]).
			Validate(validateLimit))
	}

	fields = append(fields,
		huh.NewInput().
			Title("Add category").
			Placeholder("optional").
			Value(&f.newCategory),
		huh.NewInput().
			Title("Monthly limit for the new category").
			Value(&f.newLimit).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}

				return validateLimit(s)
			}),
	)

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
}

func validateLimit(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number")
	}

	if d.IsNegative() {
		return budget.ErrNegative
	}

	return nil
}

func (f *budgetFields) budgets() (budget.Budgets, error) {
	b := make(budget.Budgets, len(f.categories)+1)

	for _, category := range f.categories {
		limit, err := decimal.NewFromString(strings.TrimSpace(*f.values[category]))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid limit", category)
		}

		b[category] = limit
	}

	if category := strings.ToLower(strings.TrimSpace(f.newCategory)); category != "" {
		limit := decimal.Zero

		if s := strings.TrimSpace(f.newLimit); s != "" {
			var err error

			limit, err = decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid limit", category)
			}
		}

		b[category] = limit
	}

	return b, b.Validate()
}

func (m BudgetModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case budgetStateLoading:
		return style.Render("Loading budgets...")
	case budgetStateEditing:
		return style.Render(titleStyle.Render("Monthly Budgets") + "\n\n" + m.form.View() +
			"\n" + faintStyle.Render("Esc: back without saving"))
	case budgetStateResult:
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}
