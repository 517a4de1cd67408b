package view

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/matching"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

type addState int

const (
	addStateDetails addState = iota
	addStateSuggesting
	addStateCategory
	addStateSaving
	addStateResult
)

type AddModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service
	email           string

	state     addState
	form      *huh.Form
	fields    *txFields
	learn     *bool
	suggested string

	result string
	err    error
}

func NewAddModel(txSvc *transaction.Service, matchSvc *matching.Service, email string) AddModel {
	m := AddModel{
		txService:       txSvc,
		matchingService: matchSvc,
		email:           email,
	}

	return m.reset()
}

func (m AddModel) reset() AddModel {
	m.fields = &txFields{txType: transaction.TypeExpense}
	m.learn = new(false)
	m.suggested = ""
	m.form = transactionForm(m.fields, false).WithWidth(50).WithShowHelp(false)
	m.state = addStateDetails
	m.result = ""
	m.err = nil

	return m
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

type suggestionMsg struct {
	category string
}

type createResultMsg struct {
	result *transaction.CreateResult
	err    error
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestionMsg:
		m.suggested = msg.category
		m.fields.category = msg.category
		*m.learn = msg.category == ""
		m.form = m.categoryForm()
		m.state = addStateCategory

		return m, m.form.Init()

	case createResultMsg:
		m.state = addStateResult
		m.err = msg.err

		if msg.err == nil {
			m.result = createdText(msg.result)
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == addStateResult || m.state == addStateDetails {
				return m.reset(), Back
			}

			m = m.reset()

			return m, m.form.Init()
		}

		if m.state == addStateResult && msg.Type == tea.KeyEnter {
			m = m.reset()
			return m, m.form.Init()
		}
	}

	if m.state != addStateDetails && m.state != addStateCategory {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == addStateDetails {
		m.state = addStateSuggesting
		return m, m.suggestCmd()
	}

	m.state = addStateSaving

	return m, m.createCmd()
}

func (m AddModel) categoryForm() *huh.Form {
	desc := "No learned rule matched; type a category."
	if m.suggested != "" {
		desc = fmt.Sprintf("Suggested from your rules: %s", m.suggested)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Category").
				Description(desc).
				Value(&m.fields.category).
				Validate(requireText("category")),
			huh.NewConfirm().
				Title("Use this category for similar descriptions?").
				Affirmative("Yes").
				Negative("No").
				Value(m.learn),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) suggestCmd() tea.Cmd {
	svc, email, description := m.matchingService, m.email, m.fields.description

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		category, err := svc.Suggest(ctx, email, description)
		if err != nil {
			slog.Warn("category suggestion failed", "error", err)
		}

		return suggestionMsg{category: category}
	}
}

func (m AddModel) createCmd() tea.Cmd {
	txSvc, matchSvc, email := m.txService, m.matchingService, m.email
	fields, learn := *m.fields, *m.learn

	return func() tea.Msg {
		params, err := fields.createParams(email)
		if err != nil {
			return createResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := txSvc.Create(ctx, params)
		if err != nil {
			return createResultMsg{err: err}
		}

		if learn {
			if err := matchSvc.Learn(ctx, email, params.Description, params.Category); err != nil {
				slog.Warn("failed to learn category", "error", err)
			}
		}

		return createResultMsg{result: res}
	}
}

func (f txFields) createParams(email string) (transaction.CreateParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return transaction.CreateParams{}, errors.New("invalid amount")
	}

	params := transaction.CreateParams{
		Email:       email,
		Type:        f.txType,
		Amount:      amount,
		Description: f.description,
		Category:    strings.ToLower(strings.TrimSpace(f.category)),
	}

	if d := strings.TrimSpace(f.date); d != "" {
		date, err := parseDateInput(d)
		if err != nil {
			return params, err
		}

		params.Date = &date
	}

	return params, nil
}

func createdText(res *transaction.CreateResult) string {
	text := fmt.Sprintf("Saved %s %s (%s).", res.Transaction.Type, FormatAmount(res.Transaction.Amount), res.Transaction.Category)
	if u := res.Usage; u != nil {
		text += fmt.Sprintf("\n%d of %d free transactions used this month, %d left.", u.Used, u.Limit, u.Remaining)
	}

	return text
}

func (m AddModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case addStateDetails, addStateCategory:
		return style.Render(titleStyle.Render("New Transaction") + "\n\n" + m.form.View() +
			"\n" + faintStyle.Render("Esc: back"))
	case addStateSuggesting:
		return style.Render("Looking up a category...")
	case addStateSaving:
		return style.Render("Saving...")
	case addStateResult:
		body := successStyle.Render(m.result)
		if m.err != nil {
			body = errorStyle.Render(saveErrorText(m.err))

			if _, ok := transaction.IsQuotaExceeded(m.err); ok {
				body += "\n" + faintStyle.Render("Upgrade through the web app to add more this month.")
			}
		}

		return style.Render(body + "\n\n" + faintStyle.Render("Enter: add another | Esc: back"))
	}

	return ""
}
