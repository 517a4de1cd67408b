package view

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pfm/internal/importer"
	"github.com/MrJamesThe3rd/pfm/internal/matching"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

type reviewState int

const (
	reviewStateTimeframe reviewState = iota
	reviewStateReviewing
)

// ReviewModel walks through transactions filed under the fallback
// category and lets the user recategorize them. Every answer is learned
// so later imports and entries are categorized automatically.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service
	email           string

	state  reviewState
	picker TimeframePicker

	queue      []*transaction.Transaction
	current    *transaction.Transaction
	totalCount int
	input      textinput.Model

	loading bool
	status  string
}

func NewReviewModel(txSvc *transaction.Service, matchSvc *matching.Service, email string) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Category"
	ti.Width = 30

	return ReviewModel{
		txService:       txSvc,
		matchingService: matchSvc,
		email:           email,
		picker:          NewTimeframePicker(TimeframeAll),
		input:           ti,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

type loadUncategorizedMsg struct {
	txs []*transaction.Transaction
	err error
}

type reviewSuggestionMsg struct {
	id       string
	category string
}

type reviewSaveMsg struct {
	err error
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = reviewStateReviewing
		m.loading = true

		return m, m.loadCmd(msg.Filter)

	case loadUncategorizedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.totalCount = len(msg.txs)

		return m.next()

	case reviewSuggestionMsg:
		if m.current != nil && m.current.ID.String() == msg.id && msg.category != "" {
			m.input.SetValue(msg.category)
			m.input.CursorEnd()
		}

		return m, nil

	case reviewSaveMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(saveErrorText(msg.err))
			return m, nil
		}

		return m.next()

	case tea.KeyMsg:
		if m.state == reviewStateTimeframe {
			if msg.Type == tea.KeyEsc && m.picker.IsSelecting() {
				return m, Back
			}

			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)

			return m, cmd
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			return m.next()
		case tea.KeyEnter:
			if m.current != nil {
				return m, m.saveCmd(m.input.Value())
			}
		}
	}

	if m.state == reviewStateTimeframe {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m ReviewModel) loadCmd(filter transaction.ListFilter) tea.Cmd {
	svc, email := m.txService, m.email
	filter.Category = new(importer.FallbackCategory)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := svc.List(ctx, email, filter)

		return loadUncategorizedMsg{txs: txs, err: err}
	}
}

// next pops the queue and asks for a suggestion for the new head.
func (m ReviewModel) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.current = nil
		m.input.Blur()
		m.input.SetValue("")

		if m.totalCount == 0 {
			m.status = "Nothing to review."
		} else {
			m.status = "All done!"
		}

		return m, nil
	}

	m.current, m.queue = m.queue[0], m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)
	m.input.SetValue("")
	m.input.Focus()

	return m, tea.Batch(textinput.Blink, m.suggestCmd(m.current))
}

func (m ReviewModel) suggestCmd(tx *transaction.Transaction) tea.Cmd {
	svc, email := m.matchingService, m.email

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		category, err := svc.Suggest(ctx, email, tx.Description)
		if err != nil {
			slog.Warn("category suggestion failed", "error", err)
		}

		if category == importer.FallbackCategory {
			category = ""
		}

		return reviewSuggestionMsg{id: tx.ID.String(), category: category}
	}
}

func (m ReviewModel) saveCmd(category string) tea.Cmd {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == importer.FallbackCategory {
		return func() tea.Msg { return reviewSaveMsg{} }
	}

	txSvc, matchSvc, email, tx := m.txService, m.matchingService, m.email, m.current

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := txSvc.Update(ctx, email, tx.ID, transaction.UpdateParams{Category: &category}); err != nil {
			return reviewSaveMsg{err: err}
		}

		if err := matchSvc.Learn(ctx, email, tx.Description, category); err != nil {
			slog.Warn("failed to learn category", "error", err)
		}

		return reviewSaveMsg{}
	}
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.state == reviewStateTimeframe {
		return style.Render("Review uncategorized transactions\n\n" + m.picker.View())
	}

	if m.loading {
		return style.Render("Loading transactions...")
	}

	if m.current == nil {
		return style.Render(m.status + "\n\n(Esc to back)")
	}

	info := panelStyle.Render(fmt.Sprintf(
		"Date: %s  |  Type: %s  |  Amount: %s\n%s",
		FormatDate(m.current.Date),
		m.current.Type,
		FormatAmount(m.current.Amount),
		m.current.Description,
	))

	return style.Render(fmt.Sprintf("%s\n\n%s\n\nCategory:\n%s\n\n%s",
		m.status, info, m.input.View(),
		faintStyle.Render("Enter: save & next | Tab: skip | Esc: back")))
}
