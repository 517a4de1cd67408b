package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

type listState int

const (
	listStateTimeframe listState = iota
	listStateBrowse
	listStateEdit
	listStateDelete
)

type ListModel struct {
	CommonModel
	txService *transaction.Service
	email     string

	state     listState
	picker    TimeframePicker
	timeframe Timeframe
	filter    transaction.ListFilter

	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form
	edit  *txFields

	loading bool
	status  string
}

// txFields backs the add and edit forms.
type txFields struct {
	txType      transaction.Type
	amount      string
	description string
	category    string
	date        string
	confirm     bool
}

func NewListModel(txSvc *transaction.Service, email string) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 9},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		txService: txSvc,
		email:     email,
		picker:    NewTimeframePicker(TimeframeThisMonth),
		table:     t,
	}
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.timeframe = msg.Timeframe
		m.filter = msg.Filter
		m.state = listStateBrowse
		m.loading = true

		return m, m.loadTxsCmd()

	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		if len(m.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case listSaveMsg:
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		m.status = msg.done
		if msg.err != nil {
			m.status = errorStyle.Render(saveErrorText(msg.err))
		}

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case listStateTimeframe:
		return m.updateTimeframe(msg)
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit, listStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m ListModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.picker.Reset()
			m.state = listStateTimeframe

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e", "enter":
			return m.startEdit()
		case "x", "delete":
			return m.startDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) startEdit() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.edit = &txFields{
		txType:      tx.Type,
		amount:      tx.Amount.String(),
		description: tx.Description,
		category:    tx.Category,
		date:        FormatDate(tx.Date),
	}
	m.form = transactionForm(m.edit, true).WithWidth(45).WithShowHelp(false)
	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) startDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.edit = &txFields{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q (%s)?", tx.Description, FormatAmount(tx.Amount))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.edit.confirm),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = listStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == listStateDelete {
		return m, m.deleteCmd()
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.state == listStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	header := fmt.Sprintf("[t] Timeframe: %s | %d transactions", activeStyle(m.timeframe.String()), len(m.txs))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render("e: edit | x: delete | r: refresh | Esc: back"),
	)

	if (m.state == listStateEdit || m.state == listStateDelete) && m.form != nil {
		title := "Edit Transaction"
		if m.state == listStateDelete {
			title = "Delete Transaction"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			analytics.Label(tx.Category),
			FormatAmount(tx.Amount),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	svc, email, filter := m.txService, m.email, m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := svc.List(ctx, email, filter)

		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	done string
	err  error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	svc, email, fields := m.txService, m.email, *m.edit

	return func() tea.Msg {
		params, err := fields.updateParams()
		if err != nil {
			return listSaveMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := svc.Update(ctx, email, tx.ID, params); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{done: "Transaction updated."}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil || !m.edit.confirm {
		return func() tea.Msg { return listSaveMsg{} }
	}

	svc, email := m.txService, m.email

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, email, tx.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{done: "Transaction deleted."}
	}
}

// transactionForm edits the fields of f. New transactions ask for the
// category in a second step, once a suggestion is known.
func transactionForm(f *txFields, withCategory bool) *huh.Form {
	fields := []huh.Field{
		huh.NewSelect[transaction.Type]().
			Title("Type").
			Options(
				huh.NewOption("Expense", transaction.TypeExpense),
				huh.NewOption("Income", transaction.TypeIncome),
				huh.NewOption("Savings", transaction.TypeSavings),
			).
			Value(&f.txType),
		huh.NewInput().
			Title("Amount").
			Value(&f.amount).
			Validate(validateAmountInput),
		huh.NewInput().
			Title("Description").
			Value(&f.description).
			Validate(requireText("description")),
		huh.NewInput().
			Title("Date").
			Placeholder("YYYY-MM-DD, blank for today").
			Value(&f.date).
			Validate(validateDateInput),
	}

	if withCategory {
		fields = append(fields, huh.NewInput().
			Title("Category").
			Value(&f.category).
			Validate(requireText("category")))
	}

	return huh.NewForm(huh.NewGroup(fields...))
}

func (f txFields) updateParams() (transaction.UpdateParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return transaction.UpdateParams{}, errors.New("invalid amount")
	}

	params := transaction.UpdateParams{
		Type:        &f.txType,
		Amount:      &amount,
		Description: &f.description,
		Category:    &f.category,
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

func validateAmountInput(s string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number, e.g. 12.50")
	}

	if amount.IsNegative() {
		return errors.New("amount must be positive")
	}

	return nil
}

func validateDateInput(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	_, err := parseDateInput(s)

	return err
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func saveErrorText(err error) string {
	if qe, ok := transaction.IsQuotaExceeded(err); ok {
		return fmt.Sprintf("Monthly transaction limit reached (%d/%d). Upgrade to Premium!", qe.Usage.Used, qe.Usage.Limit)
	}

	var verr *transaction.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}

	if errors.Is(err, transaction.ErrNotFound) {
		return "Transaction not found or unauthorized"
	}

	return fmt.Sprintf("Error: %v", err)
}
