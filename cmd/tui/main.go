package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pfm/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pfm/internal/account"
	accountStore "github.com/MrJamesThe3rd/pfm/internal/account/store"
	"github.com/MrJamesThe3rd/pfm/internal/budget"
	"github.com/MrJamesThe3rd/pfm/internal/config"
	"github.com/MrJamesThe3rd/pfm/internal/credential"
	"github.com/MrJamesThe3rd/pfm/internal/database"
	"github.com/MrJamesThe3rd/pfm/internal/export"
	"github.com/MrJamesThe3rd/pfm/internal/importer"
	"github.com/MrJamesThe3rd/pfm/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/pfm/internal/matching/store"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pfm/internal/transaction/store"
)

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewDashboard
	ViewList
	ViewAdd
	ViewBudgets
	ViewImport
	ViewReview
	ViewExport
)

type model struct {
	svc     view.Services
	account *account.Account

	currentView View
	width       int
	height      int

	loginView     view.LoginModel
	dashboardView view.DashboardModel
	listView      view.ListModel
	addView       view.AddModel
	budgetView    view.BudgetModel
	importView    view.ImportModel
	reviewView    view.ReviewModel
	exportView    view.ExportModel
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	budgetPath := cfg.Budget.File
	if budgetPath == "" {
		budgetPath, err = budget.DefaultPath()
		if err != nil {
			slog.Error("failed to locate budget file", "error", err)
			os.Exit(1)
		}
	}

	tokens := credential.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.ResetTokenTTL)
	accSvc := account.NewService(accountStore.New(db), credential.NewHasher(cfg.Auth.BcryptCost), tokens, cfg.Quota.MonthlyLimit)
	txSvc := transaction.NewService(txStore.New(db), transaction.QuotaPolicy{
		Limit:        cfg.Quota.MonthlyLimit,
		CountPremium: cfg.Quota.CountPremium,
	})
	matchSvc := matching.NewService(matchingStore.New(db))

	svc := view.Services{
		Accounts:     accSvc,
		Transactions: txSvc,
		Matching:     matchSvc,
		Importer:     importer.NewService(txSvc, matchSvc),
		Export:       export.NewService(txSvc),
		Budgets:      budget.NewFileStore(budgetPath),
	}

	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(accSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) email() string {
	return m.account.Email
}

// open builds a fresh screen so every visit reloads its data.
func (m model) open(v View) (model, tea.Cmd) {
	m.currentView = v
	size := func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }

	var cmd tea.Cmd

	switch v {
	case ViewDashboard:
		m.dashboardView = view.NewDashboardModel(m.svc, m.email())
		cmd = m.dashboardView.Init()
	case ViewList:
		m.listView = view.NewListModel(m.svc.Transactions, m.email())
		cmd = tea.Batch(m.listView.Init(), size)
	case ViewAdd:
		m.addView = view.NewAddModel(m.svc.Transactions, m.svc.Matching, m.email())
		cmd = m.addView.Init()
	case ViewBudgets:
		m.budgetView = view.NewBudgetModel(m.svc.Budgets, m.email())
		cmd = m.budgetView.Init()
	case ViewImport:
		m.importView = view.NewImportModel(m.svc.Importer, m.email())
		cmd = m.importView.Init()
	case ViewReview:
		m.reviewView = view.NewReviewModel(m.svc.Transactions, m.svc.Matching, m.email())
		cmd = m.reviewView.Init()
	case ViewExport:
		m.exportView = view.NewExportModel(m.svc.Export, m.email())
		cmd = m.exportView.Init()
	}

	return m, cmd
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case view.LoggedInMsg:
		m.account = msg.Account
		slog.Info("signed in", "email", msg.Account.Email)

		return m.open(ViewDashboard)

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewDashboard)
			case "2":
				return m.open(ViewList)
			case "3":
				return m.open(ViewAdd)
			case "4":
				return m.open(ViewBudgets)
			case "5":
				return m.open(ViewImport)
			case "6":
				return m.open(ViewReview)
			case "7":
				return m.open(ViewExport)
			}

			return m, nil
		}
	}

	var (
		newModel tea.Model
		cmd      tea.Cmd
	)

	switch m.currentView {
	case ViewLogin:
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewDashboard:
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewList:
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewAdd:
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewBudgets:
		newModel, cmd = m.budgetView.Update(msg)
		m.budgetView = newModel.(view.BudgetModel)
	case ViewImport:
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewExport:
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Personal Finance: %s\n\n", m.account.Name) +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Add Transaction\n" +
				"4. Budgets\n" +
				"5. Import CSV\n" +
				"6. Review Uncategorized\n" +
				"7. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewList:
		return m.listView.View()
	case ViewAdd:
		return m.addView.View()
	case ViewBudgets:
		return m.budgetView.View()
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

// setupLogging moves log output off the terminal once the UI owns it.
// Setting TUI_LOG_FILE keeps the logs in that file.
func setupLogging() (io.Closer, error) {
	path := os.Getenv("TUI_LOG_FILE")
	if path == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}

	return tea.LogToFile(path, "pfm")
}

func main() {
	m := initialModel()

	logFile, err := setupLogging()
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		fmt.Fprintln(os.Stderr, "pfm:", err)
		logFile.Close()
		os.Exit(1)
	}
}
