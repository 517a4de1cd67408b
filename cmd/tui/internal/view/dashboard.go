package view

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/budget"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

const (
	dashboardTimeout = 10 * time.Second
	trendMonths      = 6
	barWidth         = 24
)

// Dashboard is everything the overview screen shows.
type Dashboard struct {
	Snapshot analytics.Snapshot
	Usage    *account.UsageStatus
	Premium  *account.PremiumStatus
	Progress map[string]analytics.Progress
	Alerts   []analytics.Alert
	Trend    []analytics.MonthPoint
}

// LoadDashboard reads transactions, usage, premium state and the local
// budgets concurrently and derives the analytics from them.
func LoadDashboard(ctx context.Context, svc Services, email string, now time.Time) (*Dashboard, error) {
	var (
		txs     []*transaction.Transaction
		usage   *account.UsageStatus
		premium *account.PremiumStatus
		budgets budget.Budgets
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		txs, err = svc.Transactions.List(ctx, email, transaction.ListFilter{})
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		usage, err = svc.Accounts.Usage(ctx, email)
		if err != nil {
			return fmt.Errorf("reading usage: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		premium, err = svc.Accounts.PremiumStatus(ctx, email)
		if err != nil {
			return fmt.Errorf("reading premium status: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		budgets, err = svc.Budgets.Load(email)
		if err != nil {
			return fmt.Errorf("loading budgets: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress := analytics.BudgetProgress(txs, budgets)

	return &Dashboard{
		Snapshot: analytics.Aggregate(txs),
		Usage:    usage,
		Premium:  premium,
		Progress: progress,
		Alerts:   analytics.Alerts(progress),
		Trend:    analytics.MonthlyTrend(txs, now, trendMonths),
	}, nil
}

type dashboardMsg struct {
	dashboard *Dashboard
	err       error
}

type DashboardModel struct {
	CommonModel
	svc   Services
	email string

	dashboard *Dashboard
	loading   bool
	err       error
}

func NewDashboardModel(svc Services, email string) DashboardModel {
	return DashboardModel{svc: svc, email: email, loading: true}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) loadCmd() tea.Cmd {
	svc, email := m.svc, m.email

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dashboardTimeout)
		defer cancel()

		d, err := LoadDashboard(ctx, svc, email, time.Now())

		return dashboardMsg{dashboard: d, err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.dashboard = msg.dashboard
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.loading {
		return style.Render("Loading dashboard...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to back)")
	}

	d := m.dashboard

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(snapshotView(d.Snapshot)),
		" ",
		panelStyle.Render(planView(d.Usage, d.Premium)),
	)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Overview"),
		"",
		top,
		"",
		panelStyle.Render(budgetView(d.Progress, d.Alerts)),
		"",
		panelStyle.Render(trendView(d.Trend)),
		"",
		faintStyle.Render("r: refresh | Esc: back"),
	))
}

func snapshotView(s analytics.Snapshot) string {
	balance := FormatAmount(s.TotalBalance)
	if s.TotalBalance.IsNegative() {
		balance = errorStyle.Render(balance)
	} else {
		balance = successStyle.Render(balance)
	}

	return fmt.Sprintf("Income    %12s\nExpenses  %12s\nSavings   %12s\nBalance   %12s",
		FormatAmount(s.Income), FormatAmount(s.Expenses), FormatAmount(s.Savings), balance)
}

func planView(usage *account.UsageStatus, premium *account.PremiumStatus) string {
	if premium.IsPremium {
		until := ""
		if premium.PremiumEndDate != nil {
			until = "\nuntil " + FormatDate(*premium.PremiumEndDate)
		}

		return successStyle.Render("Premium") + until + "\nUnlimited transactions"
	}

	var b strings.Builder

	b.WriteString("Free plan")

	if premium.Expired {
		b.WriteString(warningStyle.Render(" (premium expired)"))
	}

	if u := usage.Usage; u != nil {
		line := fmt.Sprintf("\n%d/%d transactions this month", u.Used, u.Limit)
		if u.Remaining == 0 {
			line = errorStyle.Render(line)
		}

		b.WriteString(line)
	}

	return b.String()
}

func budgetView(progress map[string]analytics.Progress, alerts []analytics.Alert) string {
	var b strings.Builder

	b.WriteString("Budgets\n")

	for _, category := range slices.Sorted(maps.Keys(progress)) {
		p := progress[category]
		if p.Budget.IsZero() {
			continue
		}

		line := fmt.Sprintf("%-12s %s %6s%%  %s / %s",
			analytics.Label(category), bar(p), p.Percentage.StringFixed(1),
			FormatAmount(p.Spent), FormatAmount(p.Budget))

		switch p.Level {
		case analytics.LevelExceeded:
			line = errorStyle.Render(line)
		case analytics.LevelWarning:
			line = warningStyle.Render(line)
		}

		b.WriteString("\n" + line)
	}

	if len(alerts) == 0 {
		b.WriteString("\n\n" + faintStyle.Render("No budget alerts"))
		return b.String()
	}

	b.WriteString("\n")

	for _, a := range alerts {
		var msg string

		switch {
		case a.Level == analytics.LevelWarning:
			msg = warningStyle.Render(fmt.Sprintf("%s is at %s%% of its budget", a.Label, a.Percentage.StringFixed(0)))
		case a.Remaining.IsZero():
			msg = errorStyle.Render(a.Label + " has used its whole budget")
		default:
			msg = errorStyle.Render(fmt.Sprintf("%s is over budget by %s", a.Label, FormatAmount(a.Remaining.Neg())))
		}

		b.WriteString("\n" + msg)
	}

	return b.String()
}

func bar(p analytics.Progress) string {
	filled := int(p.Percentage.IntPart()) * barWidth / 100
	filled = min(max(filled, 0), barWidth)

	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func trendView(points []analytics.MonthPoint) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-8s %12s %12s %12s", "Month", "Income", "Expenses", "Savings")

	for _, p := range points {
		fmt.Fprintf(&b, "\n%-8s %12s %12s %12s",
			p.Month, FormatAmount(p.Income), FormatAmount(p.Expenses), FormatAmount(p.Savings))
	}

	return b.String()
}
