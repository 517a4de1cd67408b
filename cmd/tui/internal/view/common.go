package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/budget"
	"github.com/MrJamesThe3rd/pfm/internal/export"
	"github.com/MrJamesThe3rd/pfm/internal/importer"
	"github.com/MrJamesThe3rd/pfm/internal/matching"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

// Services are shared by every screen.
type Services struct {
	Accounts     *account.Service
	Transactions *transaction.Service
	Matching     *matching.Service
	Importer     *importer.Service
	Export       *export.Service
	Budgets      *budget.FileStore
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
