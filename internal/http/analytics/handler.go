package analytics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/budget"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/request"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/pfm/internal/http/transaction"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

type Handler struct {
	transactions *transaction.Service
	accounts     *account.Service
	now          func() time.Time
}

func NewHandler(transactions *transaction.Service, accounts *account.Service) *Handler {
	return &Handler{transactions: transactions, accounts: accounts, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/financial-data", h.financialData)
	r.Get("/usage", h.usage)

	r.Route("/analytics", func(r chi.Router) {
		r.Post("/budget-progress", h.budgetProgress)
		r.Get("/report", h.report)
		r.Get("/trend", h.trend)
	})
}

type financialDataResponse struct {
	analytics.Snapshot
	Transactions []httptx.Response `json:"transactions"`
}

func (h *Handler) financialData(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}

	respond.OK(w, financialDataResponse{
		Snapshot:     analytics.Aggregate(txs),
		Transactions: httptx.ToResponseList(txs),
	})
}

type usageResponse struct {
	IsPremium bool `json:"isPremium"`
}

func (h *Handler) usage(w http.ResponseWriter, r *http.Request) {
	status, err := h.accounts.Usage(r.Context(), middleware.Email(r.Context()))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success:   true,
		Data:      usageResponse{IsPremium: status.IsPremium},
		UsageInfo: status.Usage,
	})
}

type budgetProgressRequest struct {
	Budgets budget.Budgets `json:"budgets" validate:"required"`
}

type budgetProgressResponse struct {
	Progress map[string]analytics.Progress `json:"progress"`
	Alerts   []analytics.Alert             `json:"alerts"`
}

// budgetProgress scores the caller's transactions against budgets sent
// in the body. Budgets are held by the client and never stored.
func (h *Handler) budgetProgress(w http.ResponseWriter, r *http.Request) {
	var req budgetProgressRequest
	if !request.Bind(w, r, &req) {
		return
	}

	if err := req.Budgets.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, ok := h.load(w, r)
	if !ok {
		return
	}

	progress := analytics.BudgetProgress(txs, req.Budgets)
	alerts := analytics.Alerts(progress)

	if alerts == nil {
		alerts = []analytics.Alert{}
	}

	respond.OK(w, budgetProgressResponse{Progress: progress, Alerts: alerts})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}

	respond.OK(w, analytics.BuildReport(txs, h.now()))
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	months := defaultTrendMonths

	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxTrendMonths {
			respond.Error(w, http.StatusBadRequest, "months must be between 1 and 24")
			return
		}

		months = n
	}

	txs, ok := h.load(w, r)
	if !ok {
		return
	}

	respond.OK(w, analytics.MonthlyTrend(txs, h.now(), months))
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]*transaction.Transaction, bool) {
	txs, err := h.transactions.List(r.Context(), middleware.Email(r.Context()), transaction.ListFilter{})
	if err != nil {
		respond.ServerError(w, r, err)
		return nil, false
	}

	return txs, true
}
