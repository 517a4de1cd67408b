package transaction

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/request"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

const msgNotFound = "Transaction not found or unauthorized"

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/all/{email}", h.deleteAll)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Type        transaction.Type `json:"type" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Date        *request.Date    `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !request.Bind(w, r, &req) {
		return
	}

	res, err := h.svc.Create(r.Context(), transaction.CreateParams{
		Email:       middleware.Email(r.Context()),
		Type:        req.Type,
		Amount:      *req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date.Ptr(),
	})
	if err != nil {
		writeCreateError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, respond.Envelope{
		Success:   true,
		Message:   "Transaction created successfully!",
		Data:      ToResponse(res.Transaction),
		UsageInfo: res.Usage,
	})
}

// writeCreateError maps the failures of transaction.Service.Create.
func writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	if qe, ok := transaction.IsQuotaExceeded(err); ok {
		respond.JSON(w, http.StatusForbidden, respond.Envelope{
			Message:           fmt.Sprintf("Monthly transaction limit reached (%d/%d). Upgrade to Premium!", qe.Usage.Used, qe.Usage.Limit),
			IsPremiumRequired: true,
			UsageInfo:         &qe.Usage,
		})

		return
	}

	var verr *transaction.ValidationError
	if errors.As(err, &verr) {
		respond.Error(w, http.StatusBadRequest, verr.Message)
		return
	}

	if errors.Is(err, account.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	respond.ServerError(w, r, err)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.List(r.Context(), middleware.Email(r.Context()), filter)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	respond.OK(w, ToResponseList(txs))
}

// ParseFilter reads type, category, start_date and end_date query
// parameters. A calendar end_date covers the whole day.
func ParseFilter(q url.Values) (transaction.ListFilter, error) {
	var filter transaction.ListFilter

	if s := q.Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			return filter, fmt.Errorf("invalid type %q", s)
		}

		filter.Type = &t
	}

	if s := q.Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := request.ParseDate(s)
		if err != nil {
			return filter, err
		}

		filter.StartDate = &t
	}

	if s := q.Get("end_date"); s != "" {
		t, err := request.ParseEndDate(s)
		if err != nil {
			return filter, err
		}

		filter.EndDate = &t
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, errors.New("end_date is before start_date")
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), middleware.Email(r.Context()), id)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}

	respond.OK(w, ToResponse(tx))
}

type updateTransactionRequest struct {
	Type        *transaction.Type `json:"type,omitempty"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Description *string           `json:"description,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Date        *request.Date     `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if !request.Bind(w, r, &req) {
		return
	}

	tx, err := h.svc.Update(r.Context(), middleware.Email(r.Context()), id, transaction.UpdateParams{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date.Ptr(),
	})
	if err != nil {
		var verr *transaction.ValidationError
		if errors.As(err, &verr) {
			respond.Error(w, http.StatusBadRequest, verr.Message)
			return
		}

		writeLookupError(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: "Transaction updated successfully!",
		Data:    ToResponse(tx),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.Email(r.Context()), id); err != nil {
		writeLookupError(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Transaction deleted successfully!")
}

type deleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	email := account.NormalizeEmail(chi.URLParam(r, "email"))
	if email != account.NormalizeEmail(middleware.Email(r.Context())) {
		respond.Error(w, http.StatusForbidden, "Unauthorized to delete other users transactions")
		return
	}

	n, err := h.svc.DeleteAll(r.Context(), email)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: fmt.Sprintf("Deleted %d transactions", n),
		Data:    deleteAllResponse{Deleted: n},
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// Malformed IDs can never belong to the caller.
		respond.Error(w, http.StatusNotFound, msgNotFound)
		return uuid.Nil, false
	}

	return id, true
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, transaction.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, msgNotFound)
		return
	}

	respond.ServerError(w, r, err)
}
