package matching

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pfm/internal/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/request"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	"github.com/MrJamesThe3rd/pfm/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Description string `json:"description"`
	// Category is empty when nothing learned matches.
	Category string `json:"category"`
	Label    string `json:"label,omitempty"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		respond.Error(w, http.StatusBadRequest, "description query parameter is required")
		return
	}

	category, err := h.svc.Suggest(r.Context(), middleware.Email(r.Context()), desc)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	resp := suggestResponse{Description: desc, Category: category}
	if category != "" {
		resp.Label = analytics.Label(category)
	}

	respond.OK(w, resp)
}

type learnRequest struct {
	Pattern  string `json:"pattern" validate:"required"`
	Category string `json:"category" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !request.Bind(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), middleware.Email(r.Context()), req.Pattern, req.Category); err != nil {
		if errors.Is(err, matching.ErrEmptyMapping) {
			respond.Error(w, http.StatusBadRequest, "pattern and category are required")
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	respond.Message(w, http.StatusCreated, "Mapping saved")
}
