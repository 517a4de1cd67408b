package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pfm/internal/export"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/pfm/internal/http/transaction"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/csv", h.csv)
}

// csv downloads the caller's transactions. The same filters as the list
// endpoint apply; bom=true prefixes a UTF-8 byte order mark for Excel.
func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	filter, err := httptx.ParseFilter(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	bom, _ := strconv.ParseBool(r.URL.Query().Get("bom"))

	var buf bytes.Buffer

	n, err := h.svc.WriteCSV(r.Context(), middleware.Email(r.Context()), filter, &buf, export.Options{BOM: bom})
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write csv export", "error", err, "rows", n)
	}
}
