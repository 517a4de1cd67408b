package importcsv

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/pfm/internal/http/transaction"
	"github.com/MrJamesThe3rd/pfm/internal/importer"
)

const maxUploadBytes = 10 << 20

const (
	msgBadUpload = "Upload must be a multipart form with a CSV file in the file field"
	msgTooLarge  = "File is too large (max 10 MB)"
)

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Profile      string              `json:"profile"`
	Charset      string              `json:"charset"`
	Imported     int                 `json:"imported"`
	Transactions []httptx.Response   `json:"transactions"`
	Skipped      []importer.RowError `json:"skipped"`
	NotAttempted int                 `json:"notAttempted"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.WarnContext(r.Context(), "bad import upload", "error", err)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}

		respond.Error(w, http.StatusBadRequest, msgBadUpload)

		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), middleware.Email(r.Context()), file)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownFormat) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	body := importResponse{
		Profile:      res.Profile,
		Charset:      string(res.Charset),
		Imported:     len(res.Imported),
		Transactions: httptx.ToResponseList(res.Imported),
		Skipped:      res.Skipped,
		NotAttempted: res.NotAttempted,
	}
	if body.Skipped == nil {
		body.Skipped = []importer.RowError{}
	}

	env := respond.Envelope{
		Success:           len(res.Imported) > 0 || !res.QuotaReached,
		Message:           fmt.Sprintf("Imported %d transactions", len(res.Imported)),
		Data:              body,
		UsageInfo:         res.Usage,
		IsPremiumRequired: res.QuotaReached,
	}

	status := http.StatusCreated

	switch {
	case res.QuotaReached && len(res.Imported) == 0:
		status = http.StatusForbidden
		env.Message = fmt.Sprintf("Monthly transaction limit reached (%d/%d). Upgrade to Premium!", res.Usage.Used, res.Usage.Limit)
	case res.QuotaReached:
		env.Message += fmt.Sprintf("; monthly limit reached, %d rows not imported", res.NotAttempted)
	case len(res.Imported) == 0:
		status = http.StatusOK
	}

	respond.JSON(w, status, env)
}
