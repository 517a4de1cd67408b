// Package respond writes the JSON envelope every endpoint answers with.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

// MsgServerError is the only detail clients see for unexpected failures.
const MsgServerError = "Server error"

type Envelope struct {
	Success           bool           `json:"success"`
	Message           string         `json:"message,omitempty"`
	Data              any            `json:"data,omitempty"`
	UsageInfo         *account.Usage `json:"usageInfo,omitempty"`
	IsPremiumRequired bool           `json:"isPremiumRequired,omitempty"`
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: status < http.StatusBadRequest, Message: msg})
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Message: msg})
}

// ServerError logs err with the request context and answers 500.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	Error(w, http.StatusInternalServerError, MsgServerError)
}
