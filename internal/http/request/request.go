// Package request decodes and validates JSON request bodies.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Error is a client mistake; its message is safe to return.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Decode reads a JSON body into dst and runs its validate tags.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &Error{Message: "Request body is required."}
		}

		return &Error{Message: "Invalid JSON body."}
	}

	return Validate(dst)
}

// Bind decodes like Decode and answers 400 itself on a client mistake.
// It reports whether the handler should continue.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := Decode(w, r, dst)
	if err == nil {
		return true
	}

	var reqErr *Error
	if errors.As(err, &reqErr) {
		respond.Error(w, http.StatusBadRequest, reqErr.Message)
		return false
	}

	respond.ServerError(w, r, err)

	return false
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return &Error{Message: strings.Join(msgs, " ")}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), fe.Param())
	}

	return fmt.Sprintf("%s is invalid.", fe.Field())
}
