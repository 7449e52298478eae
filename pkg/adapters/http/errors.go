package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrNotFound, "not_found", http.StatusNotFound},
	{domain.ErrSchemaMismatch, "schema_mismatch", http.StatusUnprocessableEntity},
	{domain.ErrInvalidValue, "invalid_value", http.StatusBadRequest},
	{domain.ErrSessionBusy, "busy", http.StatusConflict},
	{domain.ErrReadOnly, "read_only", http.StatusMethodNotAllowed},
}

// classify maps an engine error to a wire code and status.
func classify(err error) (string, int) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}
	return "internal", http.StatusInternalServerError
}

// sentinel maps a wire code back to its domain error.
func sentinel(code string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// StatusError is returned by Client for a non-2xx response.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("engine returned %d", e.Status)
	}
	return fmt.Sprintf("engine returned %d: %s", e.Status, e.Message)
}

// Unwrap exposes the matching domain sentinel, if any.
func (e *StatusError) Unwrap() error {
	if err := sentinel(e.Code); err != nil {
		return err
	}
	if e.Status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}
