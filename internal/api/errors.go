package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/cudamm/internal/accel"
)

// ErrInvalidRequest is matched by malformed request bodies.
var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string { return e.msg }

func (e invalidRequestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// writeMatMulError maps launcher errors onto HTTP statuses.
func writeMatMulError(c *echo.Context, err error) error {
	var sm *accel.SizeMismatchError
	switch {
	case errors.As(err, &sm):
		return writeBadRequest(c, err.Error(), strings.ToLower(sm.Operand))
	case errors.Is(err, accel.ErrTooLarge):
		return writeError(c, http.StatusBadRequest, "limit_exceeded", err.Error(), "")
	case errors.Is(err, accel.ErrUnavailable):
		return writeError(c, http.StatusServiceUnavailable, "accelerator_unavailable", err.Error(), "")
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error(), "")
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
}
