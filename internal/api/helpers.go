package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error ResponseError `json:"error"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

func writeBadRequest(c *echo.Context, msg, param string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, param)
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, ErrorBody{Error: ResponseError{
		Message: msg,
		Type:    errType,
		Param:   param,
	}})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, newInvalidRequest(fmt.Sprintf("decode request: %v", err))
	}
	return out, nil
}
