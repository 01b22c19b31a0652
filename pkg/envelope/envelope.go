// Package envelope defines the JSON response wrapper used by every API
// endpoint: {"success": true, "data": ...} on success and
// {"success": false, "error": "..."} on failure.
package envelope

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the wire format for all API responses.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps a payload in a success envelope.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Err wraps a message in a failure envelope.
func Err(msg string) Response {
	return Response{Success: false, Error: msg}
}

// HTTPErrorHandler converts echo HTTP errors into failure envelopes so that
// handlers can keep returning echo.NewHTTPError while clients always see a
// consistent body shape. Internal errors are masked with a generic message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, Err(msg))
}
