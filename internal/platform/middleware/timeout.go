package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on the request context. A handler that
// outlives the deadline gets a 504 while it keeps running in its goroutine;
// repositories observe the cancelled context and abort their queries.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Response().Committed {
					return c.JSON(http.StatusGatewayTimeout, map[string]any{
						"success": false,
						"error":   "request timed out",
					})
				}
				return ctx.Err()
			}
		}
	}
}
