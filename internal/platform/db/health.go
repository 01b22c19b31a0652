package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is a snapshot of the connection pool, reported alongside the
// database health check.
type PoolStats struct {
	MaxConns     int32  `json:"max_conns"`
	OpenConns    int32  `json:"open_conns"`
	IdleConns    int32  `json:"idle_conns"`
	InUseConns   int32  `json:"in_use_conns"`
	AcquireCount int64  `json:"acquire_count"`
	AcquireWait  string `json:"acquire_wait"`
}

func snapshot(pool *pgxpool.Pool) PoolStats {
	s := pool.Stat()
	return PoolStats{
		MaxConns:     s.MaxConns(),
		OpenConns:    s.TotalConns(),
		IdleConns:    s.IdleConns(),
		InUseConns:   s.AcquiredConns(),
		AcquireCount: s.AcquireCount(),
		AcquireWait:  s.AcquireDuration().String(),
	}
}

// HealthHandler pings the database with a short deadline and reports pool
// statistics either way.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
				"pool":   snapshot(pool),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"pool":   snapshot(pool),
		})
	}
}
