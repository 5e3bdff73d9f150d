package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"farrier-backend/internal/cache"
)

type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

type HealthChecker struct {
	pool *pgxpool.Pool
}

func NewHealthChecker(pool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{pool: pool}
}

// Check pings the dependencies. Redis being down degrades, it does not fail:
// the cache is optional everywhere it is used.
func (h *HealthChecker) Check(ctx context.Context) *Status {
	status := &Status{Status: "ok", Database: "ok", Redis: "ok"}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(pingCtx); err != nil {
		status.Status = "unhealthy"
		status.Database = err.Error()
	}

	if !cache.IsHealthy() {
		status.Redis = "unavailable"
	}

	return status
}
