package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker pings the ledger database and the special-condition flag
// store. Either being down degrades the service: an unreachable ledger means
// /confirm cannot be answered safely.
type HealthChecker struct {
	dbPool *pgxpool.Pool
	rdb    *redis.Client
}

// NewHealthChecker creates a HealthChecker; either dependency may be nil.
func NewHealthChecker(dbPool *pgxpool.Pool, rdb *redis.Client) *HealthChecker {
	return &HealthChecker{
		dbPool: dbPool,
		rdb:    rdb,
	}
}

// Check performs health checks and returns the status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	overallStatus := "healthy"

	if h.dbPool != nil {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.dbPool.Ping(dbCtx); err != nil {
			checks["ledger"] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks["ledger"] = "healthy"
		}
	} else {
		checks["ledger"] = "not configured"
	}

	if h.rdb != nil {
		redisCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.rdb.Ping(redisCtx).Err(); err != nil {
			checks["special_condition_store"] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks["special_condition_store"] = "healthy"
		}
	} else {
		checks["special_condition_store"] = "not configured"
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}
