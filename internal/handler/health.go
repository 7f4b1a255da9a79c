package handler

import (
	"net/http"

	"github.com/campusmarket/backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	db    *pgxpool.Pool
	cache *repository.EntitlementCache
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db *pgxpool.Pool, cache *repository.EntitlementCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status": "ok",
	}

	if err := h.db.Ping(ctx); err != nil {
		status["database"] = "error"
		status["status"] = "degraded"
	} else {
		status["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status["cache"] = "error"
			status["status"] = "degraded"
		} else {
			status["cache"] = "ok"
		}
	}

	code := http.StatusOK
	if status["status"] == "degraded" {
		code = http.StatusServiceUnavailable
	}

	JSON(w, code, status)
}
