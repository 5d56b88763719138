package handlers

import (
	"context"
	"net/http"
)

// Pinger defines the interface health checks use to probe the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the health probe body
// swagger:model HealthResponse
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// NewHealthHandler returns an HTTP handler for the liveness/readiness probe.
// @Summary Health check
// @Description Reports service and database connectivity status.
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "Healthy"
// @Failure 503 {object} handlers.HealthResponse "Database unreachable"
// @Router /health [get]
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "up"}
		status := http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, resp)
	}
}
