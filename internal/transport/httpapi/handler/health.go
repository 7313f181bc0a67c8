package handler

import (
	"context"
	"net/http"
	"time"
)

// CachePinger checks shared cache connectivity
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	cache CachePinger
}

// NewHealthHandler creates a new health handler. The cache pinger is nil
// when running on the in-memory store.
func NewHealthHandler(cache CachePinger) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Uptime string            `json:"uptime,omitempty"`
}

var startTime = time.Now()

// GetHealth handles GET /health
// Basic health check - returns 200 OK if service is running
func GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{
		Status: "ok",
		Uptime: time.Since(startTime).String(),
	}, http.StatusOK)
}

// GetLiveness handles GET /health/live
func GetLiveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "alive"}, http.StatusOK)
}

// GetReadiness handles GET /health/ready. Degrades to a plain liveness
// answer when no shared cache is configured.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := "ok"

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			checks["cache"] = "healthy"
		}
	}

	httpStatus := http.StatusOK
	if status == "degraded" {
		httpStatus = http.StatusServiceUnavailable
	}

	respondJSON(w, HealthResponse{
		Status: status,
		Checks: checks,
		Uptime: time.Since(startTime).String(),
	}, httpStatus)
}
