package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"freightpulse/internal/services"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	service *services.RecommendationService
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service *services.RecommendationService, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		started: time.Now(),
		version: version,
	}
}

// healthResponse is the health probe body.
type healthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Liveness always reports ok while the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:  "ok",
		Ready:   h.service.Ready(),
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness reports 503 until the dataset is generated and models are
// trained.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ready := h.service.Ready()
	status := "ok"
	if !ready {
		status = "initializing"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, healthResponse{
		Status:  status,
		Ready:   ready,
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}
