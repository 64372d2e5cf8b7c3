package handler

import (
	"net/http"
	"time"

	"github.com/jamroute/jamroute/internal/api/models"
	"github.com/jamroute/jamroute/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	ready     func() bool
	providers func() []models.ProviderStatus
}

// NewOpsHandler creates a new OpsHandler. ready gates the readiness endpoint;
// providers reports external provider state, nil for none.
func NewOpsHandler(version, buildTime string, ready func() bool, providers func() []models.ProviderStatus) *OpsHandler {
	if ready == nil {
		ready = func() bool { return true }
	}
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		ready:     ready,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Returns 503
// until the pipeline's dependency bundle is fully constructed.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !h.ready() {
		response.ServiceUnavailable(w, r, "pipeline dependencies are still loading")
		return
	}
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{
			{Name: "pipeline", Status: subsystemStatus(h.ready())},
		},
	}
	if h.providers != nil {
		status.Providers = h.providers()
	}
	for _, sub := range status.Subsystems {
		if sub.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}
	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}
	response.JSON(w, r, http.StatusOK, status)
}

func subsystemStatus(ok bool) models.HealthStatus {
	if ok {
		return models.HealthStatusOK
	}
	return models.HealthStatusDown
}
