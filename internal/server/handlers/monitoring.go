package handlers

import (
	"log/slog"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/server/responses"
	"git.home.luguber.info/inful/dispatchmon/internal/version"
)

// DaemonInterface defines the daemon methods needed by monitoring handlers.
type DaemonInterface interface {
	GetStatus() string
	GetStartTime() time.Time
	ReaderActive() bool
}

// MonitoringHandlers contains health and monitoring HTTP handlers.
type MonitoringHandlers struct {
	daemon       DaemonInterface
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(daemon DaemonInterface) *MonitoringHandlers {
	return &MonitoringHandlers{
		daemon:       daemon,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := derrors.ValidationFailed("method", "invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", http.MethodGet)
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
	}

	if h.daemon != nil {
		health.Uptime = time.Since(h.daemon.GetStartTime()).Seconds()
		health.DaemonStatus = h.daemon.GetStatus()
		health.ReaderActive = h.daemon.ReaderActive()
	}

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		internalErr := derrors.WrapError(err, derrors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
