package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/services/config"
)

type APIHandler struct {
	pinger Pinger
	config *config.Service
	logger arbor.ILogger
}

// NewAPIHandler creates the system handler. pinger may be nil in local-only mode.
func NewAPIHandler(pinger Pinger, configService *config.Service, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		pinger: pinger,
		config: configService,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// HealthHandler returns health check status. A failing remote tier degrades
// rather than fails the check since the local tier keeps serving.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	remote := "disabled"
	if h.pinger != nil {
		remote = "ok"
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("Remote store health check failed")
			remote = "unreachable"
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"remote": remote,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}

// ConfigHandler returns the redacted runtime configuration
// GET /api/config
func (h *APIHandler) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	if h.config == nil {
		WriteError(w, http.StatusServiceUnavailable, "Configuration unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, h.config.Snapshot())
}
