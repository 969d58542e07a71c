// -----------------------------------------------------------------------
// Last Modified: Tuesday, 13th October 2026 4:12:08 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// JobHandler handles discovery and analytics job requests
type JobHandler struct {
	jobs   JobService
	logger arbor.ILogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobService, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

type startDiscoveryRequest struct {
	Seed  string `json:"seed"`
	Limit int    `json:"limit"`
}

type startAnalyticsRequest struct {
	Seed  string `json:"seed"`
	Force bool   `json:"force"`
}

// StartDiscoveryHandler starts a lookalike discovery job
// POST /api/jobs/discovery {"seed": "handle", "limit": 50}
func (h *JobHandler) StartDiscoveryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req startDiscoveryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	jobID, err := h.jobs.StartDiscovery(r.Context(), req.Seed, req.Limit)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": jobID,
	})
}

// StartAnalyticsHandler starts, or reuses, an analytics job for one creator
// POST /api/jobs/analytics {"seed": "handle", "force": false}
func (h *JobHandler) StartAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req startAnalyticsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	jobID, reused, err := h.jobs.StartAnalytics(r.Context(), req.Seed, req.Force)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	status := http.StatusAccepted
	if reused {
		status = http.StatusOK
	}
	WriteJSON(w, status, map[string]interface{}{
		"job_id": jobID,
		"reused": reused,
	})
}

// ListHistoryHandler returns merged job history, newest first
// GET /api/jobs
func (h *JobHandler) ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	records, err := h.jobs.ListHistory(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  records,
		"total": len(records),
	})
}

// GetJobHandler returns the status view of one job
// GET /api/jobs/{id}
func (h *JobHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := PathID(r, "/api/jobs/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	view, err := h.jobs.GetStatus(r.Context(), jobID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, view)
}

// DeleteJobHandler removes a finished job from every tier
// DELETE /api/jobs/{id}
func (h *JobHandler) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := PathID(r, "/api/jobs/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	if err := h.jobs.DeleteJob(r.Context(), jobID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.logger.Info().Str("job_id", jobID).Msg("Job deleted")
	WriteSuccess(w, "Job deleted")
}
