package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
)

// SchedulerHandler exposes background job status and manual triggers
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// StatusHandler lists every registered background job
// GET /api/scheduler
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	statuses := h.scheduler.GetAllJobStatuses()
	jobs := make([]*interfaces.JobStatus, 0, len(statuses))
	for _, status := range statuses {
		jobs = append(jobs, status)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"jobs":    jobs,
	})
}

// TriggerHandler runs a background job immediately
// POST /api/scheduler/{name}/trigger
func (h *SchedulerHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	name := strings.TrimSuffix(PathID(r, "/api/scheduler/"), "/trigger")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Job name is required")
		return
	}

	status, err := h.scheduler.GetJobStatus(name)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if status.IsRunning {
		WriteError(w, http.StatusConflict, "Job "+name+" is already running")
		return
	}

	if err := h.scheduler.TriggerJob(name); err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	h.logger.Info().Str("job_name", name).Msg("Scheduler job triggered via API")
	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job":       name,
		"triggered": true,
	})
}
