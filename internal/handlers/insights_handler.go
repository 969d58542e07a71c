package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/ternarybob/creatorlogic/internal/services/attribution"
	"github.com/ternarybob/creatorlogic/internal/services/insights"
)

const topHashtagCount = 5

// InsightsHandler serves derived analytics: the attribution series, per-creator
// deal pricing and side-by-side comparison
type InsightsHandler struct {
	jobs         JobService
	partnerships PartnershipService
	logger       arbor.ILogger
	now          func() time.Time
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(jobs JobService, partnerships PartnershipService, logger arbor.ILogger) *InsightsHandler {
	return &InsightsHandler{
		jobs:         jobs,
		partnerships: partnerships,
		logger:       logger,
		now:          time.Now,
	}
}

// AttributionHandler returns the daily install series
// GET /api/attribution?range=7d|30d|90d|all
func (h *InsightsHandler) AttributionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	list, err := h.partnerships.List(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	label := r.URL.Query().Get("range")
	series := attribution.ComputeDailySeries(list, attribution.RangeDays(label), h.now())

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"range":   label,
		"series":  series,
		"summary": attribution.Summarize(series),
	})
}

// CreatorInsightsHandler prices a post from the creator behind an analytics job
// GET /api/insights/{jobId}?cost=500
func (h *InsightsHandler) CreatorInsightsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := PathID(r, "/api/insights/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	cost, ok := parseCost(w, r)
	if !ok {
		return
	}

	view, ok := h.analyticsJob(r.Context(), w, jobID)
	if !ok {
		return
	}

	stats := insights.ComputePostStats(view.Posts)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":       view.JobID,
		"seed":         view.Seed,
		"stats":        stats,
		"deal":         insights.ComputeDealMetrics(stats, cost),
		"top_hashtags": insights.TopHashtags(view.Posts, topHashtagCount),
	})
}

// CompareHandler compares the creators behind two analytics jobs
// GET /api/insights/compare?a={jobId}&b={jobId}&cost=500
func (h *InsightsHandler) CompareHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	idA, idB := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if idA == "" || idB == "" {
		WriteError(w, http.StatusBadRequest, "Both a and b job IDs are required")
		return
	}

	cost, ok := parseCost(w, r)
	if !ok {
		return
	}

	a, ok := h.analyticsJob(r.Context(), w, idA)
	if !ok {
		return
	}
	b, ok := h.analyticsJob(r.Context(), w, idB)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, insights.Compare(a.Seed, a.Posts, b.Seed, b.Posts, cost))
}

// PartnershipInsightsHandler returns live deal metrics for every partnership
// GET /api/insights/partnerships
func (h *InsightsHandler) PartnershipInsightsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	list, err := h.partnerships.List(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	metrics := make([]insights.PartnershipMetrics, 0, len(list))
	for _, p := range list {
		metrics = append(metrics, insights.ComputePartnershipMetrics(p))
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": metrics,
	})
}

// analyticsJob loads a completed analytics job, writing the error response otherwise
func (h *InsightsHandler) analyticsJob(ctx context.Context, w http.ResponseWriter, id string) (*models.JobStatusView, bool) {
	view, err := h.jobs.GetStatus(ctx, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return nil, false
	}
	if view.Kind != models.JobKindAnalytics {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Job %s is not an analytics job", id))
		return nil, false
	}
	if view.Status != models.JobStatusCompleted {
		WriteError(w, http.StatusConflict, fmt.Sprintf("Job %s is %s", id, view.Status))
		return nil, false
	}
	return view, true
}

// parseCost reads ?cost=, defaulting to the comparison base cost
func parseCost(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	raw := r.URL.Query().Get("cost")
	if raw == "" {
		return insights.DefaultBaseCost, true
	}
	cost, err := decimal.NewFromString(raw)
	if err != nil || cost.IsNegative() {
		WriteError(w, http.StatusBadRequest, "cost must be a non-negative number")
		return decimal.Zero, false
	}
	return cost, true
}
