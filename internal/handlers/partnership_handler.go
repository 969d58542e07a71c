package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// PartnershipHandler handles tracked-deal requests
type PartnershipHandler struct {
	partnerships PartnershipService
	logger       arbor.ILogger
}

// NewPartnershipHandler creates a new partnership handler
func NewPartnershipHandler(partnerships PartnershipService, logger arbor.ILogger) *PartnershipHandler {
	return &PartnershipHandler{
		partnerships: partnerships,
		logger:       logger,
	}
}

// ListHandler returns every tracked partnership
// GET /api/partnerships
func (h *PartnershipHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.partnerships.List(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"partnerships": list,
		"total":        len(list),
	})
}

// SaveHandler creates or updates a partnership and kicks off a refresh that
// includes it
// POST /api/partnerships
func (h *PartnershipHandler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	var p models.Partnership
	if !DecodeJSON(w, r, &p) {
		return
	}

	list, err := h.partnerships.Save(r.Context(), &p)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	refreshing, err := h.partnerships.Refresh(r.Context(), list)
	if err != nil {
		h.logger.Warn().Err(err).Str("partnership_id", p.ID).Msg("Refresh after save failed to start")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"partnership":  p,
		"partnerships": list,
		"refreshing":   refreshing,
	})
}

// DeleteHandler removes one partnership
// DELETE /api/partnerships/{id}
func (h *PartnershipHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := PathID(r, "/api/partnerships/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Partnership ID is required")
		return
	}

	list, err := h.partnerships.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"partnerships": list,
		"total":        len(list),
	})
}

// RefreshHandler starts a metrics refresh. "started" is false when one is
// already running or nothing qualifies.
// POST /api/partnerships/refresh
func (h *PartnershipHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	started, err := h.partnerships.Refresh(r.Context(), nil)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"started": started,
		"state":   h.partnerships.RefreshState(),
	})
}

// RefreshStateHandler reports the current or last refresh
// GET /api/partnerships/refresh
func (h *PartnershipHandler) RefreshStateHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.partnerships.RefreshState())
}
