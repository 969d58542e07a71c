package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// AppStoreHandler handles App Store Connect credential requests
type AppStoreHandler struct {
	credentials CredentialService
	logger      arbor.ILogger
}

// NewAppStoreHandler creates a new App Store handler
func NewAppStoreHandler(credentials CredentialService, logger arbor.ILogger) *AppStoreHandler {
	return &AppStoreHandler{
		credentials: credentials,
		logger:      logger,
	}
}

// GetCredentialsHandler returns stored credentials without the private key
// GET /api/appstore/credentials
func (h *AppStoreHandler) GetCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	creds, err := h.credentials.GetCredentials(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, creds)
}

// SaveCredentialsHandler verifies and stores credentials. They are stored
// even when verification fails; the response says which.
// POST /api/appstore/credentials
func (h *AppStoreHandler) SaveCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.AppStoreCredentials
	if !DecodeJSON(w, r, &creds) {
		return
	}

	result, err := h.credentials.SaveCredentials(r.Context(), &creds)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
