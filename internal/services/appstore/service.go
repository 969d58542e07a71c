package appstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// SaveResult reports what was stored and whether the key checked out
type SaveResult struct {
	Credentials models.AppStoreCredentials `json:"credentials"`
	Verified    bool                       `json:"verified"`
	VerifyError string                     `json:"verify_error,omitempty"`
}

// Service persists App Store Connect credentials through the durable store
type Service struct {
	store    interfaces.DurableStore
	verifier *Verifier
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates the credentials service
func NewService(store interfaces.DurableStore, verifier *Verifier, logger arbor.ILogger) *Service {
	return &Service{
		store:    store,
		verifier: verifier,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetCredentials returns the stored credentials with the private key removed
func (s *Service) GetCredentials(ctx context.Context) (*models.AppStoreCredentials, error) {
	creds, err := s.store.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}
	redacted := creds.Redacted()
	return &redacted, nil
}

// SaveCredentials verifies the credentials and stores them whether or not
// verification succeeds. A failed check is reported in the result, not as an error.
func (s *Service) SaveCredentials(ctx context.Context, creds *models.AppStoreCredentials) (*SaveResult, error) {
	creds.IssuerID = strings.TrimSpace(creds.IssuerID)
	creds.KeyID = strings.TrimSpace(creds.KeyID)
	creds.PrivateKey = strings.TrimSpace(creds.PrivateKey)

	if err := s.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: missing credentials: %v", models.ErrInvalidInput, err)
	}

	result := &SaveResult{}
	verification, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		s.logger.Warn().Err(err).Str("key_id", creds.KeyID).Msg("App Store Connect verification failed, saving anyway")
		result.VerifyError = err.Error()
		creds.VerifiedAt = nil
	} else {
		now := time.Now()
		result.Verified = true
		creds.AppName = verification.AppName
		creds.AppID = verification.AppID
		creds.VerifiedAt = &now
	}

	if err := s.store.SaveCredentials(ctx, creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	result.Credentials = creds.Redacted()
	return result, nil
}
