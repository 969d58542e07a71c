package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const (
	credentialsKey = "appstore"
	sessionKey     = "session"
)

// SettingsStorage holds the singleton records: App Store credentials, the
// session identity and the schema version
type SettingsStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSettingsStorage creates a new SettingsStorage instance
func NewSettingsStorage(db *BadgerDB, logger arbor.ILogger) *SettingsStorage {
	return &SettingsStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SettingsStorage) GetCredentials(ctx context.Context) (*models.AppStoreCredentials, error) {
	var creds models.AppStoreCredentials
	if err := s.db.Store().Get(credentialsKey, &creds); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

func (s *SettingsStorage) SaveCredentials(ctx context.Context, creds *models.AppStoreCredentials) error {
	creds.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(credentialsKey, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *SettingsStorage) GetSessionUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.db.Store().Get(sessionKey, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}
	return &user, nil
}

func (s *SettingsStorage) SaveSessionUser(ctx context.Context, user *models.User) error {
	if err := s.db.Store().Upsert(sessionKey, user); err != nil {
		return fmt.Errorf("failed to save session user: %w", err)
	}
	return nil
}

func (s *SettingsStorage) ClearSessionUser(ctx context.Context) error {
	if err := s.db.Store().Delete(sessionKey, &models.User{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to clear session user: %w", err)
	}
	return nil
}

func (s *SettingsStorage) SchemaVersion(ctx context.Context) (int, error) {
	return s.db.schemaVersion()
}
