package interfaces

import (
	"context"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// HistoryStorage - job history records. Get returns models.ErrNotFound when absent.
type HistoryStorage interface {
	SaveHistory(ctx context.Context, rec *models.HistoryRecord) error
	GetHistory(ctx context.Context, id string) (*models.HistoryRecord, error)
	ListHistory(ctx context.Context) ([]*models.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id string) error
}

// ResultStorage - normalized result blobs keyed by job id
type ResultStorage interface {
	SaveResults(ctx context.Context, results *models.JobResults) error
	GetResults(ctx context.Context, jobID string) (*models.JobResults, error)
	DeleteResults(ctx context.Context, jobID string) error
}

// PartnershipStorage - tracked sponsored deals
type PartnershipStorage interface {
	SavePartnerships(ctx context.Context, partnerships []*models.Partnership) error
	ListPartnerships(ctx context.Context) ([]*models.Partnership, error)
	DeletePartnership(ctx context.Context, id string) error
}

// SessionStorage - the single logged-in identity on this device
type SessionStorage interface {
	GetSessionUser(ctx context.Context) (*models.User, error)
	SaveSessionUser(ctx context.Context, user *models.User) error
	ClearSessionUser(ctx context.Context) error
}

// LocalStorage - the disk-backed cache tier. Writes here are synchronous and authoritative.
type LocalStorage interface {
	HistoryStorage
	ResultStorage
	PartnershipStorage

	GetCredentials(ctx context.Context) (*models.AppStoreCredentials, error)
	SaveCredentials(ctx context.Context, creds *models.AppStoreCredentials) error

	SessionStorage

	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// RemoteStorage - the relational mirror. Every call is scoped to an owning identity.
type RemoteStorage interface {
	UpsertHistory(ctx context.Context, ownerID string, rec *models.HistoryRecord) error
	GetHistory(ctx context.Context, ownerID, id string) (*models.HistoryRecord, error)
	ListHistory(ctx context.Context, ownerID string) ([]*models.HistoryRecord, error)
	DeleteHistory(ctx context.Context, ownerID, id string) error

	UpsertResults(ctx context.Context, ownerID string, results *models.JobResults) error
	GetResults(ctx context.Context, ownerID, jobID string) (*models.JobResults, error)
	DeleteResults(ctx context.Context, ownerID, jobID string) error

	UpsertPartnerships(ctx context.Context, ownerID string, partnerships []*models.Partnership) error
	ListPartnerships(ctx context.Context, ownerID string) ([]*models.Partnership, error)
	DeletePartnership(ctx context.Context, ownerID, id string) error

	UpsertCredentials(ctx context.Context, ownerID string, creds *models.AppStoreCredentials) error
	GetCredentials(ctx context.Context, ownerID string) (*models.AppStoreCredentials, error)

	Ping(ctx context.Context) error
	Close()
}

// JobLookup is a persisted job found by the durable store, with the tier that answered
type JobLookup struct {
	Record  *models.HistoryRecord
	Results *models.JobResults
	Source  string
}

// DurableStore - the dual-tier store consumed by services.
// Reads merge both tiers (local wins); writes go local first and mirror remotely in the background.
type DurableStore interface {
	ListHistory(ctx context.Context) ([]*models.HistoryRecord, error)
	SaveHistory(ctx context.Context, rec *models.HistoryRecord) error
	SaveResults(ctx context.Context, results *models.JobResults) error
	LookupJob(ctx context.Context, id string) (*JobLookup, error)
	DeleteJob(ctx context.Context, id string) error

	ListPartnerships(ctx context.Context) ([]*models.Partnership, error)
	SavePartnerships(ctx context.Context, partnerships []*models.Partnership) error
	DeletePartnership(ctx context.Context, id string) error

	GetCredentials(ctx context.Context) (*models.AppStoreCredentials, error)
	SaveCredentials(ctx context.Context, creds *models.AppStoreCredentials) error

	// Wait blocks until background remote syncs have finished
	Wait()
}

// IdentityProvider exposes the logged-in identity used to scope remote records.
// An empty id means nobody is logged in and remote legs are skipped.
type IdentityProvider interface {
	CurrentUserID() string
}
