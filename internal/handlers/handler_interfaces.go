package handlers

import (
	"context"

	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/ternarybob/creatorlogic/internal/services/appstore"
	"github.com/ternarybob/creatorlogic/internal/services/partnerships"
)

// JobService starts scrape jobs and answers status queries.
type JobService interface {
	StartDiscovery(ctx context.Context, seed string, limit int) (string, error)
	StartAnalytics(ctx context.Context, seed string, force bool) (string, bool, error)
	GetStatus(ctx context.Context, id string) (*models.JobStatusView, error)
	ListHistory(ctx context.Context) ([]*models.HistoryRecord, error)
	DeleteJob(ctx context.Context, id string) error
}

// PartnershipService manages tracked deals and their refresh.
type PartnershipService interface {
	List(ctx context.Context) ([]*models.Partnership, error)
	Save(ctx context.Context, p *models.Partnership) ([]*models.Partnership, error)
	Delete(ctx context.Context, id string) ([]*models.Partnership, error)
	Refresh(ctx context.Context, explicit []*models.Partnership) (bool, error)
	RefreshState() partnerships.RefreshState
}

// SessionService owns the logged-in identity.
type SessionService interface {
	Login(ctx context.Context, email string) (*models.User, error)
	CurrentUser() (*models.User, error)
	Logout(ctx context.Context) error
}

// CredentialService stores App Store Connect credentials.
type CredentialService interface {
	GetCredentials(ctx context.Context) (*models.AppStoreCredentials, error)
	SaveCredentials(ctx context.Context, creds *models.AppStoreCredentials) (*appstore.SaveResult, error)
}

// Pinger checks a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
