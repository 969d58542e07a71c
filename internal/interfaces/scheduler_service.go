package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name        string     `json:"name"`
	Enabled     bool       `json:"enabled"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	IsRunning   bool       `json:"is_running"`
	LastError   string     `json:"last_error,omitempty"`
}

// SchedulerService manages cron-based background work
type SchedulerService interface {
	// Start the scheduler
	Start() error

	// Stop the scheduler and wait for a running job to return
	Stop() error

	// IsRunning returns true if scheduler is active
	IsRunning() bool

	// RegisterJob registers a job. An empty schedule registers it disabled.
	RegisterJob(name, schedule, description string, handler func() error) error

	// TriggerJob runs a job now, outside its schedule
	TriggerJob(name string) error

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*JobStatus, error)

	// GetAllJobStatuses returns all job statuses
	GetAllJobStatuses() map[string]*JobStatus
}

// PartnershipRefresher starts a partnership metrics refresh. nil means the stored collection.
type PartnershipRefresher interface {
	Refresh(ctx context.Context, explicit []*models.Partnership) (bool, error)
}

// JobMaintainer is the periodic housekeeping the job engine exposes
type JobMaintainer interface {
	SweepFinished() int
	RecoverOrphans(ctx context.Context) (int, error)
}
