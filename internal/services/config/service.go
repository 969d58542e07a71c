package config

import (
	"fmt"

	"github.com/ternarybob/creatorlogic/internal/common"
)

// Service is a read-only view over the loaded configuration
type Service struct {
	config *common.Config
}

// NewService creates a new config service
func NewService(cfg *common.Config) *Service {
	return &Service{config: cfg}
}

// Snapshot is the configuration as served to the dashboard. Secrets are
// reported as present/absent only.
type Snapshot struct {
	Environment     string                    `json:"environment"`
	ServerURL       string                    `json:"server_url"`
	LogLevel        string                    `json:"log_level"`
	LocalOnly       bool                      `json:"local_only"`
	ApifyConfigured bool                      `json:"apify_configured"`
	Actors          map[string]string         `json:"actors"`
	Jobs            common.JobsConfig         `json:"jobs"`
	Partnerships    common.PartnershipsConfig `json:"partnerships"`
	Scheduler       common.SchedulerConfig    `json:"scheduler"`
}

// GetServerURL returns the base URL the server listens on
func (s *Service) GetServerURL() string {
	return fmt.Sprintf("http://%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Snapshot returns the redacted configuration
func (s *Service) Snapshot() *Snapshot {
	return &Snapshot{
		Environment:     s.config.Environment,
		ServerURL:       s.GetServerURL(),
		LogLevel:        s.config.Logging.Level,
		LocalOnly:       !s.config.HasRemoteStore(),
		ApifyConfigured: s.config.Apify.Token != "",
		Actors: map[string]string{
			"discovery":   s.config.Apify.DiscoveryActor,
			"analytics":   s.config.Apify.AnalyticsActor,
			"video_stats": s.config.Apify.VideoStatsActor,
		},
		Jobs:         s.config.Jobs,
		Partnerships: s.config.Partnerships,
		Scheduler:    s.config.Scheduler,
	}
}
