package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Logging      LoggingConfig      `toml:"logging"`
	Storage      StorageConfig      `toml:"storage"`
	Apify        ApifyConfig        `toml:"apify"`
	Jobs         JobsConfig         `toml:"jobs"`
	Partnerships PartnershipsConfig `toml:"partnerships"`
	Scheduler    SchedulerConfig    `toml:"scheduler"`
	AppStore     AppStoreConfig     `toml:"appstore"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05"
}

type StorageConfig struct {
	Badger   BadgerConfig   `toml:"badger"`
	Postgres PostgresConfig `toml:"postgres"`
}

// BadgerConfig represents the local cache tier
type BadgerConfig struct {
	Path           string `toml:"path"`
	InMemory       bool   `toml:"in_memory"`        // No files on disk; used by tests and throwaway runs
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup
}

// PostgresConfig represents the remote relational tier. Empty DSN = local-only mode.
type PostgresConfig struct {
	DSN            string `toml:"dsn"`
	MaxConns       int32  `toml:"max_conns"`
	ConnectTimeout string `toml:"connect_timeout"`
}

// ApifyConfig configures the remote job platform client
type ApifyConfig struct {
	Token           string `toml:"token"` // Usually provided via CREATORLOGIC_APIFY_TOKEN
	BaseURL         string `toml:"base_url"`
	DiscoveryActor  string `toml:"discovery_actor"`
	AnalyticsActor  string `toml:"analytics_actor"`
	VideoStatsActor string `toml:"video_stats_actor"`
	RequestTimeout  string `toml:"request_timeout"`
	RateLimit       int    `toml:"rate_limit"` // Requests per second
}

// JobsConfig tunes the job lifecycle engine
type JobsConfig struct {
	PollInterval          string `toml:"poll_interval"`
	MaxPollAttempts       int    `toml:"max_poll_attempts"`
	ProgressStep          int    `toml:"progress_step"`
	LogTailLines          int    `toml:"log_tail_lines"`     // Lines fetched from the remote run log each poll
	MaxLogLines           int    `toml:"max_log_lines"`      // Bound on a job's in-memory log
	CompletionDelay       string `toml:"completion_delay"`   // Pause before flipping to completed
	DefaultLimit          int    `toml:"default_limit"`      // Discovery limit when caller gives none
	MaxLimit              int    `toml:"max_limit"`          // Upper clamp for discovery limit
	AnalyticsResultsLimit int    `toml:"analytics_results"`  // Posts fetched per analytics run
	RetainFinished        string `toml:"retain_finished"`    // How long terminal jobs stay in memory
	OrphanAfter           string `toml:"orphan_after"`       // Non-terminal history older than this is orphaned at startup
	RemoteLogTail         bool   `toml:"remote_log_tail"`    // Merge remote run log lines into the job log
}

// PartnershipsConfig tunes the refresh coordinator
type PartnershipsConfig struct {
	PollInterval       string `toml:"poll_interval"`
	MaxPollAttempts    int    `toml:"max_poll_attempts"`
	OnlyPostsNewerThan string `toml:"only_posts_newer_than"`
}

// SchedulerConfig holds cron expressions for background work. Empty disables the entry.
type SchedulerConfig struct {
	PartnershipRefresh string `toml:"partnership_refresh"`
	RegistrySweep      string `toml:"registry_sweep"`
}

// AppStoreConfig configures the App Store Connect verification call
type AppStoreConfig struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout string `toml:"request_timeout"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8086,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/creatorlogic",
			},
			Postgres: PostgresConfig{
				MaxConns:       4,
				ConnectTimeout: "10s",
			},
		},
		Apify: ApifyConfig{
			BaseURL:         "https://api.apify.com/v2",
			DiscoveryActor:  "thenetaji/instagram-related-user-scraper",
			AnalyticsActor:  "apify/instagram-reel-scraper",
			VideoStatsActor: "apify/instagram-reel-scraper",
			RequestTimeout:  "30s",
			RateLimit:       5,
		},
		Jobs: JobsConfig{
			PollInterval:          "4s",
			MaxPollAttempts:       150,
			ProgressStep:          5,
			LogTailLines:          15,
			MaxLogLines:           100,
			CompletionDelay:       "1s",
			DefaultLimit:          50,
			MaxLimit:              500,
			AnalyticsResultsLimit: 10,
			RetainFinished:        "10m",
			OrphanAfter:           "15m",
			RemoteLogTail:         true,
		},
		Partnerships: PartnershipsConfig{
			PollInterval:       "5s",
			MaxPollAttempts:    120,
			OnlyPostsNewerThan: "2020-01-01",
		},
		Scheduler: SchedulerConfig{
			PartnershipRefresh: "@every 6h",
			RegistrySweep:      "@every 1m",
		},
		AppStore: AppStoreConfig{
			BaseURL:        "https://api.appstoreconnect.apple.com",
			RequestTimeout: "15s",
		},
	}
}

// LoadFromFile loads a single configuration file (defaults -> file -> env)
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env never overrides variables already present in the process environment
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CREATORLOGIC_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("CREATORLOGIC_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CREATORLOGIC_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging
	if level := os.Getenv("CREATORLOGIC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CREATORLOGIC_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage
	if badgerPath := os.Getenv("CREATORLOGIC_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if dsn := os.Getenv("CREATORLOGIC_POSTGRES_DSN"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	}

	// Apify
	if token := os.Getenv("CREATORLOGIC_APIFY_TOKEN"); token != "" {
		config.Apify.Token = token
	} else if token := os.Getenv("APIFY_TOKEN"); token != "" {
		config.Apify.Token = token
	} else if token := os.Getenv("VITE_APIFY_TOKEN"); token != "" {
		config.Apify.Token = token
	}
	if baseURL := os.Getenv("CREATORLOGIC_APIFY_BASE_URL"); baseURL != "" {
		config.Apify.BaseURL = baseURL
	}

	// Jobs
	if interval := os.Getenv("CREATORLOGIC_JOBS_POLL_INTERVAL"); interval != "" {
		config.Jobs.PollInterval = interval
	}
	if attempts := os.Getenv("CREATORLOGIC_JOBS_MAX_POLL_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil {
			config.Jobs.MaxPollAttempts = a
		}
	}

	// Scheduler
	if refresh, ok := os.LookupEnv("CREATORLOGIC_SCHEDULER_PARTNERSHIP_REFRESH"); ok {
		config.Scheduler.PartnershipRefresh = refresh
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail later at a less useful point.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if !c.Storage.Badger.InMemory && c.Storage.Badger.Path == "" {
		return fmt.Errorf("storage.badger.path is required unless in_memory is set")
	}
	for name, schedule := range map[string]string{
		"scheduler.partnership_refresh": c.Scheduler.PartnershipRefresh,
		"scheduler.registry_sweep":      c.Scheduler.RegistrySweep,
	} {
		if err := ValidateJobSchedule(schedule); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// ValidateJobSchedule validates a cron expression. Empty means disabled.
func ValidateJobSchedule(schedule string) error {
	if schedule == "" {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// HasRemoteStore reports whether a remote relational tier is configured
func (c *Config) HasRemoteStore() bool {
	return c.Storage.Postgres.DSN != ""
}

// ParseDuration parses a duration string, returning fallback when empty or invalid.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
