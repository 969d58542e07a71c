// -----------------------------------------------------------------------
// Last Modified: Wednesday, 14th October 2026 10:31:52 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/apify"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/handlers"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/services/appstore"
	"github.com/ternarybob/creatorlogic/internal/services/config"
	"github.com/ternarybob/creatorlogic/internal/services/jobs"
	"github.com/ternarybob/creatorlogic/internal/services/partnerships"
	"github.com/ternarybob/creatorlogic/internal/services/scheduler"
	"github.com/ternarybob/creatorlogic/internal/services/session"
	"github.com/ternarybob/creatorlogic/internal/storage/badger"
	"github.com/ternarybob/creatorlogic/internal/storage/dualtier"
	"github.com/ternarybob/creatorlogic/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger
	ctx    context.Context
	cancel context.CancelFunc

	// Storage tiers
	LocalStore  *badger.Manager
	RemoteStore *postgres.Store // nil in local-only mode
	Store       *dualtier.Store

	// Services
	ConfigService      *config.Service
	SessionService     *session.Service
	RunClient          *apify.Client
	JobEngine          *jobs.Engine
	PartnershipService *partnerships.Service
	AppStoreService    *appstore.Service
	SchedulerService   interfaces.SchedulerService

	// HTTP handlers
	APIHandler         *handlers.APIHandler
	JobHandler         *handlers.JobHandler
	PartnershipHandler *handlers.PartnershipHandler
	InsightsHandler    *handlers.InsightsHandler
	SessionHandler     *handlers.SessionHandler
	AppStoreHandler    *handlers.AppStoreHandler
	SchedulerHandler   *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		Logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initDatabase(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	// Jobs left non-terminal by a previous process can never finish
	if n, err := app.JobEngine.RecoverOrphans(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to recover orphaned jobs")
	} else if n > 0 {
		logger.Info().Int("count", n).Msg("Marked orphaned jobs from previous run")
	}

	if err := app.SchedulerService.Start(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Bool("remote_store", app.RemoteStore != nil).
		Bool("apify_configured", cfg.Apify.Token != "").
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the local Badger tier and, when configured, the Postgres mirror
func (a *App) initDatabase() error {
	local, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create badger storage: %w", err)
	}
	a.LocalStore = local
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Msg("Local storage initialized")

	if !a.Config.HasRemoteStore() {
		a.Logger.Info().Msg("No postgres DSN configured, running local-only")
		return nil
	}

	remote, err := postgres.NewStore(a.ctx, a.Logger, &a.Config.Storage.Postgres)
	if err != nil {
		// Local is truth; an unreachable mirror degrades to local-only
		a.Logger.Warn().Err(err).Msg("Remote store unavailable, running local-only")
		return nil
	}
	a.RemoteStore = remote
	return nil
}

// initServices initializes all business services in dependency order:
// session (identity) -> dual-tier store -> run client -> job engine ->
// partnerships -> app store -> scheduler
func (a *App) initServices() error {
	var err error

	a.ConfigService = config.NewService(a.Config)

	a.SessionService, err = session.NewService(a.ctx, a.LocalStore, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %w", err)
	}

	var remote interfaces.RemoteStorage
	if a.RemoteStore != nil {
		remote = a.RemoteStore
	}
	a.Store = dualtier.NewStore(a.LocalStore, remote, a.SessionService, a.Logger)

	a.RunClient = apify.NewClient(a.Config.Apify.Token,
		apify.WithBaseURL(a.Config.Apify.BaseURL),
		apify.WithLogger(a.Logger),
		apify.WithRateLimit(a.Config.Apify.RateLimit),
		apify.WithHTTPClient(&http.Client{
			Timeout: common.ParseDuration(a.Config.Apify.RequestTimeout, apify.DefaultTimeout),
		}),
	)
	if a.Config.Apify.Token == "" {
		a.Logger.Warn().Msg("Apify token not configured; job submissions will fail until CREATORLOGIC_APIFY_TOKEN is set")
	}

	a.JobEngine = jobs.NewEngine(jobs.NewRegistry(), a.RunClient, a.Store, a.SessionService, a.Config, a.Logger)

	a.PartnershipService = partnerships.NewService(a.Store, partnerships.NewMemoryCache(), a.RunClient, a.Config, a.Logger)
	a.SessionService.OnLogout(a.PartnershipService.Invalidate)

	a.AppStoreService = appstore.NewService(a.Store, appstore.NewVerifier(&a.Config.AppStore, a.Logger), a.Logger)

	sched := scheduler.NewService(a.Logger)
	if err := scheduler.RegisterDefaultJobs(sched, &a.Config.Scheduler, a.PartnershipService, a.JobEngine); err != nil {
		return fmt.Errorf("failed to register scheduled jobs: %w", err)
	}
	a.SchedulerService = sched

	return nil
}

// initHandlers builds the HTTP handlers over the services
func (a *App) initHandlers() {
	var pinger handlers.Pinger
	if a.RemoteStore != nil {
		pinger = a.RemoteStore
	}

	a.APIHandler = handlers.NewAPIHandler(pinger, a.ConfigService, a.Logger)
	a.JobHandler = handlers.NewJobHandler(a.JobEngine, a.Logger)
	a.PartnershipHandler = handlers.NewPartnershipHandler(a.PartnershipService, a.Logger)
	a.InsightsHandler = handlers.NewInsightsHandler(a.JobEngine, a.PartnershipService, a.Logger)
	a.SessionHandler = handlers.NewSessionHandler(a.SessionService, a.Logger)
	a.AppStoreHandler = handlers.NewAppStoreHandler(a.AppStoreService, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)
}

// Close stops background work and closes storage. Safe on a partially built App.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.PartnershipService != nil {
		if err := a.PartnershipService.Shutdown(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Partnership refresh did not stop cleanly")
		}
	}

	if a.JobEngine != nil {
		if err := a.JobEngine.Shutdown(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Job engine did not stop cleanly")
		}
	}

	// Let in-flight remote mirrors land before the pool closes
	if a.Store != nil {
		a.Store.Wait()
	}

	if a.RemoteStore != nil {
		a.RemoteStore.Close()
		a.Logger.Info().Msg("Remote store closed")
	}

	if a.LocalStore != nil {
		if err := a.LocalStore.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
