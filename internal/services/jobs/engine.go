package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/apify"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// ErrJobRunning is returned when deleting a job that has not finished
var ErrJobRunning = errors.New("job is still running")

// Engine owns the job lifecycle: start, submit, poll, finalize
type Engine struct {
	registry *Registry
	client   interfaces.RunClient
	store    interfaces.DurableStore
	identity interfaces.IdentityProvider
	logger   arbor.ILogger

	discoveryActor string
	analyticsActor string
	config         common.JobsConfig

	pollInterval    time.Duration
	completionDelay time.Duration
	retainFinished  time.Duration
	orphanAfter     time.Duration
	now             func() time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	analyticsMu sync.Mutex
}

// NewEngine creates the engine. identity may be nil (no owner recorded).
func NewEngine(registry *Registry, client interfaces.RunClient, store interfaces.DurableStore, identity interfaces.IdentityProvider, config *common.Config, logger arbor.ILogger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	jobsConfig := config.Jobs
	if jobsConfig.MaxPollAttempts <= 0 {
		jobsConfig.MaxPollAttempts = 150
	}
	if jobsConfig.ProgressStep <= 0 {
		jobsConfig.ProgressStep = 5
	}
	if jobsConfig.MaxLimit <= 0 {
		jobsConfig.MaxLimit = 500
	}
	if jobsConfig.DefaultLimit <= 0 {
		jobsConfig.DefaultLimit = 50
	}
	if jobsConfig.AnalyticsResultsLimit <= 0 {
		jobsConfig.AnalyticsResultsLimit = 10
	}

	return &Engine{
		registry:        registry,
		client:          client,
		store:           store,
		identity:        identity,
		logger:          logger,
		discoveryActor:  config.Apify.DiscoveryActor,
		analyticsActor:  config.Apify.AnalyticsActor,
		config:          jobsConfig,
		pollInterval:    common.ParseDuration(jobsConfig.PollInterval, 4*time.Second),
		completionDelay: common.ParseDuration(jobsConfig.CompletionDelay, time.Second),
		retainFinished:  common.ParseDuration(jobsConfig.RetainFinished, 10*time.Minute),
		orphanAfter:     common.ParseDuration(jobsConfig.OrphanAfter, 15*time.Minute),
		now:             time.Now,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// StartDiscovery starts a lookalike-creator discovery job
func (e *Engine) StartDiscovery(ctx context.Context, seed string, limit int) (string, error) {
	return e.StartJob(ctx, models.JobKindDiscovery, seed, limit)
}

// StartAnalytics starts an analytics job for seed, or returns the most recent
// completed (or still running) analytics job for the same seed unless force
// is set. Forcing deletes every prior completed analytics job for the seed
// from both tiers first. reused reports whether an existing job id was returned.
func (e *Engine) StartAnalytics(ctx context.Context, seed string, force bool) (jobID string, reused bool, err error) {
	seed, err = SanitizeSeed(seed)
	if err != nil {
		return "", false, err
	}

	e.analyticsMu.Lock()
	defer e.analyticsMu.Unlock()

	key := models.SeedKey(seed)

	if !force {
		for _, job := range e.registry.Active() {
			if job.Kind == models.JobKindAnalytics && models.SeedKey(job.Seed) == key {
				e.logger.Debug().Str("job_id", job.ID).Str("seed", seed).Msg("Analytics job already running for seed")
				return job.ID, true, nil
			}
		}
	}

	history, err := e.store.ListHistory(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to read history: %w", err)
	}

	for _, rec := range history {
		if rec.Kind != models.JobKindAnalytics || models.SeedKey(rec.Seed) != key || rec.Status != models.JobStatusCompleted {
			continue
		}
		if !force {
			e.logger.Info().Str("job_id", rec.ID).Str("seed", seed).Msg("Reusing cached analytics job")
			return rec.ID, true, nil
		}
		if err := e.store.DeleteJob(ctx, rec.ID); err != nil {
			return "", false, fmt.Errorf("failed to delete superseded analytics job %s: %w", rec.ID, err)
		}
		e.registry.Evict(rec.ID)
		e.logger.Info().Str("job_id", rec.ID).Str("seed", seed).Msg("Superseded analytics job deleted")
	}

	jobID, err = e.StartJob(ctx, models.JobKindAnalytics, seed, e.config.AnalyticsResultsLimit)
	return jobID, false, err
}

// StartJob validates the request, records the job as pending in the registry
// and in history, then runs it in the background. Once it returns an id,
// later failures surface only through GetStatus.
func (e *Engine) StartJob(ctx context.Context, kind models.JobKind, seed string, limit int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown job kind %q", kind)
	}

	seed, err := SanitizeSeed(seed)
	if err != nil {
		return "", err
	}

	if e.ctx.Err() != nil {
		return "", fmt.Errorf("job engine is shutting down")
	}

	job := models.NewJob(common.NewJobID(), kind, seed, e.clampLimit(kind, limit), e.ownerID(), e.now())
	if err := e.registry.Create(job); err != nil {
		return "", err
	}

	if err := e.store.SaveHistory(ctx, models.NewHistoryRecord(job)); err != nil {
		e.registry.Evict(job.ID)
		return "", fmt.Errorf("failed to record job history: %w", err)
	}

	e.logger.Info().
		Str("job_id", job.ID).
		Str("kind", string(kind)).
		Str("seed", seed).
		Int("limit", job.ResultLimit).
		Msg("Job started")

	common.SafeGoTracked(&e.wg, e.logger, "job-"+job.ID, func() {
		e.run(e.ctx, job.ID)
	})

	return job.ID, nil
}

func (e *Engine) clampLimit(kind models.JobKind, limit int) int {
	if kind == models.JobKindAnalytics {
		if limit <= 0 {
			return e.config.AnalyticsResultsLimit
		}
	}
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}
	return limit
}

func (e *Engine) ownerID() string {
	if e.identity == nil {
		return ""
	}
	return e.identity.CurrentUserID()
}

func (e *Engine) actorFor(kind models.JobKind) string {
	if kind == models.JobKindAnalytics {
		return e.analyticsActor
	}
	return e.discoveryActor
}

func inputFor(job *models.Job) interface{} {
	if job.Kind == models.JobKindAnalytics {
		return apify.NewAnalyticsInput(job.Seed, job.ResultLimit)
	}
	return apify.NewDiscoveryInput(job.Seed, job.ResultLimit)
}

// GetStatus looks the job up in the registry, then the local tier, then the remote tier
func (e *Engine) GetStatus(ctx context.Context, id string) (*models.JobStatusView, error) {
	if job, ok := e.registry.Get(id); ok {
		return job.View(), nil
	}

	found, err := e.store.LookupJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return found.Record.View(found.Results, found.Source), nil
}

// ListHistory returns durable job history, newest first
func (e *Engine) ListHistory(ctx context.Context) ([]*models.HistoryRecord, error) {
	return e.store.ListHistory(ctx)
}

// DeleteJob removes a finished job from memory and both tiers
func (e *Engine) DeleteJob(ctx context.Context, id string) error {
	if job, ok := e.registry.Get(id); ok && !job.Status.IsTerminal() {
		return ErrJobRunning
	}

	if _, err := e.store.LookupJob(ctx, id); err != nil {
		if _, live := e.registry.Get(id); !live {
			return err
		}
	}

	e.registry.Evict(id)
	if err := e.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	e.logger.Info().Str("job_id", id).Msg("Job deleted")
	return nil
}

// SweepFinished evicts persisted terminal jobs from memory
func (e *Engine) SweepFinished() int {
	evicted := e.registry.SweepFinished(e.retainFinished, e.now())
	if evicted > 0 {
		e.logger.Debug().Int("evicted", evicted).Msg("Swept finished jobs from registry")
	}
	return evicted
}

// RecoverOrphans marks history records orphaned when they were left
// non-terminal by a previous process: not live in this registry and not
// updated within orphan_after.
func (e *Engine) RecoverOrphans(ctx context.Context) (int, error) {
	history, err := e.store.ListHistory(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := e.now().Add(-e.orphanAfter)
	recovered := 0
	for _, rec := range history {
		if rec.Status.IsTerminal() || rec.UpdatedAt.After(cutoff) {
			continue
		}
		if _, live := e.registry.Get(rec.ID); live {
			continue
		}

		rec.Status = models.JobStatusOrphaned
		rec.UpdatedAt = e.now()
		if err := e.store.SaveHistory(ctx, rec); err != nil {
			e.logger.Warn().Err(err).Str("job_id", rec.ID).Msg("Failed to mark orphaned job")
			continue
		}
		recovered++
	}

	if recovered > 0 {
		e.logger.Info().Int("count", recovered).Msg("Marked abandoned jobs as orphaned")
	}
	return recovered, nil
}

// Shutdown cancels every poll loop, waits for them to exit (bounded by ctx)
// and marks whatever was still in flight as orphaned.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = fmt.Errorf("timed out waiting for job loops: %w", ctx.Err())
	}

	for _, job := range e.registry.Active() {
		e.finish(job.ID, models.JobStatusOrphaned, "[System] Job abandoned on shutdown.", nil)
	}

	e.store.Wait()
	return waitErr
}
