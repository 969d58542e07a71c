package partnerships

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/apify"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// Refresh outcomes
const (
	OutcomeRunning      = "running"
	OutcomeSucceeded    = "succeeded"
	OutcomeFailed       = "failed"
	OutcomeTimedOut     = "timed_out"
	OutcomeSubmitFailed = "submit_failed"
	OutcomeCancelled    = "cancelled"
)

// RefreshState describes the current or most recent refresh run
type RefreshState struct {
	InFlight   bool       `json:"in_flight"`
	RunID      string     `json:"run_id,omitempty"`
	URLCount   int        `json:"url_count"`
	Matched    int        `json:"matched"`
	Outcome    string     `json:"outcome,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// applyFunc merges extraction records into the tracked partnerships
type applyFunc func(ctx context.Context, items []json.RawMessage) (int, error)

// Coordinator re-scrapes tracked videos. At most one extraction run is in
// flight; the lock is released on every exit path of the poll loop.
type Coordinator struct {
	client       interfaces.RunClient
	apply        applyFunc
	actor        string
	newerThan    string
	pollInterval time.Duration
	maxAttempts  int
	logger       arbor.ILogger

	refreshing atomic.Bool

	stateMu sync.RWMutex
	state   RefreshState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator creates a refresh coordinator
func NewCoordinator(client interfaces.RunClient, apply applyFunc, config *common.Config, logger arbor.ILogger) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	maxAttempts := config.Partnerships.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 120
	}

	return &Coordinator{
		client:       client,
		apply:        apply,
		actor:        config.Apify.VideoStatsActor,
		newerThan:    config.Partnerships.OnlyPostsNewerThan,
		pollInterval: common.ParseDuration(config.Partnerships.PollInterval, 5*time.Second),
		maxAttempts:  maxAttempts,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// InstagramURLs returns the video URLs the extraction actor can handle
func InstagramURLs(partnerships []*models.Partnership) []string {
	var urls []string
	for _, p := range partnerships {
		if p.VideoURL != "" && strings.Contains(strings.ToLower(p.VideoURL), "instagram") {
			urls = append(urls, p.VideoURL)
		}
	}
	return urls
}

// Refresh starts one extraction run for the partnerships' Instagram URLs.
// It returns false without doing anything when a refresh is already in
// flight or no URL qualifies. A submission failure releases the lock and
// returns false with the error.
func (c *Coordinator) Refresh(ctx context.Context, partnerships []*models.Partnership) (bool, error) {
	urls := InstagramURLs(partnerships)
	if len(urls) == 0 {
		c.logger.Debug().Int("partnerships", len(partnerships)).Msg("No Instagram URLs to refresh")
		return false, nil
	}

	if !c.refreshing.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("Refresh already in progress, skipping")
		return false, nil
	}

	if c.ctx.Err() != nil {
		c.refreshing.Store(false)
		return false, nil
	}

	started := time.Now()
	run, err := c.client.SubmitRun(ctx, c.actor, apify.NewVideoStatsInput(urls, c.newerThan))
	if err != nil {
		c.setState(RefreshState{URLCount: len(urls), Outcome: OutcomeSubmitFailed, Error: err.Error(), StartedAt: &started, FinishedAt: timePtr(time.Now())})
		c.refreshing.Store(false)
		c.logger.Warn().Err(err).Int("urls", len(urls)).Msg("Partnership refresh submission failed")
		return false, err
	}

	c.setState(RefreshState{InFlight: true, RunID: run.ID, URLCount: len(urls), Outcome: OutcomeRunning, StartedAt: &started})
	c.logger.Info().Str("run_id", run.ID).Int("urls", len(urls)).Msg("Partnership refresh started")

	common.SafeGoTracked(&c.wg, c.logger, "partnership-refresh", func() {
		defer c.refreshing.Store(false)
		c.poll(c.ctx, run.ID)
	})

	return true, nil
}

// InFlight reports whether a refresh currently holds the lock
func (c *Coordinator) InFlight() bool {
	return c.refreshing.Load()
}

// State returns the current or last refresh state
func (c *Coordinator) State() RefreshState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Coordinator) setState(s RefreshState) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state = s
}

func (c *Coordinator) finish(outcome string, matched int, err error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state.InFlight = false
	c.state.Outcome = outcome
	c.state.Matched = matched
	c.state.FinishedAt = timePtr(time.Now())
	if err != nil {
		c.state.Error = err.Error()
	}
}

func (c *Coordinator) poll(ctx context.Context, runID string) {
	logger := c.logger.WithCorrelationId(runID)

	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			c.finish(OutcomeCancelled, 0, ctx.Err())
			return
		case <-timer.C:
		}

		run, err := c.client.GetRun(ctx, c.actor, runID)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("Partnership refresh status check failed")
			c.finish(OutcomeFailed, 0, err)
			return
		}

		if run.Status.IsSucceeded() {
			items, err := c.client.GetDatasetItems(ctx, run.DefaultDatasetID)
			if err != nil {
				logger.Warn().Err(err).Msg("Partnership refresh dataset fetch failed")
				c.finish(OutcomeFailed, 0, err)
				return
			}

			matched, err := c.apply(ctx, items)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to apply refreshed metrics")
				c.finish(OutcomeFailed, matched, err)
				return
			}

			logger.Info().Int("items", len(items)).Int("matched", matched).Msg("Partnership metrics refreshed")
			c.finish(OutcomeSucceeded, matched, nil)
			return
		}

		if run.Status.IsTerminal() {
			logger.Warn().Str("run_status", string(run.Status)).Msg("Partnership refresh run ended without results")
			c.finish(OutcomeFailed, 0, fmt.Errorf("remote run %s", strings.ToLower(string(run.Status))))
			return
		}

		timer.Reset(c.pollInterval)
	}

	logger.Warn().Int("attempts", c.maxAttempts).Msg("Partnership refresh poll budget exhausted")
	c.finish(OutcomeTimedOut, 0, nil)
}

// Shutdown cancels an in-flight poll and waits for it (bounded by ctx)
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
