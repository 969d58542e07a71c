package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/ternarybob/creatorlogic/internal/normalize"
)

// run submits the job and polls it to a terminal status
func (e *Engine) run(ctx context.Context, id string) {
	logger := e.logger.WithCorrelationId(id)

	job, ok := e.registry.Get(id)
	if !ok {
		return
	}

	actor := e.actorFor(job.Kind)
	run, err := e.client.SubmitRun(ctx, actor, inputFor(job))
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn().Err(err).Str("actor", actor).Msg("Run submission failed")
		e.finish(id, models.JobStatusFailed, fmt.Sprintf("[Error] Could not start remote run: %v", err), err)
		return
	}

	e.update(id, logger, func(j *models.Job) error {
		j.RemoteRunID = run.ID
		j.AppendLog(fmt.Sprintf("[Apify] Run %s accepted.", run.ID), e.config.MaxLogLines)
		return j.Transition(models.JobStatusSubmitted, e.now())
	})
	e.persist(id, logger)

	logger.Debug().Str("run_id", run.ID).Str("actor", actor).Msg("Remote run submitted")

	e.poll(ctx, id, actor, run.ID, logger)
}

// poll checks the run at a fixed interval. Polls are strictly sequential.
func (e *Engine) poll(ctx context.Context, id, actor, runID string, logger arbor.ILogger) {
	timer := time.NewTimer(e.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= e.config.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		run, err := e.client.GetRun(ctx, actor, runID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Int("attempt", attempt).Msg("Run status check failed")
			e.finish(id, models.JobStatusFailed, fmt.Sprintf("[Error] Lost contact with remote run: %v", err), err)
			return
		}

		switch {
		case run.Status.IsSucceeded():
			e.finalize(ctx, id, run, logger)
			return

		case run.Status.IsTerminal():
			logger.Warn().Str("run_status", string(run.Status)).Msg("Remote run ended without results")
			e.finish(id, models.JobStatusFailed,
				fmt.Sprintf("[Error] Remote run ended with status %s.", run.Status),
				fmt.Errorf("remote run %s", strings.ToLower(string(run.Status))))
			return
		}

		entered := false
		e.update(id, logger, func(j *models.Job) error {
			entered = j.Status != models.JobStatusPolling
			if err := j.Transition(models.JobStatusPolling, e.now()); err != nil {
				return err
			}
			j.PollAttempts = attempt
			j.AdvanceProgress(e.config.ProgressStep)
			j.AppendLogOnce(fmt.Sprintf("[Apify] Actor is %s... (%d%%)", strings.ToLower(string(run.Status)), j.Progress), e.config.MaxLogLines)
			return nil
		})
		if entered {
			e.persist(id, logger)
		}

		if e.config.RemoteLogTail {
			e.mergeLogTail(ctx, id, runID, logger)
		}

		timer.Reset(e.pollInterval)
	}

	logger.Warn().Int("attempts", e.config.MaxPollAttempts).Msg("Poll budget exhausted")
	e.finish(id, models.JobStatusTimedOut,
		fmt.Sprintf("[System] Gave up after %d status checks.", e.config.MaxPollAttempts), nil)
}

// mergeLogTail appends new remote log lines. Failures are ignored.
func (e *Engine) mergeLogTail(ctx context.Context, id, runID string, logger arbor.ILogger) {
	lines, err := e.client.GetLogTail(ctx, runID, e.config.LogTailLines)
	if err != nil {
		logger.Debug().Err(err).Msg("Log tail unavailable")
		return
	}
	if len(lines) == 0 {
		return
	}

	e.update(id, logger, func(j *models.Job) error {
		for _, line := range lines {
			j.AppendLogOnce(line, e.config.MaxLogLines)
		}
		return nil
	})
}

// finalize fetches and normalizes the dataset, persists history and results
// to the durable store, then flips the job to completed.
func (e *Engine) finalize(ctx context.Context, id string, run *models.RemoteRun, logger arbor.ILogger) {
	items, err := e.client.GetDatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn().Err(err).Str("dataset_id", run.DefaultDatasetID).Msg("Dataset fetch failed")
		e.finish(id, models.JobStatusFailed, fmt.Sprintf("[Error] Could not fetch results: %v", err), err)
		return
	}

	job, ok := e.registry.Get(id)
	if !ok {
		return
	}

	var (
		creators []models.Creator
		posts    []models.ContentPost
	)
	if job.Kind == models.JobKindAnalytics {
		posts = normalize.ContentPosts(items)
	} else {
		creators = normalize.Creators(items)
	}

	done := job.Clone()
	if err := done.Complete(creators, posts, e.now()); err != nil {
		logger.Warn().Err(err).Msg("Job finished in an unexpected state")
		return
	}

	results := &models.JobResults{JobID: id, Kind: job.Kind, Creators: creators, Posts: posts, StoredAt: e.now()}
	persistCtx := context.Background()
	if err := e.store.SaveResults(persistCtx, results); err != nil {
		logger.Error().Err(err).Msg("Failed to store results")
		e.finish(id, models.JobStatusFailed, "[Error] Results could not be saved.", err)
		return
	}
	if err := e.store.SaveHistory(persistCtx, models.NewHistoryRecord(done)); err != nil {
		logger.Error().Err(err).Msg("Failed to store history")
		e.finish(id, models.JobStatusFailed, "[Error] Results could not be saved.", err)
		return
	}

	dropped := len(items) - done.ResultCount()
	e.update(id, logger, func(j *models.Job) error {
		j.AppendLog(fmt.Sprintf("[System] Found %d results. Finalizing...", done.ResultCount()), e.config.MaxLogLines)
		return nil
	})

	if e.completionDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(e.completionDelay):
		}
	}

	e.update(id, logger, func(j *models.Job) error {
		if err := j.Complete(creators, posts, e.now()); err != nil {
			return err
		}
		j.AppendLog("[System] Done.", e.config.MaxLogLines)
		return nil
	})

	logger.Info().
		Int("results", done.ResultCount()).
		Int("dropped", dropped).
		Int("raw_items", len(items)).
		Msg("Job completed")
}

// finish moves a job to a terminal status and persists its history record
func (e *Engine) finish(id string, status models.JobStatus, line string, cause error) {
	logger := e.logger.WithCorrelationId(id)
	e.update(id, logger, func(j *models.Job) error {
		if err := j.Transition(status, e.now()); err != nil {
			return err
		}
		if cause != nil {
			j.Error = cause.Error()
		}
		j.AppendLog(line, e.config.MaxLogLines)
		return nil
	})
	e.persist(id, logger)
}

func (e *Engine) update(id string, logger arbor.ILogger, fn func(j *models.Job) error) {
	if _, err := e.registry.Update(id, fn); err != nil {
		logger.Debug().Err(err).Msg("Job update skipped")
	}
}

// persist writes the job's current history record
func (e *Engine) persist(id string, logger arbor.ILogger) {
	job, ok := e.registry.Get(id)
	if !ok {
		return
	}
	if err := e.store.SaveHistory(context.Background(), models.NewHistoryRecord(job)); err != nil {
		logger.Warn().Err(err).Str("status", string(job.Status)).Msg("Failed to persist job history")
	}
}
