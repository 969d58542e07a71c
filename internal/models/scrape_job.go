// -----------------------------------------------------------------------
// Scrape Job - in-memory runtime state for one discovery/analytics run
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"time"
)

// JobKind identifies which remote actor a job runs.
type JobKind string

const (
	JobKindDiscovery JobKind = "discovery"
	JobKindAnalytics JobKind = "analytics"
)

// Valid reports whether the kind is one the engine knows how to run.
func (k JobKind) Valid() bool {
	return k == JobKindDiscovery || k == JobKindAnalytics
}

// JobStatus is the lifecycle state of a job.
//
// pending -> submitted -> polling -> completed
// pending|submitted|polling -> failed | timed_out | orphaned
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusSubmitted JobStatus = "submitted"
	JobStatusPolling   JobStatus = "polling"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusTimedOut  JobStatus = "timed_out"
	JobStatusOrphaned  JobStatus = "orphaned"
)

// MaxProgressWhilePolling caps progress until a job completes.
const MaxProgressWhilePolling = 95

// IsTerminal reports whether no transition may leave this status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusTimedOut, JobStatusOrphaned:
		return true
	}
	return false
}

func (s JobStatus) rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusSubmitted:
		return 1
	case JobStatusPolling:
		return 2
	}
	return 3
}

// CanTransition reports whether a job may move from one status to another.
// Re-entering the current non-terminal status is allowed so repeated polls are no-ops.
func CanTransition(from, to JobStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to.IsTerminal() {
		return true
	}
	return to.rank() >= from.rank()
}

// Job is the live state of one asynchronous scrape run. After it reaches a
// terminal status and is persisted, the HistoryRecord is the source of truth.
type Job struct {
	ID           string        `json:"id"`
	Kind         JobKind       `json:"kind"`
	Seed         string        `json:"seed"`
	ResultLimit  int           `json:"result_limit"`
	RemoteRunID  string        `json:"remote_run_id,omitempty"`
	Status       JobStatus     `json:"status"`
	Progress     int           `json:"progress"`
	LogTail      []string      `json:"log_tail"`
	Creators     []Creator     `json:"creators,omitempty"`
	Posts        []ContentPost `json:"posts,omitempty"`
	Error        string        `json:"error,omitempty"`
	PollAttempts int           `json:"poll_attempts"`
	OwnerID      string        `json:"owner_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewJob creates a pending job with its initial system log line.
func NewJob(id string, kind JobKind, seed string, limit int, ownerID string, now time.Time) *Job {
	label := "Discovery"
	if kind == JobKindAnalytics {
		label = "Analytics"
	}
	return &Job{
		ID:          id,
		Kind:        kind,
		Seed:        seed,
		ResultLimit: limit,
		Status:      JobStatusPending,
		LogTail:     []string{fmt.Sprintf("[System] Initializing %s...", label)},
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Transition moves the job to a new status, rejecting backwards moves.
func (j *Job) Transition(to JobStatus, now time.Time) error {
	if !CanTransition(j.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	j.UpdatedAt = now
	return nil
}

// AdvanceProgress bumps progress by step without passing the polling cap.
func (j *Job) AdvanceProgress(step int) {
	next := j.Progress + step
	if next > MaxProgressWhilePolling {
		next = MaxProgressWhilePolling
	}
	if next > j.Progress {
		j.Progress = next
	}
}

// Complete stores the normalized results and marks the job completed at 100%.
func (j *Job) Complete(creators []Creator, posts []ContentPost, now time.Time) error {
	if err := j.Transition(JobStatusCompleted, now); err != nil {
		return err
	}
	j.Creators = creators
	j.Posts = posts
	j.Progress = 100
	return nil
}

// AppendLog adds a line, keeping at most max lines (oldest dropped).
func (j *Job) AppendLog(line string, max int) {
	j.LogTail = append(j.LogTail, line)
	if max > 0 && len(j.LogTail) > max {
		j.LogTail = append([]string(nil), j.LogTail[len(j.LogTail)-max:]...)
	}
}

// AppendLogOnce adds a line unless an identical line is already present.
func (j *Job) AppendLogOnce(line string, max int) bool {
	for _, existing := range j.LogTail {
		if existing == line {
			return false
		}
	}
	j.AppendLog(line, max)
	return true
}

// ResultCount returns the number of normalized records the job holds.
func (j *Job) ResultCount() int {
	if j.Kind == JobKindAnalytics {
		return len(j.Posts)
	}
	return len(j.Creators)
}

// Clone returns a deep copy safe to hand outside the registry lock.
func (j *Job) Clone() *Job {
	c := *j
	c.LogTail = append([]string(nil), j.LogTail...)
	if j.Creators != nil {
		c.Creators = append([]Creator(nil), j.Creators...)
	}
	if j.Posts != nil {
		c.Posts = append([]ContentPost(nil), j.Posts...)
	}
	return &c
}

// Source tier names reported on status views.
const (
	StatusSourceMemory = "memory"
	StatusSourceLocal  = "local"
	StatusSourceRemote = "remote"
)

// JobStatusView is what callers see when they poll a job.
type JobStatusView struct {
	JobID       string        `json:"job_id"`
	Kind        JobKind       `json:"kind"`
	Seed        string        `json:"seed"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"`
	Logs        []string      `json:"logs"`
	ResultCount int           `json:"result_count"`
	Creators    []Creator     `json:"creators,omitempty"`
	Posts       []ContentPost `json:"posts,omitempty"`
	Error       string        `json:"error,omitempty"`
	Source      string        `json:"source"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// View renders the job for callers. Results are only included once completed.
func (j *Job) View() *JobStatusView {
	v := &JobStatusView{
		JobID:       j.ID,
		Kind:        j.Kind,
		Seed:        j.Seed,
		Status:      j.Status,
		Progress:    j.Progress,
		Logs:        append([]string(nil), j.LogTail...),
		ResultCount: j.ResultCount(),
		Error:       j.Error,
		Source:      StatusSourceMemory,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.Status == JobStatusCompleted {
		v.Creators = append([]Creator(nil), j.Creators...)
		v.Posts = append([]ContentPost(nil), j.Posts...)
	}
	return v
}
