package models

import "time"

// RunStatus is the state reported by the remote job platform for one actor run.
type RunStatus string

const (
	RunStatusReady     RunStatus = "READY"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusTimingOut RunStatus = "TIMING-OUT"
	RunStatusTimedOut  RunStatus = "TIMED-OUT"
	RunStatusAborting  RunStatus = "ABORTING"
	RunStatusAborted   RunStatus = "ABORTED"
)

// IsTerminal reports whether the run will not change state again.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusTimedOut, RunStatusAborted:
		return true
	}
	return false
}

// IsSucceeded reports whether the run finished and produced a dataset.
func (s RunStatus) IsSucceeded() bool {
	return s == RunStatusSucceeded
}

// IsFailed reports whether the run ended without a usable dataset.
func (s RunStatus) IsFailed() bool {
	return s.IsTerminal() && !s.IsSucceeded()
}

// RemoteRun is one actor run on the remote job platform.
type RemoteRun struct {
	ID               string     `json:"id"`
	ActorID          string     `json:"actId"`
	Status           RunStatus  `json:"status"`
	DefaultDatasetID string     `json:"defaultDatasetId"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	FinishedAt       *time.Time `json:"finishedAt,omitempty"`
}
