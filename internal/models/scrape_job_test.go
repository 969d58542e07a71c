package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusSubmitted, true},
		{JobStatusSubmitted, JobStatusPolling, true},
		{JobStatusPolling, JobStatusPolling, true},
		{JobStatusPolling, JobStatusCompleted, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPolling, JobStatusTimedOut, true},
		{JobStatusSubmitted, JobStatusOrphaned, true},
		{JobStatusPolling, JobStatusSubmitted, false},
		{JobStatusSubmitted, JobStatusPending, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusPolling, false},
		{JobStatusOrphaned, JobStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestJobTransitionRejectsBackwards(t *testing.T) {
	now := time.Now()
	job := NewJob("j1", JobKindDiscovery, "seed", 10, "", now)

	require.NoError(t, job.Transition(JobStatusSubmitted, now))
	require.NoError(t, job.Transition(JobStatusPolling, now))

	err := job.Transition(JobStatusPending, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, JobStatusPolling, job.Status)
}

func TestJobProgressCappedUntilComplete(t *testing.T) {
	now := time.Now()
	job := NewJob("j1", JobKindAnalytics, "seed", 10, "", now)
	require.NoError(t, job.Transition(JobStatusPolling, now))

	last := job.Progress
	for i := 0; i < 40; i++ {
		job.AdvanceProgress(5)
		assert.GreaterOrEqual(t, job.Progress, last)
		assert.LessOrEqual(t, job.Progress, MaxProgressWhilePolling)
		last = job.Progress
	}
	assert.Equal(t, MaxProgressWhilePolling, job.Progress)

	require.NoError(t, job.Complete(nil, []ContentPost{{ShortCode: "abc"}}, now))
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, 1, job.ResultCount())
}

func TestJobInitialLogLine(t *testing.T) {
	d := NewJob("d", JobKindDiscovery, "seed", 10, "", time.Now())
	a := NewJob("a", JobKindAnalytics, "seed", 10, "", time.Now())

	assert.Equal(t, []string{"[System] Initializing Discovery..."}, d.LogTail)
	assert.Equal(t, []string{"[System] Initializing Analytics..."}, a.LogTail)
}

func TestJobAppendLogBounded(t *testing.T) {
	job := NewJob("j", JobKindDiscovery, "seed", 10, "", time.Now())
	for i := 0; i < 10; i++ {
		job.AppendLog(string(rune('a'+i)), 3)
	}
	assert.Equal(t, []string{"h", "i", "j"}, job.LogTail)

	assert.True(t, job.AppendLogOnce("k", 3))
	assert.False(t, job.AppendLogOnce("k", 3))
}

func TestViewOmitsResultsUntilCompleted(t *testing.T) {
	now := time.Now()
	job := NewJob("j", JobKindDiscovery, "seed", 10, "", now)
	job.Creators = []Creator{{Username: "x"}}

	assert.Empty(t, job.View().Creators)

	job.Status = JobStatusPolling
	require.NoError(t, job.Complete([]Creator{{Username: "x", Email: "x@y.z"}}, nil, now))
	view := job.View()
	assert.Len(t, view.Creators, 1)

	rec := NewHistoryRecord(job)
	assert.Equal(t, 1, rec.EmailsFoundCount)
	assert.Equal(t, "seed", rec.SeedKey)
}

func TestReachCountPrefersPlays(t *testing.T) {
	views, plays := int64(500), int64(900)
	post := ContentPost{ViewCount: &views, PlayCount: &plays}
	assert.Equal(t, int64(900), post.ReachCount())

	post.PlayCount = nil
	assert.Equal(t, int64(500), post.ReachCount())
}
