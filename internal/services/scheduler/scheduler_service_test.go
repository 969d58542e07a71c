package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/models"
)

type fakeRefresher struct {
	calls    atomic.Int32
	explicit atomic.Bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, explicit []*models.Partnership) (bool, error) {
	f.calls.Add(1)
	if explicit != nil {
		f.explicit.Store(true)
	}
	return true, nil
}

type fakeMaintainer struct {
	sweeps     atomic.Int32
	recovers   atomic.Int32
	recoverErr error
}

func (f *fakeMaintainer) SweepFinished() int {
	f.sweeps.Add(1)
	return 0
}

func (f *fakeMaintainer) RecoverOrphans(ctx context.Context) (int, error) {
	f.recovers.Add(1)
	return 0, f.recoverErr
}

func TestRegisterJob_RejectsBadScheduleAndDuplicates(t *testing.T) {
	s := NewService(arbor.NewLogger())

	assert.Error(t, s.RegisterJob("bad", "not a schedule", "", func() error { return nil }))
	require.NoError(t, s.RegisterJob("once", "@every 1h", "", func() error { return nil }))
	assert.Error(t, s.RegisterJob("once", "@every 1h", "", func() error { return nil }))
}

func TestRegisterJob_EmptyScheduleIsDisabled(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("manual", "", "manual only", func() error { return nil }))

	status, err := s.GetJobStatus("manual")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)
}

func TestTriggerJob_RecordsOutcome(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Stop() })

	require.NoError(t, s.RegisterJob("fails", "@every 1h", "", func() error { return errors.New("boom") }))
	require.NoError(t, s.TriggerJob("fails"))

	require.Eventually(t, func() bool {
		status, err := s.GetJobStatus("fails")
		return err == nil && status.LastRun != nil
	}, time.Second, 2*time.Millisecond)

	status, err := s.GetJobStatus("fails")
	require.NoError(t, err)
	assert.Equal(t, "boom", status.LastError)
	assert.NotNil(t, status.NextRun)

	assert.Error(t, s.TriggerJob("missing"))
}

func TestTriggerJob_RecoversPanic(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("panics", "", "", func() error { panic("bad") }))
	require.NoError(t, s.TriggerJob("panics"))

	require.Eventually(t, func() bool {
		status, err := s.GetJobStatus("panics")
		return err == nil && status.LastError == "panic: bad"
	}, time.Second, 2*time.Millisecond)
}

func TestRegisterDefaultJobs(t *testing.T) {
	s := NewService(arbor.NewLogger())
	refresher := &fakeRefresher{}
	maintainer := &fakeMaintainer{recoverErr: errors.New("store down")}

	cfg := common.NewDefaultConfig().Scheduler
	cfg.PartnershipRefresh = ""
	require.NoError(t, RegisterDefaultJobs(s, &cfg, refresher, maintainer))

	statuses := s.GetAllJobStatuses()
	require.Len(t, statuses, 2)
	assert.False(t, statuses[JobPartnershipRefresh].Enabled)
	assert.True(t, statuses[JobRegistrySweep].Enabled)

	require.NoError(t, s.TriggerJob(JobPartnershipRefresh))
	require.NoError(t, s.TriggerJob(JobRegistrySweep))
	require.NoError(t, s.Stop())

	s.wg.Wait()
	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.False(t, refresher.explicit.Load())
	assert.Equal(t, int32(1), maintainer.sweeps.Load())
	assert.Equal(t, int32(1), maintainer.recovers.Load())

	status, err := s.GetJobStatus(JobRegistrySweep)
	require.NoError(t, err)
	assert.Equal(t, "store down", status.LastError)
}
