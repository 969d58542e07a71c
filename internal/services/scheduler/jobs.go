package scheduler

import (
	"fmt"
	"time"

	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
)

// Names of the built-in jobs
const (
	JobPartnershipRefresh = "partnership-refresh"
	JobRegistrySweep      = "registry-sweep"
)

const handlerTimeout = time.Minute

// RegisterDefaultJobs wires the periodic partnership refresh and the job
// registry sweep. The sweep also marks stale non-terminal history orphaned.
func RegisterDefaultJobs(s interfaces.SchedulerService, config *common.SchedulerConfig, refresher interfaces.PartnershipRefresher, maintainer interfaces.JobMaintainer) error {
	if err := s.RegisterJob(JobPartnershipRefresh, config.PartnershipRefresh, "Re-scrape metrics for tracked partnerships", func() error {
		ctx, cancel := jobContext(handlerTimeout)
		defer cancel()
		_, err := refresher.Refresh(ctx, nil)
		return err
	}); err != nil {
		return fmt.Errorf("failed to register %s: %w", JobPartnershipRefresh, err)
	}

	if err := s.RegisterJob(JobRegistrySweep, config.RegistrySweep, "Evict finished jobs and orphan abandoned history", func() error {
		ctx, cancel := jobContext(handlerTimeout)
		defer cancel()
		maintainer.SweepFinished()
		_, err := maintainer.RecoverOrphans(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("failed to register %s: %w", JobRegistrySweep, err)
	}

	return nil
}
