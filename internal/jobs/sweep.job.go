package jobs

import (
	"context"

	"musicd/internal/logger"
	"musicd/internal/services"
	"musicd/internal/synchronizer"
)

// SweepJob runs a full reconciliation pass over the source root on the
// scheduler's cadence, picking up anything the watcher missed (spec
// §4.5, §4.6: "the sweep is the source of truth; the watcher is an
// optimization").
type SweepJob struct {
	sync       *synchronizer.Synchronizer
	sourceRoot string
	log        logger.Logger
	schedule   services.Schedule
}

func NewSweepJob(
	sync *synchronizer.Synchronizer,
	sourceRoot string,
	schedule services.Schedule,
) *SweepJob {
	return &SweepJob{
		sync:       sync,
		sourceRoot: sourceRoot,
		log:        logger.New("sweepJob"),
		schedule:   schedule,
	}
}

func (j *SweepJob) Name() string {
	return "LibrarySweep"
}

func (j *SweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	if err := j.sync.SweepAll(ctx, j.sourceRoot); err != nil {
		return log.Err("sweep failed", err)
	}

	return nil
}

func (j *SweepJob) Schedule() services.Schedule {
	return j.schedule
}
