package jobs

import (
	"musicd/config"
	"musicd/internal/logger"
	"musicd/internal/services"
)

// RegisterAllJobs registers every scheduled job against schedulerService.
// The library sweep is presently the only one, but the function stays
// separate from service composition so additional jobs (e.g. a cache
// vacuum) have a single place to register.
func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	svc services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	sweepJob := NewSweepJob(svc.Synchronizer, config.MusicSourceDir, services.Nightly)
	if err := schedulerService.AddJob(sweepJob); err != nil {
		return log.Err("failed to register library sweep job", err)
	}
	log.Info("Registered library sweep job", "schedule", "nightly")

	return nil
}
