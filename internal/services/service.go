package services

import (
	"musicd/config"
	"musicd/internal/database"
	"musicd/internal/readapi"
	"musicd/internal/repositories"
	"musicd/internal/synchronizer"
	"musicd/internal/watcher"
)

// Service is the composition root: one struct holding every long-lived
// component the entrypoints (cmd/musicd) drive.
type Service struct {
	Transaction  *TransactionService
	Scheduler    *SchedulerService
	Synchronizer *synchronizer.Synchronizer
	Watcher      *watcher.Watcher
	ReadAPI      *readapi.ReadAPI
}

func New(db database.DB, cfg config.Config) (Service, error) {
	transactionService := NewTransactionService(db)
	repos := repositories.New(db)
	schedulerService := NewSchedulerService()

	sync := synchronizer.New(repos, transactionService, db)

	fsWatcher, err := watcher.New(cfg.MusicSourceDir, sync, repos)
	if err != nil {
		return Service{}, err
	}

	return Service{
		Transaction:  transactionService,
		Scheduler:    schedulerService,
		Synchronizer: sync,
		Watcher:      fsWatcher,
		ReadAPI:      readapi.New(repos),
	}, nil
}
