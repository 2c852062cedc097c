package app

import (
	"context"

	"musicd/config"
	"musicd/internal/database"
	"musicd/internal/jobs"
	"musicd/internal/logger"
	"musicd/internal/repositories"
	"musicd/internal/services"
)

// App is the composition root wiring config, storage, and services
// together for every entrypoint in cmd/.
type App struct {
	Database database.DB
	Config   config.Config
	Services services.Service
	Repos    repositories.Repository
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	cfg, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if err := db.Migrate(); err != nil {
		return &App{}, log.Err("failed to run migrations", err)
	}

	repos := repositories.New(db)

	servicesComposite, err := services.New(db, cfg)
	if err != nil {
		return &App{}, log.Err("failed to initialize services", err)
	}

	if err := jobs.RegisterAllJobs(servicesComposite.Scheduler, cfg, servicesComposite); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	return &App{
		Database: db,
		Config:   cfg,
		Services: servicesComposite,
		Repos:    repos,
	}, nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if closeErr := a.Database.Close(); closeErr != nil {
		err = closeErr
	}

	return err
}
