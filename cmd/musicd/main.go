package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"musicd/internal/app"
	"musicd/internal/logger"
)

func main() {
	log := logger.New("main")

	a, err := app.New()
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	command := "watch"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "sync":
		runSync(a, log)
	case "watch":
		runWatch(a, log)
	case "migrate":
		runMigrate(a, log, os.Args[2:])
	default:
		log.Error("unknown command", "command", command)
		os.Exit(1)
	}
}

func runSync(a *app.App, log logger.Logger) {
	log = log.Function("runSync")

	ctx := context.Background()
	if err := a.Services.Synchronizer.SweepAll(ctx, a.Config.MusicSourceDir); err != nil {
		log.Er("sweep failed", err)
		os.Exit(1)
	}

	log.Info("sweep complete")
}

func runWatch(a *app.App, log logger.Logger) {
	log = log.Function("runWatch")

	// The nightly sweep job was already registered against the scheduler
	// in app.New(); starting it here means watch mode gets both the
	// low-latency watcher and the sweep as a correctness backstop.
	if err := a.Services.Scheduler.Start(context.Background()); err != nil {
		log.Er("failed to start scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- a.Services.Watcher.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		stop()
		log.Info("shutting down gracefully, press Ctrl+C again to force")
		<-done
	case err := <-done:
		if err != nil {
			log.Er("watcher exited with error", err)
			os.Exit(1)
		}
	}

	log.Info("watcher exiting")
}

func runMigrate(a *app.App, log logger.Logger, args []string) {
	log = log.Function("runMigrate")

	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}

	var err error
	switch direction {
	case "up":
		err = a.Database.Migrate()
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil {
				log.Er("failed to parse step count", err)
				os.Exit(1)
			}
		}
		err = a.Database.MigrateDown(steps)
	default:
		log.Error("unknown migration direction", "direction", direction)
		os.Exit(1)
	}

	if err != nil {
		log.Er("migration failed", err)
		os.Exit(1)
	}

	log.Info("migrations complete")
}
