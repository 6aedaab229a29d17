package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SignalDesk/internal/scheduler"
	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
)

// App encapsulates the serve lifecycle: the ops HTTP server and the cron
// scheduler. Infrastructure cleanup belongs to whoever built the App.
type App struct {
	log        *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
}

// New creates a new App instance with all dependencies.
func New(log *applogger.Logger, httpServer *xhttp.Server, sched *scheduler.Scheduler) *App {
	return &App{
		log:        log,
		httpServer: httpServer,
		scheduler:  sched,
	}
}

// Run starts the application and blocks until ctx is cancelled or the
// process is interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.scheduler.Start()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.scheduler.Stop()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// RunOnce triggers one watchlist scoring pass outside the schedule.
func (a *App) RunOnce() {
	a.scheduler.RunScoringNow()
}

func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.scheduler.Stop()

	a.log.Info("shutdown complete")
	return nil
}
