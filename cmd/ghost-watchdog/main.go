// Command ghost-watchdog keeps the lab application running: it launches
// the configured artifact, waits for it to exit, and relaunches it after a
// fixed backoff until it is stopped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/ghost/internal/config"
	"github.com/mattjoyce/ghost/internal/events"
	"github.com/mattjoyce/ghost/internal/history"
	"github.com/mattjoyce/ghost/internal/lock"
	"github.com/mattjoyce/ghost/internal/log"
	"github.com/mattjoyce/ghost/internal/storage"
	"github.com/mattjoyce/ghost/internal/supervisor"
)

// Exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitRestartLimit = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("ghost-watchdog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("ghost-watchdog starting", "config", cfg.Path)

	if cfg.Supervisor.LockPath != "" {
		pidLock, err := lock.AcquirePIDLock(cfg.Supervisor.LockPath)
		if err != nil {
			logger.Error("failed to acquire PID lock (another watchdog may be running)",
				"path", cfg.Supervisor.LockPath, "error", err)
			return exitFailure
		}
		defer pidLock.Release()
		logger.Info("acquired PID lock", "path", pidLock.Path())
	}

	hub := events.NewHub(0)

	if cfg.State.Path != "" {
		db, err := storage.OpenSQLite(ctx, cfg.State.Path)
		if err != nil {
			// History is an aid for the admin; supervision continues without it.
			logger.Warn("history disabled: failed to open database", "path", cfg.State.Path, "error", err)
		} else {
			defer db.Close()
			rec := history.StartRecorder(history.New(db), hub)
			defer rec.Close()
		}
	}

	sup := supervisor.New(supervisor.Config{
		Launch:      cfg.Supervisor.Launch,
		WorkDir:     cfg.Supervisor.WorkDir,
		Backoff:     cfg.Supervisor.Backoff,
		Grace:       cfg.Supervisor.Grace,
		MaxRestarts: cfg.Supervisor.MaxRestarts,
	}, supervisor.ExecLauncher{}, hub)

	err = sup.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Info("ghost-watchdog stopped")
		return exitOK
	case errors.Is(err, supervisor.ErrRestartLimit):
		return exitRestartLimit
	default:
		logger.Error("watchdog failed", "error", err)
		return exitFailure
	}
}
