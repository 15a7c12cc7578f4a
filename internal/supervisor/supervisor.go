// Package supervisor keeps one watched application alive: launch it, wait
// for it to exit, back off, relaunch, until the context is cancelled.
package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/ghost/internal/events"
	"github.com/mattjoyce/ghost/internal/host"
	"github.com/mattjoyce/ghost/internal/log"
)

const (
	DefaultBackoff = 3 * time.Second
	DefaultGrace   = 5 * time.Second
)

var (
	ErrUnsupportedPlatform = errors.New("supervisor: unsupported platform")
	ErrRestartLimit        = errors.New("supervisor: restart limit reached")
)

// Config controls where the watched application lives and how it is
// relaunched.
type Config struct {
	// Launch is the launch artifact. Relative paths resolve against BaseDir.
	Launch string
	// WorkDir is the child's working directory. Relative paths resolve
	// against BaseDir; empty means the launch artifact's directory.
	WorkDir string
	// BaseDir defaults to the directory of the running executable.
	BaseDir string

	Backoff     time.Duration
	Grace       time.Duration
	MaxRestarts int // 0 means unbounded
	Platform    host.Platform
}

// LaunchSpec is a fully resolved launch request.
type LaunchSpec struct {
	Path string
	Dir  string
	Argv []string
}

// Run describes one supervised process instance.
type Run struct {
	ID        string    `json:"id"`
	Iteration int       `json:"iteration"`
	PID       int       `json:"pid"`
	Launch    string    `json:"launch"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
}

// Supervisor runs the launch/wait/backoff loop. Only one child is alive at
// a time: a new launch happens only after the previous child is reaped.
type Supervisor struct {
	cfg      Config
	launcher Launcher
	hub      *events.Hub
	logger   *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Supervisor. hub may be nil.
func New(cfg Config, launcher Launcher, hub *events.Hub) *Supervisor {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Platform == "" {
		cfg.Platform = host.Current()
	}
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	return &Supervisor{
		cfg:      cfg,
		launcher: launcher,
		hub:      hub,
		logger:   log.WithComponent("watchdog"),
		sleep:    sleepContext,
	}
}

// Supported reports whether the supervision loop can run on p.
func Supported(p host.Platform) bool {
	return p == host.Windows || p.Unix()
}

// DefaultLaunch returns the launch artifact path relative to the watchdog
// executable for platform p.
func DefaultLaunch(p host.Platform) string {
	if p == host.Windows {
		return filepath.Join("..", "scripts", "run.bat")
	}
	return filepath.Join("..", "scripts", "run.sh")
}

// Resolve computes the launch spec from the config.
func (s *Supervisor) Resolve() (LaunchSpec, error) {
	base := s.cfg.BaseDir
	if base == "" {
		dir, err := host.ExecutableDir()
		if err != nil {
			return LaunchSpec{}, err
		}
		base = dir
	}

	launch := s.cfg.Launch
	if launch == "" {
		launch = DefaultLaunch(s.cfg.Platform)
	}
	path := absFrom(base, launch)

	dir := filepath.Dir(path)
	if s.cfg.WorkDir != "" {
		dir = absFrom(base, s.cfg.WorkDir)
	}

	return LaunchSpec{Path: path, Dir: dir, Argv: launchArgv(s.cfg.Platform, path)}, nil
}

func absFrom(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// launchArgv wraps scripts in the interpreter the platform needs.
func launchArgv(p host.Platform, path string) []string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case p == host.Windows && (ext == ".bat" || ext == ".cmd"):
		return []string{"cmd", "/C", path}
	case p != host.Windows && ext == ".sh":
		return []string{"/bin/sh", path}
	default:
		return []string{path}
	}
}

// Run loops until ctx is cancelled (returning ctx.Err()), the restart bound
// is reached (ErrRestartLimit), or the platform is unsupported
// (ErrUnsupportedPlatform, returned before anything is launched).
func (s *Supervisor) Run(ctx context.Context) error {
	if !Supported(s.cfg.Platform) {
		s.logger.Error("supervision is unsupported on this platform", "platform", string(s.cfg.Platform))
		return ErrUnsupportedPlatform
	}

	spec, err := s.Resolve()
	if err != nil {
		return err
	}

	s.logger.Info("watchdog started", "launch", spec.Path, "dir", spec.Dir, "backoff", s.cfg.Backoff)
	defer s.logger.Info("watchdog stopped")

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		run := s.runOnce(ctx, spec, iteration)

		if err := ctx.Err(); err != nil {
			return err
		}
		if s.cfg.MaxRestarts > 0 && iteration > s.cfg.MaxRestarts {
			s.logger.Error("restart limit reached, giving up", "max_restarts", s.cfg.MaxRestarts)
			return ErrRestartLimit
		}

		s.logger.Info("application exited, restarting after backoff",
			"run_id", run.ID, "exit_code", run.ExitCode, "backoff", s.cfg.Backoff)
		if err := s.sleep(ctx, s.cfg.Backoff); err != nil {
			return err
		}
	}
}

// runOnce launches the application and blocks until it is reaped. A spawn
// failure is recorded as exit code -1.
func (s *Supervisor) runOnce(ctx context.Context, spec LaunchSpec, iteration int) Run {
	run := Run{
		ID:        uuid.NewString(),
		Iteration: iteration,
		Launch:    spec.Path,
		StartedAt: time.Now().UTC(),
		ExitCode:  -1,
	}
	logger := log.WithRun(run.ID).With("component", "watchdog", "iteration", iteration)

	logger.Info("launching application", "argv", spec.Argv, "dir", spec.Dir)
	proc, err := s.launcher.Launch(spec)
	if err != nil {
		logger.Error("launch failed", "error", err)
		run.Error = err.Error()
		run.EndedAt = time.Now().UTC()
		s.publish(events.TypeRunExited, run)
		return run
	}

	run.PID = proc.Pid()
	s.publish(events.TypeRunLaunched, run)

	code, err := s.wait(ctx, proc, logger)
	run.ExitCode = code
	run.EndedAt = time.Now().UTC()
	if err != nil {
		run.Error = err.Error()
		logger.Warn("wait failed", "error", err)
	}
	s.publish(events.TypeRunExited, run)
	return run
}

// wait blocks until proc exits. On cancellation it interrupts proc, waits up
// to the grace period, then kills it; proc is always reaped before return.
func (s *Supervisor) wait(ctx context.Context, proc Process, logger *slog.Logger) (int, error) {
	type result struct {
		code int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := proc.Wait()
		done <- result{code, err}
	}()

	select {
	case r := <-done:
		return r.code, r.err
	case <-ctx.Done():
	}

	logger.Info("stopping application", "pid", proc.Pid())
	if err := proc.Interrupt(); err != nil {
		logger.Warn("interrupt failed", "error", err)
	}

	grace := time.NewTimer(s.cfg.Grace)
	defer grace.Stop()

	select {
	case r := <-done:
		return r.code, r.err
	case <-grace.C:
		logger.Warn("application did not exit after interrupt, killing")
		if err := proc.Kill(); err != nil {
			logger.Error("kill failed", "error", err)
		}
		r := <-done
		return r.code, r.err
	}
}

func (s *Supervisor) publish(eventType string, run Run) {
	if s.hub != nil {
		s.hub.Publish(eventType, run)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
