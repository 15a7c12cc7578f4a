package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mattjoyce/ghost/internal/command"
	"github.com/mattjoyce/ghost/internal/host"
	"github.com/mattjoyce/ghost/internal/log"
	"github.com/mattjoyce/ghost/internal/runner"
)

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/mattjoyce/ghost/internal/dispatch CommandRunner

// CommandRunner executes one subprocess. *runner.Runner satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (*runner.Result, error)
}

// action performs one well-known command on behalf of d.
type action func(ctx context.Context, d *Dispatcher) Outcome

// Options configures a Dispatcher. Zero fields fall back to the host's
// real capabilities.
type Options struct {
	Platform   host.Platform
	Privilege  host.PrivilegeContext
	Input      host.InputBlocker
	Runner     CommandRunner
	Shell      []string // argv prefix for the generic fallback
	Interfaces []string // secondary network tier targets
}

// Dispatcher maps command strings to host actions.
type Dispatcher struct {
	platform   host.Platform
	privilege  host.PrivilegeContext
	input      host.InputBlocker
	runner     CommandRunner
	shell      []string
	interfaces []string
	actions    map[command.Tag]action
	logger     *slog.Logger
}

// New creates a Dispatcher for opts.Platform (or the current platform).
func New(opts Options) *Dispatcher {
	if opts.Platform == "" {
		opts.Platform = host.Current()
	}
	if opts.Privilege == nil {
		opts.Privilege = host.SystemPrivilege()
	}
	if opts.Input == nil {
		opts.Input = host.SystemInput()
	}
	if opts.Runner == nil {
		opts.Runner = runner.New(runner.DefaultTimeout, runner.DefaultMaxOutput)
	}
	if len(opts.Shell) == 0 {
		opts.Shell = DefaultShell(opts.Platform)
	}
	if len(opts.Interfaces) == 0 {
		opts.Interfaces = DefaultInterfaces(opts.Platform)
	}

	return &Dispatcher{
		platform:   opts.Platform,
		privilege:  opts.Privilege,
		input:      opts.Input,
		runner:     opts.Runner,
		shell:      slices.Clone(opts.Shell),
		interfaces: slices.Clone(opts.Interfaces),
		actions:    actionsFor(opts.Platform),
		logger:     log.WithComponent("dispatch").With("platform", string(opts.Platform)),
	}
}

// DefaultShell returns the argv prefix used to run free-text commands.
func DefaultShell(p host.Platform) []string {
	if p == host.Windows {
		return []string{"cmd", "/C"}
	}
	return []string{"/bin/sh", "-c"}
}

// DefaultInterfaces returns the interface names the secondary network tier
// targets, one per interface class (wireless, wired).
func DefaultInterfaces(p host.Platform) []string {
	if p == host.Windows {
		return []string{"Wi-Fi", "Ethernet"}
	}
	return []string{"wlan0", "eth0"}
}

func actionsFor(p host.Platform) map[command.Tag]action {
	switch p {
	case host.Windows:
		return windowsActions
	case host.Linux:
		return linuxActions
	default:
		return nil
	}
}

// Supports reports whether tag has an implementation on this dispatcher's
// platform. The shell fallback is always supported.
func (d *Dispatcher) Supports(tag command.Tag) bool {
	if tag == command.Shell {
		return true
	}
	_, ok := d.actions[tag]
	return ok
}

// Dispatch runs raw as exactly one action and always returns an Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) (out Outcome) {
	cmd := command.Parse(raw)
	logger := d.logger.With("command", string(cmd.Tag))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("action panicked", "panic", r)
			out = failure(KindSubprocessFailure, fmt.Sprintf("action panicked: %v", r))
		}
		out.Tag = cmd.Tag
		out.Duration = time.Since(start)

		attrs := []any{"ok", out.OK, "duration", out.Duration}
		if out.Kind != "" {
			attrs = append(attrs, "kind", string(out.Kind))
		}
		if out.OK {
			logger.Info("dispatch completed", attrs...)
		} else {
			logger.Warn("dispatch failed", append(attrs, "message", out.Message)...)
		}
	}()

	if cmd.IsShell() {
		return d.runShell(ctx, cmd.Raw)
	}

	act, ok := d.actions[cmd.Tag]
	if !ok {
		return failure(KindUnsupportedPlatform,
			fmt.Sprintf("%s is unsupported on this platform (%s)", cmd.Tag, d.platform))
	}
	return act(ctx, d)
}

// runShell is the generic fallback. A non-zero exit is informational.
func (d *Dispatcher) runShell(ctx context.Context, raw string) Outcome {
	if strings.TrimSpace(raw) == "" {
		return failure(KindInvalidCommand, "empty command")
	}

	argv := append(slices.Clone(d.shell), raw)
	res, err := d.runner.Run(ctx, argv)
	if err != nil {
		return subprocessFailure(fmt.Errorf("error executing: %w", err))
	}

	return Outcome{
		OK:       true,
		Message:  fmt.Sprintf("exit status %d", res.ExitCode),
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
		ExitCode: res.ExitCode,
	}
}

// confirm builds an action that runs argv and reports msg on success.
func confirm(msg string, argv ...string) action {
	return func(ctx context.Context, d *Dispatcher) Outcome {
		res, err := d.runner.Run(ctx, argv)
		if err != nil {
			return subprocessFailure(err)
		}
		if res.ExitCode != 0 {
			out := failure(KindSubprocessFailure,
				fmt.Sprintf("%q exited with status %d", strings.Join(argv, " "), res.ExitCode))
			out.Stdout = string(res.Stdout)
			out.Stderr = string(res.Stderr)
			out.ExitCode = res.ExitCode
			return out
		}
		return success(msg)
	}
}

func blockInput(_ context.Context, d *Dispatcher) Outcome {
	if !d.privilege.IsElevated() {
		d.logger.Warn("input block skipped: process is not elevated")
		return Outcome{OK: true, Kind: KindPrivilegeDenied, Message: "Input block skipped: not elevated"}
	}
	return d.setInput(true, "Input blocked")
}

func unblockInput(_ context.Context, d *Dispatcher) Outcome {
	return d.setInput(false, "Input unblocked")
}

func (d *Dispatcher) setInput(block bool, msg string) Outcome {
	if err := d.input.BlockInput(block); err != nil {
		if errors.Is(err, host.ErrUnsupported) {
			return failure(KindUnsupportedPlatform, err.Error())
		}
		return subprocessFailure(err)
	}
	return success(msg)
}

// Tools lists the executables the well-known actions on p invoke.
func Tools(p host.Platform) []string {
	switch p {
	case host.Windows:
		return []string{"rundll32.exe", "shutdown", "powershell", "netsh"}
	case host.Linux:
		return []string{"loginctl", "systemctl", "nmcli", "ip", "amixer"}
	default:
		return nil
	}
}
