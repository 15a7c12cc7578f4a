package dispatch

import (
	"context"
	"fmt"
	"strings"
)

const (
	msgNetworkDisabled = "Network disabled"
	msgNetworkRestored = "Network restored"
)

// toggleNetwork builds a two-tier network action. secondary is applied once
// per configured interface only when primary cannot start or exits non-zero.
func toggleNetwork(enable bool, primary []string, secondary func(iface string) []string) action {
	msg := msgNetworkDisabled
	if enable {
		msg = msgNetworkRestored
	}

	return func(ctx context.Context, d *Dispatcher) Outcome {
		logger := d.logger.With("enable", enable)

		res, err := d.runner.Run(ctx, primary)
		if err == nil && res.ExitCode == 0 {
			out := success(msg)
			out.Stdout = string(res.Stdout)
			out.Stderr = string(res.Stderr)
			return out
		}
		if err != nil {
			logger.Warn("primary network mechanism failed to run, falling back", "error", err)
		} else {
			logger.Warn("primary network mechanism exited non-zero, falling back", "exit_code", res.ExitCode)
		}

		var failures []string
		applied := 0
		for _, iface := range d.interfaces {
			res, err := d.runner.Run(ctx, secondary(iface))
			switch {
			case err != nil:
				failures = append(failures, fmt.Sprintf("%s: %v", iface, err))
			case res.ExitCode != 0:
				failures = append(failures, fmt.Sprintf("%s: exit status %d: %s",
					iface, res.ExitCode, strings.TrimSpace(string(res.Stderr))))
			default:
				applied++
			}
		}
		if len(failures) > 0 {
			logger.Warn("secondary network mechanism failed", "failed", len(failures), "applied", applied)
		}

		out := success(msg)
		out.Stderr = strings.Join(failures, "\n")
		if applied == 0 {
			out.OK = false
			out.Kind = KindSubprocessFailure
		}
		return out
	}
}
