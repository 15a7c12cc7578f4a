package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"
)

// Launcher starts the watched application.
type Launcher interface {
	Launch(spec LaunchSpec) (Process, error)
}

// Process is a handle to one launched instance.
type Process interface {
	Pid() int
	// Wait blocks until the process exits and returns its exit code. A
	// non-zero exit is not an error.
	Wait() (int, error)
	Interrupt() error
	Kill() error
}

// ExecLauncher starts the application as a child process that shares the
// watchdog's stdout and stderr. The working directory is set on the child
// only; the watchdog's own directory is never changed.
type ExecLauncher struct{}

func (ExecLauncher) Launch(spec LaunchSpec) (Process, error) {
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("empty launch argv")
	}
	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Path, err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("wait for process: %w", err)
}

// Interrupt asks the process to stop. Windows has no deliverable interrupt
// for a child without a console group, so it is killed instead.
func (p *execProcess) Interrupt() error {
	if runtime.GOOS == "windows" {
		return p.cmd.Process.Kill()
	}
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *execProcess) Kill() error { return p.cmd.Process.Kill() }
