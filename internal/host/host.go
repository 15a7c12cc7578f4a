// Package host answers questions about the machine the agent runs on: which
// platform family it is, whether the process is elevated, and how to reach
// the input-blocking API.
package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrUnsupported is returned by host capabilities that have no
// implementation on the current platform.
var ErrUnsupported = errors.New("unsupported on this platform")

// Platform is a GOOS value.
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	Darwin  Platform = "darwin"
)

var unixFamily = map[Platform]struct{}{
	"aix":       {},
	"android":   {},
	"darwin":    {},
	"dragonfly": {},
	"freebsd":   {},
	"illumos":   {},
	"ios":       {},
	"linux":     {},
	"netbsd":    {},
	"openbsd":   {},
	"solaris":   {},
}

// Current returns the platform the binary was built for.
func Current() Platform { return Platform(runtime.GOOS) }

// Unix reports whether p belongs to the Unix family.
func (p Platform) Unix() bool {
	_, ok := unixFamily[p]
	return ok
}

func (p Platform) String() string { return string(p) }

// ExecutableDir returns the directory of the running executable with
// symlinks resolved. Installed files are located relative to it.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

//go:generate mockgen -destination=mocks/mock_host.go -package=mocks github.com/mattjoyce/ghost/internal/host PrivilegeContext,InputBlocker

// PrivilegeContext reports whether the current execution context is
// elevated. Implementations recompute the answer on every call.
type PrivilegeContext interface {
	IsElevated() bool
}

// PrivilegeFunc adapts a function to PrivilegeContext.
type PrivilegeFunc func() bool

func (f PrivilegeFunc) IsElevated() bool { return f() }

// InputBlocker toggles system-wide keyboard and mouse input.
type InputBlocker interface {
	BlockInput(block bool) error
}

// SystemPrivilege queries the operating system for elevation.
func SystemPrivilege() PrivilegeContext { return PrivilegeFunc(isElevated) }

// SystemInput returns the operating system input blocker. On platforms
// without one, every call fails with ErrUnsupported.
func SystemInput() InputBlocker { return systemInput{} }

type systemInput struct{}

func (systemInput) BlockInput(block bool) error { return blockInput(block) }
