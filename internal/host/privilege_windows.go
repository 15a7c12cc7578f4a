//go:build windows

package host

import "golang.org/x/sys/windows"

// isElevated checks the process token, which covers both a real
// administrator and a UAC-elevated session.
func isElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
