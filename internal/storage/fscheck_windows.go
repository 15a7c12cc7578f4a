//go:build windows

package storage

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// detectFilesystemType reports mapped network drives and UNC paths as
// "smbfs"; everything else is reported by its drive type.
func detectFilesystemType(path string) (string, error) {
	root := filepath.VolumeName(path) + `\`
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", root, err)
	}
	switch windows.GetDriveType(p) {
	case windows.DRIVE_REMOTE:
		return "smbfs", nil
	case windows.DRIVE_FIXED:
		return "ntfs", nil
	case windows.DRIVE_REMOVABLE:
		return "removable", nil
	default:
		return "unknown", nil
	}
}
