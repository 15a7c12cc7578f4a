//go:build !unix && !windows

package lock

import "os"

// No advisory locking is available; the PID file is still written.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
