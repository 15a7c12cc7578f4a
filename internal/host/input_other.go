//go:build !windows

package host

func blockInput(bool) error { return ErrUnsupported }
