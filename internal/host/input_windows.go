//go:build windows

package host

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	procBlockInput = user32.NewProc("BlockInput")
)

func blockInput(block bool) error {
	var arg uintptr
	if block {
		arg = 1
	}
	if err := procBlockInput.Find(); err != nil {
		return fmt.Errorf("load BlockInput: %w", err)
	}
	r, _, err := procBlockInput.Call(arg)
	if r == 0 {
		return fmt.Errorf("BlockInput(%t): %w", block, err)
	}
	return nil
}
