// Command ghostctl is the admin tool for a ghost agent: it reviews dispatch
// history and watchdog runs, checks the configuration, and locks it.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := NewRootCmd()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
