package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/mattjoyce/ghost/internal/history"
	"github.com/mattjoyce/ghost/internal/supervisor"
)

const maxCommandWidth = 48

func printDispatchTable(w io.Writer, dispatches []history.Dispatch) {
	if len(dispatches) == 0 {
		fmt.Fprintln(w, "No commands recorded.")
		return
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tCOMMAND\tRESULT\tEXIT\tTOOK")
	for _, d := range dispatches {
		var status string
		switch {
		case d.OK && d.Kind != "":
			status = yellow.Sprint("SKIP")
		case d.OK:
			status = green.Sprint("OK")
		default:
			status = red.Sprint("FAIL")
		}
		result := d.Message
		if !d.OK && d.Kind != "" {
			result = d.Kind + ": " + d.Message
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			d.StartedAt.Local().Format(time.DateTime),
			status,
			clip(d.Raw, maxCommandWidth),
			clip(result, maxCommandWidth),
			d.ExitCode,
			d.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()
}

func printRunTable(w io.Writer, runs []supervisor.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	red := color.New(color.FgRed)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tITER\tPID\tEXIT\tUPTIME\tERROR")
	for _, r := range runs {
		exit := fmt.Sprintf("%d", r.ExitCode)
		if r.ExitCode != 0 {
			exit = red.Sprint(exit)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Iteration,
			r.PID,
			exit,
			r.EndedAt.Sub(r.StartedAt).Round(time.Second),
			clip(r.Error, maxCommandWidth))
	}
	_ = tw.Flush()
}

// clip limits s to n runes.
func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
