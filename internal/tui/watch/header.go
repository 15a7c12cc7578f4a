package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats summarizes the latest snapshot for the header.
type Stats struct {
	Dispatches int
	Failures   int
	Skipped    int // ok, but the action did not run
	Runs       int
	LastExit   *int
	Connected  bool
}

func renderHeader(stats Stats, ticker Ticker, spinner Spinner, theme Theme, width int, now time.Time) string {
	innerWidth := width - 4

	statusText := theme.StatusOK.Render("LIVE")
	if !stats.Connected {
		statusText = theme.StatusFailed.Render("NO DATA")
	}

	lastEventStr := "never"
	if !spinner.LastEvent().IsZero() {
		lastEventStr = fmt.Sprintf("%s ago", now.Sub(spinner.LastEvent()).Round(time.Second))
	}

	tickerStr := theme.Highlight.Render(ticker.Current())
	clock := theme.Dim.Render(now.Format("15:04:05"))
	titleText := fmt.Sprintf(" GHOST WATCH %s", tickerStr)

	pad := innerWidth - lipgloss.Width(titleText) - lipgloss.Width(clock) - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	lastExit := "-"
	if stats.LastExit != nil {
		lastExit = fmt.Sprintf("%d", *stats.LastExit)
	}
	skipped := theme.StatusSkipped.Render(fmt.Sprintf("Skipped: %d", stats.Skipped))
	statsLine := fmt.Sprintf(" %s  Commands: %d  Failed: %d  %s  Runs: %d  Last exit: %s",
		statusText, stats.Dispatches, stats.Failures, skipped, stats.Runs, lastExit)

	activityLine := fmt.Sprintf(" Last activity: %s %s", lastEventStr, spinner.Render(theme))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine, activityLine)
	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
