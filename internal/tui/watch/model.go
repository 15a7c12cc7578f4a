package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/ghost/internal/history"
	"github.com/mattjoyce/ghost/internal/supervisor"
)

const (
	dispatchLimit = 100
	runLimit      = 5
	fetchTimeout  = 3 * time.Second
)

// Source is the history the view polls. *history.Store satisfies it.
type Source interface {
	ListDispatches(ctx context.Context, limit int) ([]history.Dispatch, error)
	ListRuns(ctx context.Context, limit int) ([]supervisor.Run, error)
}

type tickMsg time.Time

type snapshotMsg struct {
	dispatches []history.Dispatch
	runs       []supervisor.Run
}

type errMsg struct{ err error }

// Model is the BubbleTea model for the watch TUI.
type Model struct {
	source   Source
	interval time.Duration

	width  int
	height int

	table    table.Model
	runs     []supervisor.Run
	stats    Stats
	newestID string

	ticker  Ticker
	spinner Spinner
	theme   Theme

	lastError string
	now       func() time.Time
}

// New creates a watch model that refreshes from source every interval.
func New(source Source, interval time.Duration) Model {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "Time", Width: 8},
			{Title: "Command", Width: 32},
			{Title: "Result", Width: 24},
			{Title: "Exit", Width: 4},
			{Title: "Took", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{
		source:   source,
		interval: interval,
		table:    t,
		ticker:   NewTicker(),
		theme:    NewDefaultTheme(),
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(),
		m.tick(),
		tea.EnterAltScreen,
	)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetch() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		dispatches, err := source.ListDispatches(ctx, dispatchLimit)
		if err != nil {
			return errMsg{err}
		}
		runs, err := source.ListRuns(ctx, runLimit)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{dispatches: dispatches, runs: runs}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 16; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tickMsg:
		m.ticker.Tick()
		m.spinner.Decay(m.now())
		return m, tea.Batch(m.fetch(), m.tick())

	case snapshotMsg:
		m.apply(msg)
		return m, nil

	case errMsg:
		m.stats.Connected = false
		m.lastError = msg.err.Error()
		return m, nil
	}

	return m, nil
}

func (m *Model) apply(snap snapshotMsg) {
	rows := make([]table.Row, 0, len(snap.dispatches))
	failures, skipped := 0, 0
	for _, d := range snap.dispatches {
		switch {
		case !d.OK:
			failures++
		case d.Kind != "":
			skipped++
		}
		rows = append(rows, table.Row{
			statusGlyph(d),
			d.StartedAt.Local().Format("15:04:05"),
			truncate(d.Raw, 32),
			truncate(resultText(d), 24),
			fmt.Sprintf("%d", d.ExitCode),
			formatDuration(d.Duration),
		})
	}
	m.table.SetRows(rows)
	m.runs = snap.runs

	newest := ""
	if len(snap.dispatches) > 0 {
		newest = snap.dispatches[0].ID
	}
	if len(snap.runs) > 0 {
		newest += "/" + snap.runs[0].ID
	}
	if m.newestID != "" && newest != m.newestID {
		m.spinner.OnEvent(m.now())
	}
	m.newestID = newest

	m.stats = Stats{
		Dispatches: len(snap.dispatches),
		Failures:   failures,
		Skipped:    skipped,
		Runs:       len(snap.runs),
		Connected:  true,
	}
	if len(snap.runs) > 0 {
		code := snap.runs[0].ExitCode
		m.stats.LastExit = &code
	}
	m.lastError = ""
}

func statusGlyph(d history.Dispatch) string {
	switch {
	case d.OK && d.Kind != "":
		return "·"
	case d.OK:
		return "✓"
	default:
		return "✗"
	}
}

func resultText(d history.Dispatch) string {
	if d.Kind != "" && !d.OK {
		return d.Kind
	}
	if d.Message != "" {
		return d.Message
	}
	return "ok"
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func (m Model) renderRuns(width int) string {
	innerWidth := width - 4
	lines := []string{m.theme.Title.Render("WATCHDOG RUNS")}
	if len(m.runs) == 0 {
		lines = append(lines, m.theme.Dim.Render("  No runs recorded"))
	}
	for _, r := range m.runs {
		style := m.theme.StatusOK
		if r.ExitCode != 0 {
			style = m.theme.StatusFailed
		}
		line := fmt.Sprintf(" %s #%-3d pid %-6d exit %s  up %s",
			m.theme.Dim.Render(r.StartedAt.Local().Format("15:04:05")),
			r.Iteration, r.PID,
			style.Render(fmt.Sprintf("%d", r.ExitCode)),
			formatDuration(r.EndedAt.Sub(r.StartedAt)))
		if r.Error != "" {
			line += " " + m.theme.StatusFailed.Render(truncate(r.Error, 40))
		}
		lines = append(lines, line)
	}
	return m.theme.Border.Width(innerWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading history..."
	}

	header := renderHeader(m.stats, m.ticker, m.spinner, m.theme, m.width, m.now())
	commands := m.theme.Border.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, m.theme.Title.Render("COMMANDS"), m.table.View()))
	runs := m.renderRuns(m.width)

	parts := []string{header, commands, runs}
	if m.lastError != "" {
		parts = append(parts, m.theme.StatusFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError)))
	}
	parts = append(parts, lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(" [q] Quit • [r] Refresh • [↑/↓] Scroll"))

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}
