// Command ghost-exec runs one remote-control command on this machine and
// prints the human-readable result. It always exits 0: the result text is
// the only channel back to the caller.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattjoyce/ghost/internal/config"
	"github.com/mattjoyce/ghost/internal/dispatch"
	"github.com/mattjoyce/ghost/internal/history"
	"github.com/mattjoyce/ghost/internal/log"
	"github.com/mattjoyce/ghost/internal/runner"
	"github.com/mattjoyce/ghost/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ghost-exec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: ghost-exec [--config path] <command...>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		// Usage has been printed; there is no command to run.
		return 0
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config, using defaults: %v\n", err)
		if cfg, err = config.ExecutableDefaults(); err != nil {
			// No anchor for the history database; skip recording.
			cfg = config.Defaults()
			cfg.State.Path = ""
		}
	}
	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)

	raw := strings.Join(fs.Args(), " ")

	d := dispatch.New(dispatch.Options{
		Runner:     runner.New(cfg.Dispatch.Timeout, cfg.Dispatch.MaxOutput),
		Shell:      cfg.Dispatch.ShellArgv(),
		Interfaces: cfg.Dispatch.Interfaces,
	})

	started := time.Now()
	out := d.Dispatch(ctx, raw)

	text := out.Text()
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(stdout, text)

	if cfg.State.Path != "" {
		if err := record(cfg.State.Path, raw, started, out); err != nil {
			log.WithCommand(string(out.Tag)).Warn("failed to record dispatch", "path", cfg.State.Path, "error", err)
		}
	}
	return 0
}

// record persists the outcome. It uses its own context so an interrupted
// dispatch is still recorded.
func record(path, raw string, started time.Time, out dispatch.Outcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = history.New(db).RecordDispatch(ctx, raw, started, out)
	return err
}
