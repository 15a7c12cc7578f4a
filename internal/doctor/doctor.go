// Package doctor checks a ghost configuration against the machine it will
// run on.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattjoyce/ghost/internal/config"
	"github.com/mattjoyce/ghost/internal/dispatch"
	"github.com/mattjoyce/ghost/internal/host"
	"github.com/mattjoyce/ghost/internal/storage"
	"github.com/mattjoyce/ghost/internal/supervisor"
)

const minBackoff = time.Second

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Options overrides host probes. Zero fields use the real host.
type Options struct {
	Platform  host.Platform
	Privilege host.PrivilegeContext
	LookPath  func(string) (string, error)
	// BaseDir anchors relative launch paths; empty means the executable dir.
	BaseDir string
}

// Doctor validates configuration against the local host.
type Doctor struct {
	cfg  *config.Config
	opts Options
}

// New creates a Doctor from a loaded config.
func New(cfg *config.Config, opts Options) *Doctor {
	if opts.Platform == "" {
		opts.Platform = host.Current()
	}
	if opts.Privilege == nil {
		opts.Privilege = host.SystemPrivilege()
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	return &Doctor{cfg: cfg, opts: opts}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateServiceConfig(r)
	d.validateShell(r)
	d.warnMissingTools(r)
	d.warnNotElevated(r)
	d.validateSupervisor(r)
	d.validateState(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) validateServiceConfig(r *Result) {
	switch d.cfg.Service.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		d.addError(r, "service", "service.log_level",
			fmt.Sprintf("unknown log level %q", d.cfg.Service.LogLevel))
	}
	switch d.cfg.Service.LogFormat {
	case "json", "text":
	default:
		d.addError(r, "service", "service.log_format",
			fmt.Sprintf("unknown log format %q", d.cfg.Service.LogFormat))
	}
	if d.cfg.Dispatch.Timeout <= 0 {
		d.addError(r, "dispatch", "dispatch.timeout", "timeout must be positive")
	}
}

// validateShell checks that free-text commands have an interpreter.
func (d *Doctor) validateShell(r *Result) {
	shell := d.cfg.Dispatch.ShellArgv()
	field := "dispatch.shell"
	if shell == nil {
		shell = dispatch.DefaultShell(d.opts.Platform)
		field = ""
	}
	if _, err := d.opts.LookPath(shell[0]); err != nil {
		d.addError(r, "dispatch", field,
			fmt.Sprintf("shell %q not found: free-text commands will fail", shell[0]))
	}
}

// warnMissingTools reports action executables absent from PATH. A missing
// network tool is survivable because of the fallback tier.
func (d *Doctor) warnMissingTools(r *Result) {
	tools := dispatch.Tools(d.opts.Platform)
	if tools == nil {
		d.addWarning(r, "dispatch", "",
			fmt.Sprintf("no well-known actions on %s; only free-text commands will run", d.opts.Platform))
		return
	}
	for _, tool := range tools {
		if _, err := d.opts.LookPath(tool); err != nil {
			d.addWarning(r, "dispatch", "", fmt.Sprintf("%s not found on PATH", tool))
		}
	}
}

func (d *Doctor) warnNotElevated(r *Result) {
	if d.opts.Platform == host.Windows && !d.opts.Privilege.IsElevated() {
		d.addWarning(r, "privilege", "", "not elevated: block_input will be skipped")
	}
}

func (d *Doctor) validateSupervisor(r *Result) {
	sc := d.cfg.Supervisor
	if !supervisor.Supported(d.opts.Platform) {
		d.addError(r, "supervisor", "",
			fmt.Sprintf("the watchdog cannot run on %s", d.opts.Platform))
		return
	}

	spec, err := supervisor.New(supervisor.Config{
		Launch:   sc.Launch,
		WorkDir:  sc.WorkDir,
		BaseDir:  d.opts.BaseDir,
		Platform: d.opts.Platform,
	}, nil, nil).Resolve()
	if err != nil {
		d.addError(r, "supervisor", "supervisor.launch", err.Error())
		return
	}

	if info, err := os.Stat(spec.Path); err != nil {
		d.addError(r, "supervisor", "supervisor.launch",
			fmt.Sprintf("launch artifact %s does not exist", spec.Path))
	} else if info.IsDir() {
		d.addError(r, "supervisor", "supervisor.launch",
			fmt.Sprintf("launch artifact %s is a directory", spec.Path))
	}

	if info, err := os.Stat(spec.Dir); err != nil || !info.IsDir() {
		d.addError(r, "supervisor", "supervisor.work_dir",
			fmt.Sprintf("working directory %s does not exist", spec.Dir))
	}

	if sc.Backoff > 0 && sc.Backoff < minBackoff {
		d.addWarning(r, "supervisor", "supervisor.backoff",
			fmt.Sprintf("backoff %s is below %s; a crashing application will spin", sc.Backoff, minBackoff))
	}
	if sc.LockPath == "" {
		d.addWarning(r, "supervisor", "supervisor.lock_path",
			"no lock path: two watchdogs may supervise the same application")
	}
}

func (d *Doctor) validateState(r *Result) {
	if d.cfg.State.Path == "" {
		d.addWarning(r, "state", "state.path", "history is disabled")
		return
	}
	if err := storage.ValidateFilesystem(d.cfg.State.Path); err != nil {
		d.addError(r, "state", "state.path", err.Error())
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
