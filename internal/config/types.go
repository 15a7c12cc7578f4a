package config

import (
	"strings"
	"time"
)

// Config represents the complete ghost agent configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service" toml:"service"`
	State      StateConfig      `yaml:"state" toml:"state"`
	Dispatch   DispatchConfig   `yaml:"dispatch" toml:"dispatch"`
	Supervisor SupervisorConfig `yaml:"supervisor" toml:"supervisor"`

	// Path is the file the config was loaded from; empty when running on
	// defaults.
	Path string `yaml:"-" toml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name" toml:"name"`
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
}

// StateConfig defines audit history storage. An empty path disables history.
type StateConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// DispatchConfig tunes the command dispatcher.
type DispatchConfig struct {
	Timeout   time.Duration `yaml:"timeout" toml:"timeout"`
	MaxOutput int           `yaml:"max_output" toml:"max_output"`
	// Shell overrides the platform shell prefix, e.g. "powershell -Command".
	Shell      string   `yaml:"shell" toml:"shell"`
	Interfaces []string `yaml:"interfaces" toml:"interfaces"`
}

// ShellArgv splits Shell into an argv prefix; nil means the platform default.
func (d DispatchConfig) ShellArgv() []string {
	if strings.TrimSpace(d.Shell) == "" {
		return nil
	}
	return strings.Fields(d.Shell)
}

// SupervisorConfig controls the watchdog loop.
type SupervisorConfig struct {
	Launch      string        `yaml:"launch" toml:"launch"`
	WorkDir     string        `yaml:"work_dir" toml:"work_dir"`
	Backoff     time.Duration `yaml:"backoff" toml:"backoff"`
	Grace       time.Duration `yaml:"grace" toml:"grace"`
	MaxRestarts int           `yaml:"max_restarts" toml:"max_restarts"`
	LockPath    string        `yaml:"lock_path" toml:"lock_path"`
}

// Defaults returns a Config with the built-in defaults. Data paths are
// relative; Load anchors them at the config directory and
// ExecutableDefaults at the executable directory.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "ghost",
			LogLevel:  "info",
			LogFormat: "json",
		},
		State: StateConfig{
			Path: "data/ghost.db",
		},
		Dispatch: DispatchConfig{
			Timeout:   60 * time.Second,
			MaxOutput: 1 << 20,
		},
		Supervisor: SupervisorConfig{
			Backoff:  3 * time.Second,
			Grace:    5 * time.Second,
			LockPath: "data/watchdog.lock",
		},
	}
}
