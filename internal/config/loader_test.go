package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattjoyce/ghost/internal/host"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml overrides keep other defaults",
			file: "config.yaml",
			body: `
service:
  log_level: DEBUG
dispatch:
  timeout: 10s
  interfaces: [Lab LAN]
supervisor:
  launch: C:\ghost\scripts\run.bat
  max_restarts: 3
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.LogLevel != "debug" {
					t.Errorf("log_level = %q, want debug", cfg.Service.LogLevel)
				}
				if cfg.Service.LogFormat != "json" {
					t.Errorf("log_format default lost: %q", cfg.Service.LogFormat)
				}
				if cfg.Dispatch.Timeout != 10*time.Second {
					t.Errorf("timeout = %v", cfg.Dispatch.Timeout)
				}
				if cfg.Dispatch.MaxOutput != 1<<20 {
					t.Errorf("max_output default lost: %d", cfg.Dispatch.MaxOutput)
				}
				if len(cfg.Dispatch.Interfaces) != 1 || cfg.Dispatch.Interfaces[0] != "Lab LAN" {
					t.Errorf("interfaces = %v", cfg.Dispatch.Interfaces)
				}
				if cfg.Supervisor.Backoff != 3*time.Second {
					t.Errorf("backoff default lost: %v", cfg.Supervisor.Backoff)
				}
				if cfg.Supervisor.MaxRestarts != 3 {
					t.Errorf("max_restarts = %d", cfg.Supervisor.MaxRestarts)
				}
			},
		},
		{
			name: "toml by extension",
			file: "config.toml",
			body: `
[service]
log_format = "text"

[supervisor]
backoff = "1s"
work_dir = "/opt/ghost"
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.LogFormat != "text" {
					t.Errorf("log_format = %q", cfg.Service.LogFormat)
				}
				if cfg.Supervisor.Backoff != time.Second {
					t.Errorf("backoff = %v", cfg.Supervisor.Backoff)
				}
				if cfg.Supervisor.WorkDir != "/opt/ghost" {
					t.Errorf("work_dir = %q", cfg.Supervisor.WorkDir)
				}
			},
		},
		{
			name: "env interpolation",
			file: "config.yaml",
			body: `
dispatch:
  shell: ${GHOST_TEST_SHELL} -c
`,
			env: map[string]string{"GHOST_TEST_SHELL": "/bin/bash"},
			checkFn: func(t *testing.T, cfg *Config) {
				got := cfg.Dispatch.ShellArgv()
				if len(got) != 2 || got[0] != "/bin/bash" || got[1] != "-c" {
					t.Errorf("ShellArgv() = %v", got)
				}
			},
		},
		{
			name: "relative data paths resolve against config dir",
			file: "config.yaml",
			body: `
state:
  path: ./data/ghost.db
`,
			checkFn: func(t *testing.T, cfg *Config) {
				dir := filepath.Dir(cfg.Path)
				if cfg.State.Path != filepath.Join(dir, "data", "ghost.db") {
					t.Errorf("state.path = %q", cfg.State.Path)
				}
				if cfg.Supervisor.LockPath != filepath.Join(dir, "data", "watchdog.lock") {
					t.Errorf("lock_path = %q", cfg.Supervisor.LockPath)
				}
			},
		},
		{
			name: "empty state path disables history",
			file: "config.yaml",
			body: `
state:
  path: ""
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "" {
					t.Errorf("state.path = %q, want empty", cfg.State.Path)
				}
			},
		},
		{
			name:    "unset env var rejected",
			file:    "config.yaml",
			body:    "supervisor:\n  launch: ${GHOST_TEST_UNSET_VAR}/run.bat\n",
			wantErr: "GHOST_TEST_UNSET_VAR",
		},
		{
			name:    "bad log level",
			file:    "config.yaml",
			body:    "service:\n  log_level: loud\n",
			wantErr: "log_level",
		},
		{
			name:    "zero timeout",
			file:    "config.yaml",
			body:    "dispatch:\n  timeout: 0s\n",
			wantErr: "dispatch.timeout",
		},
		{
			name:    "negative max restarts",
			file:    "config.yaml",
			body:    "supervisor:\n  max_restarts: -1\n",
			wantErr: "max_restarts",
		},
		{
			name:    "blank interface",
			file:    "config.yaml",
			body:    "dispatch:\n  interfaces: [eth0, \" \"]\n",
			wantErr: "interfaces[1]",
		},
		{
			name:    "malformed yaml",
			file:    "config.yaml",
			body:    "service: [",
			wantErr: "parse YAML",
		},
		{
			name:    "malformed toml",
			file:    "config.toml",
			body:    "[service\n",
			wantErr: "parse TOML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, tt.file, tt.body)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() error = nil, want %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestDiscover(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(EnvConfig, "")

	path, err := Discover("")
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if path != "" && !strings.HasPrefix(path, "/etc/ghost") {
		t.Fatalf("Discover() = %q, want empty or system path", path)
	}

	userCfg := filepath.Join(home, ".config", "ghost", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(userCfg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userCfg, []byte("service: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if path, _ := Discover(""); path != userCfg {
		t.Fatalf("Discover() = %q, want %q", path, userCfg)
	}

	envCfg := writeConfig(t, "env.yaml", "service: {}\n")
	t.Setenv(EnvConfig, envCfg)
	if path, _ := Discover(""); path != envCfg {
		t.Fatalf("Discover() = %q, want env path %q", path, envCfg)
	}

	flagCfg := writeConfig(t, "flag.yaml", "service: {}\n")
	if path, _ := Discover(flagCfg); path != flagCfg {
		t.Fatalf("Discover() = %q, want flag path %q", path, flagCfg)
	}

	if _, err := Discover(filepath.Join(home, "missing.yaml")); err == nil {
		t.Fatal("Discover() with missing flag path should fail")
	}
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(EnvConfig, filepath.Join(home, "config.yaml"))

	if _, err := LoadOrDefault(""); err == nil {
		t.Fatal("LoadOrDefault() should reject a missing $GHOST_CONFIG target")
	}

	t.Setenv(EnvConfig, "")
	if fileExists("/etc/ghost/config.yaml") || fileExists("/etc/ghost/config.toml") {
		t.Skip("system config present")
	}
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() failed: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty for defaults", cfg.Path)
	}
	if cfg.Supervisor.Backoff != 3*time.Second || cfg.Dispatch.Timeout != 60*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !filepath.IsAbs(cfg.State.Path) || !filepath.IsAbs(cfg.Supervisor.LockPath) {
		t.Errorf("default data paths not anchored: state=%q lock=%q", cfg.State.Path, cfg.Supervisor.LockPath)
	}
}

func TestExecutableDefaultsIgnoreWorkingDirectory(t *testing.T) {
	exeDir, err := host.ExecutableDir()
	if err != nil {
		t.Fatal(err)
	}

	var states, locks []string
	for _, dir := range []string{t.TempDir(), t.TempDir()} {
		t.Chdir(dir)
		cfg, err := ExecutableDefaults()
		if err != nil {
			t.Fatalf("ExecutableDefaults() failed: %v", err)
		}
		states = append(states, cfg.State.Path)
		locks = append(locks, cfg.Supervisor.LockPath)
	}

	if states[0] != states[1] || locks[0] != locks[1] {
		t.Fatalf("paths follow the working directory: state=%v lock=%v", states, locks)
	}
	if want := filepath.Join(exeDir, "data", "ghost.db"); states[0] != want {
		t.Errorf("state.path = %q, want %q", states[0], want)
	}
	if want := filepath.Join(exeDir, "data", "watchdog.lock"); locks[0] != want {
		t.Errorf("lock_path = %q, want %q", locks[0], want)
	}
}

func TestShellArgvDefault(t *testing.T) {
	if got := (DispatchConfig{Shell: "  "}).ShellArgv(); got != nil {
		t.Fatalf("ShellArgv() = %v, want nil", got)
	}
}
