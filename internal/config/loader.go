package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/ghost/internal/host"
)

// EnvConfig names the environment variable consulted by Discover.
const EnvConfig = "GHOST_CONFIG"

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a YAML or TOML file. Values not
// present in the file keep their defaults. If a BLAKE3 sidecar exists next to
// the file, the file must match it.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if err := VerifyChecksum(absPath); err != nil {
		return nil, err
	}

	cfg := Defaults()
	interpolated := interpolateEnv(string(data))
	if err := decode(absPath, []byte(interpolated), cfg); err != nil {
		return nil, err
	}
	cfg.Path = absPath

	applyConfigDefaults(cfg, filepath.Dir(absPath))

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config found by Discover, or returns
// ExecutableDefaults when no config file exists.
func LoadOrDefault(flagPath string) (*Config, error) {
	path, err := Discover(flagPath)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return ExecutableDefaults()
	}
	return Load(path)
}

// ExecutableDefaults returns validated defaults with data paths resolved
// against the directory of the running executable, so every ghost binary in
// one install shares a lock and a history database regardless of the
// caller's working directory.
func ExecutableDefaults() (*Config, error) {
	base, err := host.ExecutableDir()
	if err != nil {
		return nil, err
	}
	return defaultsAt(base)
}

func defaultsAt(baseDir string) (*Config, error) {
	cfg := Defaults()
	applyConfigDefaults(cfg, baseDir)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Discover finds the config file. Priority order: --config flag,
// $GHOST_CONFIG, ~/.config/ghost/config.yaml, /etc/ghost/config.yaml. An
// explicit path that does not exist is an error; an empty result means
// defaults.
func Discover(flagPath string) (string, error) {
	if flagPath != "" {
		if _, err := os.Stat(flagPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", flagPath)
		}
		return flagPath, nil
	}
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("$%s points at missing file %s", EnvConfig, p)
		}
		return p, nil
	}

	var candidates []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(homeDir, ".config", "ghost", "config.yaml"),
			filepath.Join(homeDir, ".config", "ghost", "config.toml"))
	}
	candidates = append(candidates, "/etc/ghost/config.yaml", "/etc/ghost/config.toml")

	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}
	return "", nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	return nil
}

// applyConfigDefaults resolves data paths against the config directory and
// normalizes enum-like fields.
func applyConfigDefaults(cfg *Config, configDir string) {
	cfg.Service.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Service.LogLevel))
	cfg.Service.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Service.LogFormat))

	if cfg.State.Path != "" && !filepath.IsAbs(cfg.State.Path) {
		cfg.State.Path = filepath.Join(configDir, cfg.State.Path)
	}
	if cfg.Supervisor.LockPath != "" && !filepath.IsAbs(cfg.Supervisor.LockPath) {
		cfg.Supervisor.LockPath = filepath.Join(configDir, cfg.Supervisor.LockPath)
	}
}

// interpolateEnv replaces ${VAR} references with environment values. Unset
// variables are left in place so validation can report them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func validate(cfg *Config) error {
	switch cfg.Service.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("service.log_level %q is not one of debug, info, warn, error", cfg.Service.LogLevel)
	}
	switch cfg.Service.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format %q must be json or text", cfg.Service.LogFormat)
	}

	if cfg.Dispatch.Timeout <= 0 {
		return fmt.Errorf("dispatch.timeout must be positive")
	}
	if cfg.Dispatch.MaxOutput <= 0 {
		return fmt.Errorf("dispatch.max_output must be positive")
	}
	for i, iface := range cfg.Dispatch.Interfaces {
		if strings.TrimSpace(iface) == "" {
			return fmt.Errorf("dispatch.interfaces[%d] is empty", i)
		}
	}

	if cfg.Supervisor.Backoff < 0 {
		return fmt.Errorf("supervisor.backoff must not be negative")
	}
	if cfg.Supervisor.Grace < 0 {
		return fmt.Errorf("supervisor.grace must not be negative")
	}
	if cfg.Supervisor.MaxRestarts < 0 {
		return fmt.Errorf("supervisor.max_restarts must not be negative")
	}

	for field, val := range map[string]string{
		"state.path":           cfg.State.Path,
		"dispatch.shell":       cfg.Dispatch.Shell,
		"supervisor.launch":    cfg.Supervisor.Launch,
		"supervisor.work_dir":  cfg.Supervisor.WorkDir,
		"supervisor.lock_path": cfg.Supervisor.LockPath,
	} {
		if m := envVarPattern.FindStringSubmatch(val); m != nil {
			return fmt.Errorf("%s references unset environment variable %s", field, m[1])
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
