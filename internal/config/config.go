// Package config defines Fuji's configuration: where the root directory
// lives, how the JVM is tuned, and how patient the supervisor is while
// waiting for servers to come online. Values come from defaults, the
// config file, and FUJI_* environment variables, in ascending priority.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Fuji configuration.
type Config struct {
	// Root is the base directory of all Fuji-managed files:
	// servers/, jars/, logs/, backups/. Supports ~ expansion.
	Root string `mapstructure:"root"`

	Server     ServerConfig     `mapstructure:"server"`
	Supervisor SupervisorConfig `mapstructure:"supervisor"`
	Tmux       TmuxConfig       `mapstructure:"tmux"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Paper      PaperConfig      `mapstructure:"paper"`
}

// ServerConfig controls how the java process is launched.
type ServerConfig struct {
	// JavaHeap is passed to both -Xms and -Xmx (e.g. "5G").
	JavaHeap string `mapstructure:"java_heap"`
}

// SupervisorConfig controls start/stop polling behavior.
type SupervisorConfig struct {
	// ProbeTimeoutMs bounds a single TCP probe attempt.
	ProbeTimeoutMs int `mapstructure:"probe_timeout_ms"`
	// StartRetries is the online-wait budget during start.
	StartRetries int `mapstructure:"start_retries"`
	// StopRetries is the offline-wait budget during stop.
	StopRetries int `mapstructure:"stop_retries"`
	// PollIntervalMs is the base sleep between probe attempts.
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// JitterMinMs/JitterMaxMs bound the uniform random addition to the
	// poll interval during start (stop polls without jitter).
	JitterMinMs int `mapstructure:"jitter_min_ms"`
	JitterMaxMs int `mapstructure:"jitter_max_ms"`
}

// TmuxConfig controls the detached sessions servers run inside.
type TmuxConfig struct {
	// Prefix names sessions "{prefix}-{server}".
	Prefix string `mapstructure:"prefix"`
	// Width and Height size new sessions.
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// LoggingConfig controls the JSON debug log under <root>/logs.
type LoggingConfig struct {
	// Enabled controls whether the log file is written (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// PaperConfig controls the PaperMC download API client.
type PaperConfig struct {
	// APIBaseURL is the base of the v2 projects API.
	APIBaseURL string `mapstructure:"api_base_url"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ProbeTimeout returns the probe timeout as a time.Duration.
func (s *SupervisorConfig) ProbeTimeout() time.Duration {
	return time.Duration(s.ProbeTimeoutMs) * time.Millisecond
}

// PollInterval returns the base poll interval as a time.Duration.
func (s *SupervisorConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// JitterMin returns the lower jitter bound as a time.Duration.
func (s *SupervisorConfig) JitterMin() time.Duration {
	return time.Duration(s.JitterMinMs) * time.Millisecond
}

// JitterMax returns the upper jitter bound as a time.Duration.
func (s *SupervisorConfig) JitterMax() time.Duration {
	return time.Duration(s.JitterMaxMs) * time.Millisecond
}

// Timeout returns the HTTP client timeout as a time.Duration.
func (p *PaperConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Root: "~/.fuji",
		Server: ServerConfig{
			JavaHeap: "5G",
		},
		Supervisor: SupervisorConfig{
			ProbeTimeoutMs: 1000,
			StartRetries:   20,
			StopRetries:    10,
			PollIntervalMs: 1000,
			JitterMinMs:    100,
			JitterMaxMs:    1000,
		},
		Tmux: TmuxConfig{
			Prefix: "fuji",
			Width:  200,
			Height: 50,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Paper: PaperConfig{
			APIBaseURL:     "https://papermc.io/api/v2",
			TimeoutSeconds: 60,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("root", defaults.Root)

	viper.SetDefault("server.java_heap", defaults.Server.JavaHeap)

	viper.SetDefault("supervisor.probe_timeout_ms", defaults.Supervisor.ProbeTimeoutMs)
	viper.SetDefault("supervisor.start_retries", defaults.Supervisor.StartRetries)
	viper.SetDefault("supervisor.stop_retries", defaults.Supervisor.StopRetries)
	viper.SetDefault("supervisor.poll_interval_ms", defaults.Supervisor.PollIntervalMs)
	viper.SetDefault("supervisor.jitter_min_ms", defaults.Supervisor.JitterMinMs)
	viper.SetDefault("supervisor.jitter_max_ms", defaults.Supervisor.JitterMaxMs)

	viper.SetDefault("tmux.prefix", defaults.Tmux.Prefix)
	viper.SetDefault("tmux.width", defaults.Tmux.Width)
	viper.SetDefault("tmux.height", defaults.Tmux.Height)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetDefault("paper.api_base_url", defaults.Paper.APIBaseURL)
	viper.SetDefault("paper.timeout_seconds", defaults.Paper.TimeoutSeconds)
}

// Load reads the configuration from viper into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if
// unmarshaling fails.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ResolveRoot returns the root directory with ~ expanded to the user's
// home directory.
func (c *Config) ResolveRoot() string {
	path := c.Root
	if path == "" {
		path = Default().Root
	}

	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	if len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}

	return path
}

// ServersDir returns the directory holding per-server subtrees.
func (c *Config) ServersDir() string {
	return filepath.Join(c.ResolveRoot(), "servers")
}

// JarsDir returns the shared jar cache directory.
func (c *Config) JarsDir() string {
	return filepath.Join(c.ResolveRoot(), "jars")
}

// LogsDir returns the directory for Fuji's own logs.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ResolveRoot(), "logs")
}

// BackupsDir returns the directory reserved for server backups.
func (c *Config) BackupsDir() string {
	return filepath.Join(c.ResolveRoot(), "backups")
}

// RootSubdirs lists the directories created under the root by setup.
func RootSubdirs() []string {
	return []string{"backups", "logs", "jars", "servers"}
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fuji")
	}
	// Fall back to ~/.config/fuji
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fuji"
	}
	return filepath.Join(home, ".config", "fuji")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
