// Package config loads the router's bootstrap configuration: which
// address to start from, how long to wait on a dial, how many times to
// retry a redirected request, and where to send logs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a kvcluster process needs to boot a Router
// and its logger (SPEC_FULL.md §2.2).
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Log     LogConfig     `yaml:"log"`

	path string
}

// ClusterConfig configures the Router itself.
type ClusterConfig struct {
	Bootstrap   string  `yaml:"bootstrap"`
	DialTimeout string  `yaml:"dialTimeout"`
	MaxRetry    int     `yaml:"maxRetry"`
	RefreshQPS  float64 `yaml:"refreshQPS"`
}

// LogConfig configures the logger package.
type LogConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	Prefix string `yaml:"prefix"`
}

// ValidationError collects configuration issues found by Validate.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	msg := "config: validation failed"
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	for _, err := range e.Errors {
		msg += "\n  - " + err
	}
	return msg
}

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve path: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	cfg.path = absPath
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in every field the router needs a sane value for.
func (c *Config) ApplyDefaults() {
	if c.Cluster.DialTimeout == "" {
		c.Cluster.DialTimeout = "5s"
	}
	if c.Cluster.MaxRetry <= 0 {
		c.Cluster.MaxRetry = 16
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Prefix == "" {
		c.Log.Prefix = "kvcluster"
	}
}

// Validate ensures the config is usable by Router.New.
func (c *Config) Validate() error {
	var errs []string

	if c.Cluster.Bootstrap == "" {
		errs = append(errs, "cluster.bootstrap is required")
	}
	if _, err := c.DialTimeout(); err != nil {
		errs = append(errs, fmt.Sprintf("cluster.dialTimeout: %v", err))
	}
	if c.Cluster.MaxRetry <= 0 {
		errs = append(errs, "cluster.maxRetry must be > 0")
	}
	if c.Cluster.RefreshQPS < 0 {
		errs = append(errs, "cluster.refreshQPS must be >= 0")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug/info/warn/error", c.Log.Level))
	}

	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}

// DialTimeout parses Cluster.DialTimeout as a duration.
func (c *Config) DialTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Cluster.DialTimeout)
}

// ConfigDir returns the directory the config file lives in, used to
// resolve any relative path the config carries (e.g. Log.Dir).
func (c *Config) ConfigDir() string {
	return filepath.Dir(c.path)
}

// ResolvedLogDir returns Log.Dir made absolute against ConfigDir.
func (c *Config) ResolvedLogDir() string {
	if filepath.IsAbs(c.Log.Dir) {
		return c.Log.Dir
	}
	return filepath.Join(c.ConfigDir(), c.Log.Dir)
}

// Summary returns a concise one-line description, matching the style of
// the original operator-facing config summaries.
func (c *Config) Summary() string {
	return fmt.Sprintf("bootstrap=%s dialTimeout=%s maxRetry=%d refreshQPS=%.2f logDir=%s logLevel=%s",
		c.Cluster.Bootstrap, c.Cluster.DialTimeout, c.Cluster.MaxRetry, c.Cluster.RefreshQPS,
		c.ResolvedLogDir(), c.Log.Level)
}
