// Package config loads and validates tally configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tallybook/tally/internal/position"
	"github.com/tallybook/tally/internal/reorder"
)

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Ordering OrderingConfig `yaml:"ordering"`
	Logging  LoggingConfig  `yaml:"logging"`
	Maintain MaintainConfig `yaml:"maintain"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OrderingConfig tunes the reorder policies.
type OrderingConfig struct {
	MaxDepth   int    `yaml:"maxDepth"`
	InsertEdge string `yaml:"insertEdge"`
}

// Edge returns InsertEdge parsed. Call Validate first.
func (o OrderingConfig) Edge() reorder.Edge {
	edge, err := reorder.ParseEdge(o.InsertEdge)
	if err != nil {
		return reorder.EdgeFirst
	}
	return edge
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MaintainConfig controls the background heal loop.
type MaintainConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MetricsAddr string        `yaml:"metricsAddr"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "tally.db",
		},
		Ordering: OrderingConfig{
			MaxDepth:   position.DefaultMaxDepth,
			InsertEdge: "first",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Maintain: MaintainConfig{
			Interval: time.Minute,
		},
	}
}

// applyEnvOverrides reads TALLY_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TALLY_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TALLY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TALLY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TALLY_MAX_DEPTH"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TALLY_MAX_DEPTH: %w", err)
		}
		cfg.Ordering.MaxDepth = depth
	}
	if v := os.Getenv("TALLY_METRICS_ADDR"); v != "" {
		cfg.Maintain.MetricsAddr = v
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.Ordering.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("ordering.maxDepth must be positive, got %d", c.Ordering.MaxDepth))
	}
	if _, err := reorder.ParseEdge(c.Ordering.InsertEdge); err != nil {
		errs = append(errs, fmt.Errorf("ordering.insertEdge: %w", err))
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if c.Maintain.Interval <= 0 {
		errs = append(errs, fmt.Errorf("maintain.interval must be positive, got %s", c.Maintain.Interval))
	}
	return errors.Join(errs...)
}

// Logger builds the slog logger described by the logging section.
func (l LoggingConfig) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch l.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", level)
}
