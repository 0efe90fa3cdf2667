// Package config loads service configuration from MARCOS_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/retry"
)

// Config holds all service configuration.
type Config struct {
	// DB is a SQLite path or a postgres:// URL. Empty means the default
	// per-user SQLite file.
	DB string

	// HTTPAddr is the listen address for `marcos serve`. Default ":8080".
	HTTPAddr string

	// LogMode is "development", "production" or "nop". Default "development".
	LogMode  string
	LogLevel string

	// ContentPath is a YAML or JSON catalogue; empty uses the built-in one.
	ContentPath string

	Retry retry.Config

	Sweep SweepConfig

	// Weights for the overall progress mean; nil means unweighted.
	Weights progress.Weights

	// NotifyBuffer is the per-subscriber event buffer. Default 64.
	NotifyBuffer int

	// ShutdownTimeout bounds graceful HTTP shutdown. Default 10s.
	ShutdownTimeout time.Duration
}

// SweepConfig configures bulk recompute.
type SweepConfig struct {
	Concurrency int
	// Cron schedules the all-children sweep; empty disables it.
	Cron string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		LogMode:         "development",
		Retry:           retry.DefaultConfig(),
		Sweep:           SweepConfig{Concurrency: 4},
		NotifyBuffer:    64,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	if v := os.Getenv("MARCOS_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("MARCOS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("MARCOS_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("MARCOS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MARCOS_CONTENT_PATH"); v != "" {
		cfg.ContentPath = v
	}

	intVar(&errs, "MARCOS_RETRY_MAX_ATTEMPTS", &cfg.Retry.MaxAttempts)
	durationVar(&errs, "MARCOS_RETRY_INITIAL_WAIT", &cfg.Retry.InitialWait)
	durationVar(&errs, "MARCOS_RETRY_MAX_WAIT", &cfg.Retry.MaxWait)
	if v := os.Getenv("MARCOS_RETRY_MULTIPLIER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MARCOS_RETRY_MULTIPLIER: %w", err))
		} else {
			cfg.Retry.Multiplier = f
		}
	}

	intVar(&errs, "MARCOS_SWEEP_CONCURRENCY", &cfg.Sweep.Concurrency)
	if v, ok := os.LookupEnv("MARCOS_SWEEP_CRON"); ok {
		cfg.Sweep.Cron = strings.TrimSpace(v)
	}

	if v := os.Getenv("MARCOS_PROGRESS_WEIGHTS"); v != "" {
		w, err := ParseWeights(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MARCOS_PROGRESS_WEIGHTS: %w", err))
		} else {
			cfg.Weights = w
		}
	}

	intVar(&errs, "MARCOS_NOTIFY_BUFFER", &cfg.NotifyBuffer)
	durationVar(&errs, "MARCOS_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	return cfg, errors.Join(errs...)
}

func intVar(errs *[]error, key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func durationVar(errs *[]error, key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

// ParseWeights parses "dimension=weight" pairs separated by commas, e.g.
// "linguagem=2,motor_fino=0.5".
func ParseWeights(s string) (progress.Weights, error) {
	w := progress.Weights{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected dimension=weight, got %q", part)
		}
		d := content.Dimension(strings.TrimSpace(name))
		if !d.Valid() {
			return nil, fmt.Errorf("unknown dimension %q", name)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("weight for %s: %w", d, err)
		}
		if f < 0 {
			return nil, fmt.Errorf("weight for %s must not be negative", d)
		}
		w[d] = f
	}
	if len(w) == 0 {
		return nil, nil
	}
	return w, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LogMode) {
	case "development", "dev", "production", "prod", "nop", "none", "off":
	default:
		errs = append(errs, fmt.Errorf("unknown log mode %q", c.LogMode))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("MARCOS_HTTP_ADDR must not be empty"))
	}
	if err := c.Retry.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Sweep.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("sweep concurrency must be >= 1, got %d", c.Sweep.Concurrency))
	}
	if c.NotifyBuffer < 1 {
		errs = append(errs, fmt.Errorf("notify buffer must be >= 1, got %d", c.NotifyBuffer))
	}
	return errors.Join(errs...)
}
