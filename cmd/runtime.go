package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/config"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/logging"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/store"
)

// runtime is the wired dependency set shared by commands.
type runtime struct {
	cfg    config.Config
	log    *logging.Logger
	store  *store.Store
	cat    *content.Catalogue
	bus    *notify.Bus
	engine *engine.Engine
}

// loadConfig reads .env and MARCOS_* variables.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadCatalogue returns the configured catalogue or the built-in one.
func loadCatalogue(path string) (*content.Catalogue, error) {
	if path == "" {
		return content.Default()
	}
	return content.LoadFile(path)
}

// openRuntime loads config, opens the store and builds the engine. CLI
// commands log only warnings unless --verbose is set.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose && cmd.Name() != "serve" {
		cfg.LogLevel = "warn"
	}

	log, err := logging.New(logging.Options{Mode: cfg.LogMode, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	cat, err := loadCatalogue(cfg.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	dsn, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.OpenContext(cmd.Context(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	bus := notify.NewBus(log)
	eng := engine.New(st, cat, engine.Options{
		Retry:   cfg.Retry,
		Weights: cfg.Weights,
		Bus:     bus,
		Logger:  log,
	})

	return &runtime{cfg: cfg, log: log, store: st, cat: cat, bus: bus, engine: eng}, nil
}

func (r *runtime) Close() {
	r.bus.Close()
	if err := r.store.Close(); err != nil {
		r.log.Warn("close store", "error", err)
	}
	r.log.Sync()
}
