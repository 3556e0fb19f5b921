package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"homefix/internal/config"
	"homefix/internal/logging"
	"homefix/internal/model"
	"homefix/internal/outcome"
	"homefix/internal/store"
)

// configOverrides turns the persistent flags into config overrides. Only
// flags the user actually set are applied.
func configOverrides(extra func(*config.Overrides)) *config.Overrides {
	o := &config.Overrides{}
	if v := strings.TrimSpace(globalFlags.LogLevel); v != "" {
		o.LogLevel = &v
	}
	if v := strings.TrimSpace(globalFlags.LogFormat); v != "" {
		o.LogFormat = &v
	}
	if v := strings.TrimSpace(globalFlags.Provider); v != "" {
		o.Provider = &v
	}
	if v := strings.TrimSpace(globalFlags.Model); v != "" {
		o.ModelName = &v
	}
	if extra != nil {
		extra(o)
	}
	return o
}

func loadConfig(skipValidate bool, extra func(*config.Overrides)) (config.Config, error) {
	return config.Load(config.Options{
		Path:         globalFlags.ConfigPath,
		Overrides:    configOverrides(extra),
		SkipValidate: skipValidate,
	})
}

// setupLogger installs the process logger from cfg.
func setupLogger(cfg config.Config) (*slog.Logger, error) {
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	return logger, nil
}

// openOutcomeStore builds the configured OutcomeStore. The caller closes it.
func openOutcomeStore(ctx context.Context, cfg config.Config) (model.OutcomeStore, error) {
	switch cfg.Outcomes.Backend {
	case "", config.OutcomesMemory:
		return outcome.NewMemoryStore(), nil
	case config.OutcomesSQLite:
		st := store.NewSQLiteStore(cfg.Outcomes.SQLitePath)
		if err := st.Init(ctx); err != nil {
			return nil, fmt.Errorf("open outcome store %s: %w", cfg.Outcomes.SQLitePath, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown outcomes.backend %q", config.ErrInvalid, cfg.Outcomes.Backend)
	}
}
