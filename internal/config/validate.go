package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks required fields and enum constraints. Errors wrap
// ErrInvalid and carry an actionable hint.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		return fmt.Errorf("%w: server.listen must not be empty", ErrInvalid)
	}
	if !strings.HasPrefix(cfg.Server.MCPPath, "/") {
		return fmt.Errorf("%w: server.mcp_path=%q must start with /", ErrInvalid, cfg.Server.MCPPath)
	}
	if cfg.Server.RateLimitRPS < 0 || cfg.Server.RateLimitBurst < 0 {
		return fmt.Errorf("%w: server rate limits must be >= 0", ErrInvalid)
	}
	if cfg.Server.SessionInactivityTimeout < 0 || cfg.Server.SessionMaxLifetime < 0 {
		return fmt.Errorf("%w: session timeouts must be >= 0", ErrInvalid)
	}
	if !slices.Contains(Providers, cfg.Model.Provider) {
		return fmt.Errorf("%w: model.provider=%q; allowed: %s", ErrInvalid, cfg.Model.Provider, strings.Join(Providers, ", "))
	}
	if strings.TrimSpace(cfg.APIKey()) == "" {
		env := cfg.APIKeyEnv()
		return fmt.Errorf("%w: missing %s\nSet env: %s=...", ErrInvalid, env, env)
	}
	if cfg.Model.Timeout <= 0 {
		return fmt.Errorf("%w: model.timeout must be > 0", ErrInvalid)
	}
	if !slices.Contains(OutcomeBackends, cfg.Outcomes.Backend) {
		return fmt.Errorf("%w: outcomes.backend=%q; allowed: %s", ErrInvalid, cfg.Outcomes.Backend, strings.Join(OutcomeBackends, ", "))
	}
	if cfg.Outcomes.Backend == OutcomesSQLite && strings.TrimSpace(cfg.Outcomes.SQLitePath) == "" {
		return fmt.Errorf("%w: outcomes.sqlite_path is required when outcomes.backend=sqlite", ErrInvalid)
	}
	if !slices.Contains(LogLevels, cfg.Log.Level) {
		return fmt.Errorf("%w: log.level=%q; allowed: %s", ErrInvalid, cfg.Log.Level, strings.Join(LogLevels, ", "))
	}
	if !slices.Contains(LogFormats, cfg.Log.Format) {
		return fmt.Errorf("%w: log.format=%q; allowed: %s", ErrInvalid, cfg.Log.Format, strings.Join(LogFormats, ", "))
	}
	return nil
}
