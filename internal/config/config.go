package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"homefix/internal/protocol"
)

const (
	DefaultListen          = protocol.DefaultListenAddr
	DefaultMCPPath         = protocol.DefaultMCPPath
	DefaultProtocolVersion = "2025-06-18"

	// 100 requests per 15 minutes.
	DefaultRateLimitRPS   = 100.0 / 900.0
	DefaultRateLimitBurst = 100

	DefaultSessionInactivityTimeout = time.Hour
	DefaultSessionMaxLifetime       = 24 * time.Hour

	ProviderMistral = "mistral"
	ProviderGemini  = "gemini"

	OutcomesMemory = "memory"
	OutcomesSQLite = "sqlite"

	DefaultModelTimeout = 60 * time.Second
)

var (
	Providers       = []string{ProviderMistral, ProviderGemini}
	OutcomeBackends = []string{OutcomesMemory, OutcomesSQLite}
	LogLevels       = []string{"debug", "info", "warn", "error"}
	LogFormats      = []string{"console", "json"}
)

// ErrInvalid prefixes every validation failure; the CLI maps it to exit code 2.
var ErrInvalid = errors.New("CONFIG_INVALID")

type Config struct {
	Server   Server   `toml:"server"`
	Model    Model    `toml:"model"`
	Outcomes Outcomes `toml:"outcomes"`
	Widgets  Widgets  `toml:"widgets"`
	Log      Log      `toml:"log"`

	// API keys come from the environment only and are never written to disk.
	MistralAPIKey string `toml:"-"`
	GeminiAPIKey  string `toml:"-"`
}

type Server struct {
	Listen          string `toml:"listen"`
	MCPPath         string `toml:"mcp_path"`
	ProtocolVersion string `toml:"protocol_version"`
	Public          bool   `toml:"public"`
	// AuthToken is read from HOMEFIX_AUTH_TOKEN only.
	AuthToken string `toml:"-"`
	// RateLimitRPS and RateLimitBurst define the per-IP token bucket applied
	// in public mode.
	RateLimitRPS             float64       `toml:"rate_limit_rps"`
	RateLimitBurst           int           `toml:"rate_limit_burst"`
	TrustedProxies           []string      `toml:"trusted_proxies"`
	SessionInactivityTimeout time.Duration `toml:"session_inactivity_timeout"`
	SessionMaxLifetime       time.Duration `toml:"session_max_lifetime"`
}

type Model struct {
	Provider string        `toml:"provider"`
	Name     string        `toml:"name"`
	BaseURL  string        `toml:"base_url"`
	Timeout  time.Duration `toml:"timeout"`
}

type Outcomes struct {
	Backend    string `toml:"backend"`
	SQLitePath string `toml:"sqlite_path"`
}

type Widgets struct {
	DistDir string `toml:"dist_dir"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	return Config{
		Server: Server{
			Listen:                   DefaultListen,
			MCPPath:                  DefaultMCPPath,
			ProtocolVersion:          DefaultProtocolVersion,
			Public:                   false,
			RateLimitRPS:             DefaultRateLimitRPS,
			RateLimitBurst:           DefaultRateLimitBurst,
			TrustedProxies:           []string{"127.0.0.1/32", "::1/128"},
			SessionInactivityTimeout: DefaultSessionInactivityTimeout,
			SessionMaxLifetime:       DefaultSessionMaxLifetime,
		},
		Model: Model{
			Provider: ProviderMistral,
			Timeout:  DefaultModelTimeout,
		},
		Outcomes: Outcomes{
			Backend:    OutcomesMemory,
			SQLitePath: filepath.Join(".homefix", "outcomes.db"),
		},
		Widgets: Widgets{
			DistDir: filepath.Join("web", "dist"),
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the user config file location, or "" when the user
// config directory cannot be resolved.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "homefix", "config.toml")
}

// APIKey returns the key for the configured provider.
func (c Config) APIKey() string {
	if c.Model.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.MistralAPIKey
}

// APIKeyEnv names the environment variable holding the provider key.
func (c Config) APIKeyEnv() string {
	if c.Model.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "MISTRAL_API_KEY"
}
