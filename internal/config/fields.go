package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldSource indicates where a config value originates.
type FieldSource string

const (
	SourceDefault     FieldSource = "default"
	SourceConfigFile  FieldSource = "config.toml"
	SourceDotEnv      FieldSource = ".env"
	SourceDotEnvLocal FieldSource = ".env.local"
	SourceEnv         FieldSource = "env"
	SourceFlag        FieldSource = "flag"
)

// FieldInfo describes a single configurable field and its provenance.
type FieldInfo struct {
	Key       string
	Value     string
	Source    FieldSource
	Sensitive bool
}

// fieldDef binds a dotted config key to its environment variable and
// accessors. Fields without an EnvVar are file-only; fields without a
// TOML path are env-only.
type fieldDef struct {
	Key       string
	EnvVar    string
	FileOnly  bool
	EnvOnly   bool
	Sensitive bool
	get       func(Config) string
	set       func(*Config, string) error
}

var fieldDefs = []fieldDef{
	{
		Key: "server.listen", EnvVar: "HOMEFIX_LISTEN",
		get: func(c Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	{
		Key: "server.mcp_path", EnvVar: "HOMEFIX_MCP_PATH",
		get: func(c Config) string { return c.Server.MCPPath },
		set: func(c *Config, v string) error { c.Server.MCPPath = v; return nil },
	},
	{
		Key: "server.protocol_version", FileOnly: true,
		get: func(c Config) string { return c.Server.ProtocolVersion },
	},
	{
		Key: "server.public", EnvVar: "HOMEFIX_PUBLIC",
		get: func(c Config) string { return strconv.FormatBool(c.Server.Public) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q", v)
			}
			c.Server.Public = b
			return nil
		},
	},
	{
		Key: "server.auth_token", EnvVar: "HOMEFIX_AUTH_TOKEN", EnvOnly: true, Sensitive: true,
		get: func(c Config) string { return c.Server.AuthToken },
		set: func(c *Config, v string) error { c.Server.AuthToken = v; return nil },
	},
	{
		Key: "server.rate_limit_rps", EnvVar: "HOMEFIX_RATE_LIMIT_RPS",
		get: func(c Config) string { return strconv.FormatFloat(c.Server.RateLimitRPS, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", v)
			}
			c.Server.RateLimitRPS = f
			return nil
		},
	},
	{
		Key: "server.rate_limit_burst", EnvVar: "HOMEFIX_RATE_LIMIT_BURST",
		get: func(c Config) string { return strconv.Itoa(c.Server.RateLimitBurst) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer %q", v)
			}
			c.Server.RateLimitBurst = n
			return nil
		},
	},
	{
		Key: "server.trusted_proxies", EnvVar: "HOMEFIX_TRUSTED_PROXIES",
		get: func(c Config) string { return strings.Join(c.Server.TrustedProxies, ",") },
		set: func(c *Config, v string) error {
			c.Server.TrustedProxies = MergeTrustedProxies(c.Server.TrustedProxies, v)
			return nil
		},
	},
	{
		Key: "server.session_inactivity_timeout", FileOnly: true,
		get: func(c Config) string { return c.Server.SessionInactivityTimeout.String() },
	},
	{
		Key: "server.session_max_lifetime", FileOnly: true,
		get: func(c Config) string { return c.Server.SessionMaxLifetime.String() },
	},
	{
		Key: "model.provider", EnvVar: "HOMEFIX_MODEL_PROVIDER",
		get: func(c Config) string { return c.Model.Provider },
		set: func(c *Config, v string) error { c.Model.Provider = strings.ToLower(v); return nil },
	},
	{
		Key: "model.name", EnvVar: "HOMEFIX_MODEL",
		get: func(c Config) string { return c.Model.Name },
		set: func(c *Config, v string) error { c.Model.Name = v; return nil },
	},
	{
		Key: "model.base_url", EnvVar: "HOMEFIX_MODEL_BASE_URL",
		get: func(c Config) string { return c.Model.BaseURL },
		set: func(c *Config, v string) error { c.Model.BaseURL = v; return nil },
	},
	{
		Key: "model.timeout", EnvVar: "HOMEFIX_MODEL_TIMEOUT",
		get: func(c Config) string { return c.Model.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration %q", v)
			}
			c.Model.Timeout = d
			return nil
		},
	},
	{
		Key: "mistral_api_key", EnvVar: "MISTRAL_API_KEY", EnvOnly: true, Sensitive: true,
		get: func(c Config) string { return c.MistralAPIKey },
		set: func(c *Config, v string) error { c.MistralAPIKey = v; return nil },
	},
	{
		Key: "gemini_api_key", EnvVar: "GEMINI_API_KEY", EnvOnly: true, Sensitive: true,
		get: func(c Config) string { return c.GeminiAPIKey },
		set: func(c *Config, v string) error { c.GeminiAPIKey = v; return nil },
	},
	{
		Key: "outcomes.backend", EnvVar: "HOMEFIX_OUTCOMES_BACKEND",
		get: func(c Config) string { return c.Outcomes.Backend },
		set: func(c *Config, v string) error { c.Outcomes.Backend = strings.ToLower(v); return nil },
	},
	{
		Key: "outcomes.sqlite_path", EnvVar: "HOMEFIX_OUTCOMES_SQLITE_PATH",
		get: func(c Config) string { return c.Outcomes.SQLitePath },
		set: func(c *Config, v string) error { c.Outcomes.SQLitePath = v; return nil },
	},
	{
		Key: "widgets.dist_dir", EnvVar: "HOMEFIX_WIDGETS_DIR",
		get: func(c Config) string { return c.Widgets.DistDir },
		set: func(c *Config, v string) error { c.Widgets.DistDir = v; return nil },
	},
	{
		Key: "log.level", EnvVar: "HOMEFIX_LOG_LEVEL",
		get: func(c Config) string { return c.Log.Level },
		set: func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil },
	},
	{
		Key: "log.format", EnvVar: "HOMEFIX_LOG_FORMAT",
		get: func(c Config) string { return c.Log.Format },
		set: func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil },
	},
}

// EffectiveFields lists every field with its effective value and source.
// Sensitive values are masked.
func EffectiveFields(cfg Config, sources map[string]FieldSource) []FieldInfo {
	out := make([]FieldInfo, 0, len(fieldDefs))
	for _, def := range fieldDefs {
		value := def.get(cfg)
		if def.Sensitive {
			value = MaskSecret(value)
		}
		src, ok := sources[def.Key]
		if !ok {
			src = SourceDefault
		}
		out = append(out, FieldInfo{
			Key:       def.Key,
			Value:     value,
			Source:    src,
			Sensitive: def.Sensitive,
		})
	}
	return out
}

// MaskSecret keeps at most the last four characters of a secret.
func MaskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
