package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Options for loading config.
type Options struct {
	// Path of the TOML file. Empty means DefaultPath(), which may be absent.
	// An explicit path must exist.
	Path string
	// DotEnvFiles are read in order; earlier files win. Nil means
	// .env.local then .env.
	DotEnvFiles []string
	// Env replaces the process environment when non-nil. Dotenv values are
	// written into it instead of os.Setenv.
	Env          map[string]string
	Overrides    *Overrides
	SkipValidate bool
}

// Overrides holds CLI flag values that take precedence over env/file/defaults.
// Only non-nil fields are applied.
type Overrides struct {
	Listen    *string
	MCPPath   *string
	Public    *bool
	Provider  *string
	ModelName *string
	LogLevel  *string
	LogFormat *string
}

// Load builds config with precedence: defaults → config.toml → dotenv →
// env vars → Overrides.
func Load(opts Options) (Config, error) {
	cfg, _, err := LoadWithSources(opts)
	return cfg, err
}

// LoadWithSources is Load plus the per-field provenance used by config print.
func LoadWithSources(opts Options) (Config, map[string]FieldSource, error) {
	cfg := Default()
	sources := map[string]FieldSource{}

	dotenvFiles := opts.DotEnvFiles
	if dotenvFiles == nil {
		dotenvFiles = []string{".env.local", ".env"}
	}
	injected, err := loadDotEnvFiles(dotenvFiles, opts.Env)
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: failed loading dotenv files: %w", ErrInvalid, err)
	}

	if err := mergeFile(&cfg, opts.Path, sources); err != nil {
		return Config{}, nil, err
	}

	for _, def := range fieldDefs {
		if def.EnvVar == "" || def.set == nil {
			continue
		}
		raw, ok := envLookup(def.EnvVar, opts.Env)
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			continue
		}
		if err := def.set(&cfg, raw); err != nil {
			return Config{}, nil, fmt.Errorf("%w: %s: %w", ErrInvalid, def.EnvVar, err)
		}
		if src, fromFile := injected[def.EnvVar]; fromFile {
			sources[def.Key] = src
		} else {
			sources[def.Key] = SourceEnv
		}
	}

	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides, sources)
	}

	if !opts.SkipValidate {
		if err := Validate(cfg); err != nil {
			return Config{}, nil, err
		}
	}
	return cfg, sources, nil
}

func mergeFile(cfg *Config, path string, sources map[string]FieldSource) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("%w: cannot read config file %s: %w", ErrInvalid, path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%w: malformed TOML in %s: %w", ErrInvalid, path, err)
	}
	for _, def := range fieldDefs {
		if def.EnvOnly {
			continue
		}
		if md.IsDefined(strings.Split(def.Key, ".")...) {
			sources[def.Key] = SourceConfigFile
		}
	}
	cfg.Server.TrustedProxies = MergeTrustedProxies(nil, strings.Join(cfg.Server.TrustedProxies, ","))
	return nil
}

func applyOverrides(cfg *Config, o *Overrides, sources map[string]FieldSource) {
	setString := func(key string, target *string, value *string) {
		if value == nil {
			return
		}
		*target = strings.TrimSpace(*value)
		sources[key] = SourceFlag
	}
	setString("server.listen", &cfg.Server.Listen, o.Listen)
	setString("server.mcp_path", &cfg.Server.MCPPath, o.MCPPath)
	setString("model.provider", &cfg.Model.Provider, o.Provider)
	setString("model.name", &cfg.Model.Name, o.ModelName)
	setString("log.level", &cfg.Log.Level, o.LogLevel)
	setString("log.format", &cfg.Log.Format, o.LogFormat)
	if o.Public != nil {
		cfg.Server.Public = *o.Public
		sources["server.public"] = SourceFlag
	}
	cfg.Model.Provider = strings.ToLower(cfg.Model.Provider)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
}

// loadDotEnvFiles copies dotenv values into the environment without
// overwriting variables that are already set. It reports which file each
// injected variable came from.
func loadDotEnvFiles(paths []string, env map[string]string) (map[string]FieldSource, error) {
	injected := map[string]FieldSource{}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		src := SourceDotEnv
		if strings.HasSuffix(path, ".env.local") {
			src = SourceDotEnvLocal
		}
		for k, v := range values {
			if existing, exists := envLookup(k, env); exists && strings.TrimSpace(existing) != "" {
				continue
			}
			if err := envSet(k, v, env); err != nil {
				return nil, err
			}
			injected[k] = src
		}
	}
	return injected, nil
}

func envLookup(key string, env map[string]string) (string, bool) {
	if env != nil {
		val, ok := env[key]
		return val, ok
	}
	return os.LookupEnv(key)
}

func envSet(key, value string, env map[string]string) error {
	if env != nil {
		env[key] = value
		return nil
	}
	return os.Setenv(key, value)
}

// MergeTrustedProxies appends comma-separated trusted proxies to an existing
// list while preserving first-seen, normalized CIDR entries.
func MergeTrustedProxies(existing []string, csv string) []string {
	merged := make([]string, 0, len(existing))
	seen := make(map[string]struct{}, len(existing))

	add := func(value string) {
		key := normalizeTrustedProxyKey(value)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, key)
	}

	for _, value := range existing {
		add(value)
	}
	for _, value := range strings.Split(csv, ",") {
		add(value)
	}
	return merged
}

func normalizeTrustedProxyKey(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if strings.Contains(value, "/") {
		_, network, err := net.ParseCIDR(value)
		if err != nil {
			return ""
		}
		return network.String()
	}

	ip := net.ParseIP(value)
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		return (&net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}).String()
	}
	return (&net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}).String()
}
