package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqlplay/internal/llm"
	"github.com/leapstack-labs/sqlplay/internal/storage"
	"github.com/leapstack-labs/sqlplay/pkg/adapter"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: SQLPLAY_SERVER__PORT sets server.port.
const EnvPrefix = "SQLPLAY_"

// GroqAPIKeyEnv is honoured when llm.api_key is not set.
const GroqAPIKeyEnv = "GROQ_API_KEY"

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configNames = []string{"sqlplay.yaml", "sqlplay.yml"}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"adapter":  "target.type",
	"database": "target.database",
	"state":    "state_path",
	"host":     "server.host",
	"port":     "server.port",
	"max-rows": "engine.max_rows",
	"timeout":  "engine.query_timeout",
}

func defaults() map[string]any {
	return map[string]any{
		"target.type":             DefaultTargetType,
		"server.port":             DefaultPort,
		"server.token_ttl":        DefaultTokenTTL.String(),
		"server.max_upload_bytes": DefaultMaxUploadBytes,
		"llm.base_url":            llm.DefaultBaseURL,
		"llm.model":               llm.DefaultModel,
		"llm.timeout":             llm.DefaultTimeout.String(),
		"engine.max_rows":         DefaultMaxRows,
		"engine.query_timeout":    DefaultQueryTimeout.String(),
		"storage.type":            storage.TypeLocal,
		"storage.dir":             DefaultUploadsDir,
		"state_path":              DefaultStateFile,
		"verbose":                 false,
		"output":                  DefaultOutput,
	}
}

// configExistsIn returns the config file in dir, if any.
func configExistsIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a sqlplay config file.
func findConfigUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if found := configExistsIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) || strings.Contains(path, "://") {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Load reads configuration. Precedence (highest to lowest):
// flags > env vars > config file > defaults. An explicit cfgFile must
// exist; otherwise sqlplay.yaml is searched for upward from the working
// directory. Relative paths in the file resolve against its directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = findConfigUpward(cwd)
		}
	}
	baseDir := ""
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Environment: SQLPLAY_ENGINE__MAX_ROWS -> engine.max_rows
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	cfg.Target.Type = strings.ToLower(strings.TrimSpace(cfg.Target.Type))
	ApplyTargetDefaults(&cfg.Target)
	expandSecrets(&cfg)

	cfg.Guard.ExtraKeywords = splitList(cfg.Guard.ExtraKeywords)

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(GroqAPIKeyEnv)
	}

	if baseDir != "" {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, baseDir)
		cfg.Storage.Dir = resolvePathRelativeTo(cfg.Storage.Dir, baseDir)
		if r, ok := adapter.Lookup(cfg.Target.Type); ok && r.FileBased {
			cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, baseDir)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyTargetDefaults fills connection defaults registered by the target's adapter.
func ApplyTargetDefaults(t *TargetConfig) {
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	r, ok := adapter.Lookup(t.Type)
	if !ok {
		return
	}
	if t.Schema == "" {
		t.Schema = r.DefaultSchema
	}
	if t.Port == 0 && !r.FileBased {
		t.Port = r.DefaultPort
	}
}

// splitList flattens comma-separated entries, as given through env vars.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns. Unknown variables are left as is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// expandSecrets expands environment references in credentials and hosts.
func expandSecrets(c *Config) {
	for _, s := range []*string{
		&c.Target.Database,
		&c.Target.Host,
		&c.Target.User,
		&c.Target.Password,
		&c.Server.SessionSecret,
		&c.LLM.APIKey,
		&c.Storage.AccessKey,
		&c.Storage.SecretKey,
		&c.Storage.Bucket,
		&c.Storage.Endpoint,
	} {
		*s = expandEnvVars(*s)
	}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

type configKey struct{}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or nil.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}
