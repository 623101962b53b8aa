// Package config loads sqlplay settings from defaults, sqlplay.yaml,
// SQLPLAY_ environment variables and command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/sqlplay/internal/llm"
	"github.com/leapstack-labs/sqlplay/internal/storage"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Default configuration values.
const (
	DefaultTargetType     = "sqlite"
	DefaultStateFile      = ".sqlplay/state.db"
	DefaultUploadsDir     = "uploads"
	DefaultOutput         = "auto" // TTY=text, non-TTY=markdown
	DefaultPort           = 8000
	DefaultTokenTTL       = 24 * time.Hour
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxRows        = 1000
	DefaultQueryTimeout   = 30 * time.Second
)

// Config holds all sqlplay configuration options.
type Config struct {
	Target       TargetConfig   `koanf:"target"`
	Server       ServerConfig   `koanf:"server"`
	LLM          llm.Config     `koanf:"llm"`
	Guard        GuardConfig    `koanf:"guard"`
	Engine       EngineConfig   `koanf:"engine"`
	Storage      storage.Config `koanf:"storage"`
	StatePath    string         `koanf:"state_path"`
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// TargetConfig selects the relational engine queries run against.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Database string            `koanf:"database"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
	Params   map[string]any    `koanf:"params"`
}

// AdapterConfig converts the target into the adapter connection config.
func (t TargetConfig) AdapterConfig() core.AdapterConfig {
	return core.AdapterConfig{
		Type:     t.Type,
		Path:     t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// ServerConfig configures `sqlplay serve`.
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	SessionSecret  string        `koanf:"session_secret"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
}

// GuardConfig extends the keyword denylist.
type GuardConfig struct {
	ExtraKeywords []string `koanf:"extra_keywords"`
}

// EngineConfig bounds query execution.
type EngineConfig struct {
	MaxRows      int           `koanf:"max_rows"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}
