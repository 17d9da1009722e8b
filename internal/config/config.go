// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Import   ImportConfig   `toml:"import"`
	Events   EventsConfig   `toml:"events"`
	Auth     AuthConfig     `toml:"auth"`
}

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	Workers         int      `toml:"workers"`
	MaxBatchFiles   int      `toml:"max_batch_files"`
	MaxUploadBytes  int64    `toml:"max_upload_bytes"`
	RecordDelay     Duration `toml:"record_delay"`
	ContinueOnError bool     `toml:"continue_on_error"`
	SnapshotTTL     Duration `toml:"snapshot_ttl"`
	PruneInterval   Duration `toml:"prune_interval"`
}

type EventsConfig struct {
	Buffer    int      `toml:"buffer"`
	Retention Duration `toml:"retention"`
}

type AuthConfig struct {
	Admins []string `toml:"admins"`
}

// IsAdmin reports whether name is listed in auth.admins, ignoring case.
func (a AuthConfig) IsAdmin(name string) bool {
	for _, admin := range a.Admins {
		if strings.EqualFold(admin, name) {
			return true
		}
	}
	return false
}

// Duration is a time.Duration written as a Go duration string ("5ms", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults.
const (
	DefaultPort           = 8585
	DefaultDatabasePath   = "./data/heroimport.db"
	DefaultWorkers        = 5
	DefaultMaxBatchFiles  = 5
	DefaultMaxUploadBytes = 10 << 20
	DefaultRecordDelay    = 5 * time.Millisecond
	DefaultSnapshotTTL    = time.Hour
	DefaultPruneInterval  = 10 * time.Minute
	DefaultEventBuffer    = 64
	DefaultRetention      = 7 * 24 * time.Hour
)

// Load reads, substitutes, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file and applies
// defaults. Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	lookup := envLookup(filepath.Join(filepath.Dir(path), ".env"))
	content, missing := substituteEnvVarsWith(string(data), lookup)
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Import.Workers == 0 {
		c.Import.Workers = DefaultWorkers
	}
	if c.Import.MaxBatchFiles == 0 {
		c.Import.MaxBatchFiles = DefaultMaxBatchFiles
	}
	if c.Import.MaxUploadBytes == 0 {
		c.Import.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Import.RecordDelay.Duration == 0 {
		c.Import.RecordDelay.Duration = DefaultRecordDelay
	}
	if c.Import.SnapshotTTL.Duration == 0 {
		c.Import.SnapshotTTL.Duration = DefaultSnapshotTTL
	}
	if c.Import.PruneInterval.Duration == 0 {
		c.Import.PruneInterval.Duration = DefaultPruneInterval
	}
	if c.Events.Buffer == 0 {
		c.Events.Buffer = DefaultEventBuffer
	}
	if c.Events.Retention.Duration == 0 {
		c.Events.Retention.Duration = DefaultRetention
	}
	if c.Auth.Admins == nil {
		c.Auth.Admins = []string{"admin"}
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// envLookup resolves from the process environment first, then from the
// dotenv file at path if it exists.
func envLookup(path string) func(string) (string, bool) {
	dotenv, err := godotenv.Read(path)
	if err != nil {
		dotenv = nil
	}
	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:[-?])([^}]*))?\}`)

func substituteEnvVars(content string) (string, []string) {
	return substituteEnvVarsWith(content, os.LookupEnv)
}

// substituteEnvVarsWith replaces variable references using lookup. Unresolved
// references are left in place and reported in missing.
func substituteEnvVarsWith(content string, lookup func(string) (string, bool)) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]

		value, ok := lookup(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, arg))
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
