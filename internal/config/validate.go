package config

import (
	"fmt"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if !validLogFormats[c.Server.LogFormat] {
		errs = append(errs, fmt.Sprintf("server.log_format: must be text or json; got %q", c.Server.LogFormat))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, "database.path: required")
	}

	if c.Import.Workers < 1 {
		errs = append(errs, fmt.Sprintf("import.workers: must be at least 1, got %d", c.Import.Workers))
	}
	if c.Import.MaxBatchFiles < 1 {
		errs = append(errs, fmt.Sprintf("import.max_batch_files: must be at least 1, got %d", c.Import.MaxBatchFiles))
	}
	if c.Import.MaxUploadBytes < 1 {
		errs = append(errs, fmt.Sprintf("import.max_upload_bytes: must be positive, got %d", c.Import.MaxUploadBytes))
	}
	errs = appendNegative(errs, "import.record_delay", c.Import.RecordDelay.Duration)
	errs = appendNegative(errs, "import.snapshot_ttl", c.Import.SnapshotTTL.Duration)
	errs = appendNegative(errs, "import.prune_interval", c.Import.PruneInterval.Duration)

	if c.Events.Buffer < 1 {
		errs = append(errs, fmt.Sprintf("events.buffer: must be at least 1, got %d", c.Events.Buffer))
	}
	errs = appendNegative(errs, "events.retention", c.Events.Retention.Duration)

	for i, admin := range c.Auth.Admins {
		if strings.TrimSpace(admin) == "" {
			errs = append(errs, fmt.Sprintf("auth.admins[%d]: must not be empty", i))
		}
	}

	return errs
}

func appendNegative(errs []string, key string, d time.Duration) []string {
	if d < 0 {
		return append(errs, fmt.Sprintf("%s: must not be negative, got %s", key, d))
	}
	return errs
}
