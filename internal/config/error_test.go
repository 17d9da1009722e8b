package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/heroimport/config.toml"}
	assert.False(t, e.HasErrors())
	assert.Empty(t, e.Error())
}

func TestConfigError_MissingVars(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/heroimport/config.toml",
		Missing: []string{"HEROIMPORT_DB", "ADMIN_NAME"},
	}
	got := e.Error()
	assert.Contains(t, got, "config /etc/heroimport/config.toml: ")
	assert.Contains(t, got, "missing environment variables: HEROIMPORT_DB, ADMIN_NAME")
	assert.NotContains(t, got, "validation failed")
}

func TestConfigError_ValidationErrors(t *testing.T) {
	e := &ConfigError{
		Errors: []string{"server.port: must be between 1 and 65535, got 70000", "import.workers: must be at least 1, got 0"},
	}
	got := e.Error()
	assert.Contains(t, got, "validation failed:")
	assert.Contains(t, got, "\n  - server.port")
	assert.Contains(t, got, "\n  - import.workers")
	assert.NotContains(t, got, "config ")
}

func TestConfigError_Both(t *testing.T) {
	e := &ConfigError{
		Path:    "config.toml",
		Missing: []string{"HEROIMPORT_DB"},
		Errors:  []string{"events.buffer: must be at least 1, got 0"},
	}
	got := e.Error()
	assert.Contains(t, got, "missing environment variables")
	assert.Contains(t, got, "\nvalidation failed:")
}

func TestAsConfigError(t *testing.T) {
	wrapped := fmt.Errorf("starting: %w", &ConfigError{Missing: []string{"X"}})

	cfgErr, ok := AsConfigError(wrapped)
	require.True(t, ok)
	assert.Equal(t, []string{"X"}, cfgErr.Missing)

	_, ok = AsConfigError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
