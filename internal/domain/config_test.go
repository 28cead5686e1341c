package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 8, config.Engine.MaxParallelism)
	assert.Equal(t, ErrorModeStop, config.Engine.ErrorMode)
	assert.Equal(t, string(TriggerManual), config.Engine.DefaultTriggerType)
	assert.Equal(t, StorageMemory, config.Storage.Backend)
	assert.Equal(t, 50, config.Storage.ListLimit)
	assert.Equal(t, 5, config.HTTP.Breaker.FailureThreshold)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"logger", func(c *Config) { c.Logger = nil }},
		{"engine.max_parallelism", func(c *Config) { c.Engine.MaxParallelism = 0 }},
		{"engine.node_timeout", func(c *Config) { c.Engine.NodeTimeout = -time.Second }},
		{"engine.retry_count", func(c *Config) { c.Engine.RetryCount = -1 }},
		{"engine.retry_delay", func(c *Config) { c.Engine.RetryDelay = -time.Second }},
		{"engine.max_retry_delay", func(c *Config) { c.Engine.MaxRetryDelay = time.Millisecond }},
		{"engine.error_mode", func(c *Config) { c.Engine.ErrorMode = "explode" }},
		{"storage.backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"storage.data_dir", func(c *Config) { c.WithBadgerStorage("") }},
		{"storage.list_limit", func(c *Config) { c.Storage.ListLimit = 0 }},
		{"http.requests_per_second", func(c *Config) { c.HTTP.RequestsPerSecond = -1 }},
		{"http.burst", func(c *Config) { c.HTTP.RequestsPerSecond = 5; c.HTTP.Burst = 0 }},
		{"http.circuit_breaker.failure_threshold", func(c *Config) { c.HTTP.Breaker.FailureThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfigBuilders(t *testing.T) {
	config := DefaultConfig().
		WithEngineSettings(2, time.Second, 3).
		WithErrorMode(ErrorModeContinue).
		WithInMemoryBadger().
		WithEncryptionKey("k")

	require.NoError(t, config.Validate())
	assert.Equal(t, 2, config.Engine.MaxParallelism)
	assert.Equal(t, time.Second, config.Engine.NodeTimeout)
	assert.Equal(t, 3, config.Engine.RetryCount)
	assert.Equal(t, ErrorModeContinue, config.Engine.ErrorMode)
	assert.Equal(t, StorageBadger, config.Storage.Backend)
	assert.True(t, config.Storage.InMemory)
	assert.Equal(t, "k", config.Credentials.EncryptionKey)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  max_parallelism: 16
  node_timeout: 5s
  error_mode: retry
storage:
  backend: badger
  data_dir: /var/lib/flowrun
  execution_ttl: 720h
http:
  requests_per_second: 10
  burst: 2
  circuit_breaker:
    failure_threshold: 3
    cooldown: 1m
credentials:
  encryption_key: from-file
`), 0o600))

	t.Setenv(CredentialKeyEnv, "from-env")

	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 16, config.Engine.MaxParallelism)
	assert.Equal(t, 5*time.Second, config.Engine.NodeTimeout)
	assert.Equal(t, ErrorModeRetry, config.Engine.ErrorMode)
	assert.Equal(t, 3, config.Engine.RetryModeAttempts)
	assert.Equal(t, "/var/lib/flowrun", config.Storage.DataDir)
	assert.Equal(t, 720*time.Hour, config.Storage.ExecutionTTL)
	assert.Equal(t, 10.0, config.HTTP.RequestsPerSecond)
	assert.Equal(t, 3, config.HTTP.Breaker.FailureThreshold)
	assert.Equal(t, time.Minute, config.HTTP.Breaker.Cooldown)
	assert.Equal(t, "from-env", config.Credentials.EncryptionKey)
	assert.NotNil(t, config.Logger)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "path", cfgErr.Field)

	_, err = ParseConfig([]byte("engine: [not, a, map]"))
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "yaml", cfgErr.Field)

	_, err = ParseConfig([]byte("engine:\n  max_parallelism: -1\n"))
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "engine.max_parallelism", cfgErr.Field)
}
