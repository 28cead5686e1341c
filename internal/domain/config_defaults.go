package domain

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CredentialKeyEnv overrides credentials.encryption_key when set.
const CredentialKeyEnv = "FLOWRUN_CREDENTIAL_KEY"

func DefaultConfig() *Config {
	return &Config{
		Logger:      slog.Default(),
		Engine:      DefaultEngineConfig(),
		Storage:     DefaultStorageConfig(),
		Credentials: DefaultCredentialConfig(),
		HTTP:        DefaultHTTPConfig(),
	}
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxParallelism:     8,
		NodeTimeout:        30 * time.Second,
		RetryCount:         0,
		RetryDelay:         time.Second,
		MaxRetryDelay:      time.Minute,
		RetryModeAttempts:  3,
		ErrorMode:          ErrorModeStop,
		DefaultTriggerType: string(TriggerManual),
	}
}

func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:   StorageMemory,
		DataDir:   "./data",
		ListLimit: 50,
	}
}

func DefaultCredentialConfig() CredentialConfig {
	return CredentialConfig{
		Salt: "flowrun-credentials",
	}
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:           30 * time.Second,
		RequestsPerSecond: 0,
		Burst:             1,
		MaxResponseBytes:  10 << 20,
		UserAgent:         "flowrun/1.0",
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			Cooldown:          30 * time.Second,
		},
	}
}

func (c *Config) WithLogger(logger *slog.Logger) *Config {
	c.Logger = logger
	return c
}

func (c *Config) WithEngineSettings(maxParallelism int, nodeTimeout time.Duration, retryCount int) *Config {
	c.Engine.MaxParallelism = maxParallelism
	c.Engine.NodeTimeout = nodeTimeout
	c.Engine.RetryCount = retryCount
	return c
}

func (c *Config) WithErrorMode(mode ErrorMode) *Config {
	c.Engine.ErrorMode = mode
	return c
}

func (c *Config) WithBadgerStorage(dataDir string) *Config {
	c.Storage.Backend = StorageBadger
	c.Storage.DataDir = dataDir
	return c
}

func (c *Config) WithInMemoryBadger() *Config {
	c.Storage.Backend = StorageBadger
	c.Storage.InMemory = true
	return c
}

func (c *Config) WithEncryptionKey(key string) *Config {
	c.Credentials.EncryptionKey = key
	return c
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return NewConfigError("logger", ErrInvalidInput)
	}

	if c.Engine.MaxParallelism <= 0 {
		return NewConfigError("engine.max_parallelism", ErrInvalidInput)
	}
	if c.Engine.NodeTimeout < 0 {
		return NewConfigError("engine.node_timeout", ErrInvalidInput)
	}
	if c.Engine.RetryCount < 0 {
		return NewConfigError("engine.retry_count", ErrInvalidInput)
	}
	if c.Engine.RetryDelay < 0 {
		return NewConfigError("engine.retry_delay", ErrInvalidInput)
	}
	if c.Engine.MaxRetryDelay > 0 && c.Engine.MaxRetryDelay < c.Engine.RetryDelay {
		return NewConfigError("engine.max_retry_delay", fmt.Errorf("must be >= retry_delay (%s)", c.Engine.RetryDelay))
	}
	if !c.Engine.ErrorMode.Valid() {
		return NewConfigError("engine.error_mode", fmt.Errorf("unknown error mode %q", c.Engine.ErrorMode))
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageBadger:
		if !c.Storage.InMemory && c.Storage.DataDir == "" {
			return NewConfigError("storage.data_dir", ErrInvalidInput)
		}
	default:
		return NewConfigError("storage.backend", fmt.Errorf("unknown backend %q", c.Storage.Backend))
	}
	if c.Storage.ListLimit <= 0 {
		return NewConfigError("storage.list_limit", ErrInvalidInput)
	}

	if c.HTTP.RequestsPerSecond < 0 {
		return NewConfigError("http.requests_per_second", ErrInvalidInput)
	}
	if c.HTTP.RequestsPerSecond > 0 && c.HTTP.Burst <= 0 {
		return NewConfigError("http.burst", ErrInvalidInput)
	}
	if c.HTTP.Breaker.FailureThreshold < 0 {
		return NewConfigError("http.circuit_breaker.failure_threshold", ErrInvalidInput)
	}

	return nil
}

// LoadConfigFile reads a YAML config file over the defaults and validates it.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError("path", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, NewConfigError("yaml", err)
	}

	if key := os.Getenv(CredentialKeyEnv); key != "" {
		config.Credentials.EncryptionKey = key
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
