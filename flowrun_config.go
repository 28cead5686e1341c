package flowrun

import (
	"log/slog"
	"time"

	"github.com/eleven-am/flowrun/internal/domain"
)

type Config = domain.Config

type EngineConfig = domain.EngineConfig

type StorageConfig = domain.StorageConfig

type StorageBackend = domain.StorageBackend

type CredentialConfig = domain.CredentialConfig

type HTTPConfig = domain.HTTPConfig

const (
	StorageMemory = domain.StorageMemory
	StorageBadger = domain.StorageBadger
)

// CredentialKeyEnv names the environment variable that overrides the
// credential encryption key when a config file is loaded.
const CredentialKeyEnv = domain.CredentialKeyEnv

func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

func DefaultEngineConfig() EngineConfig {
	return domain.DefaultEngineConfig()
}

func DefaultStorageConfig() StorageConfig {
	return domain.DefaultStorageConfig()
}

func DefaultHTTPConfig() HTTPConfig {
	return domain.DefaultHTTPConfig()
}

// LoadConfigFile reads a YAML config over the defaults and validates it.
func LoadConfigFile(path string) (*Config, error) {
	return domain.LoadConfigFile(path)
}

func ParseConfig(data []byte) (*Config, error) {
	return domain.ParseConfig(data)
}

type ConfigBuilder struct {
	config *Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultConfig()}
}

func (cb *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	cb.config.WithLogger(logger)
	return cb
}

func (cb *ConfigBuilder) WithEngineSettings(maxParallelism int, nodeTimeout time.Duration, retryCount int) *ConfigBuilder {
	cb.config.WithEngineSettings(maxParallelism, nodeTimeout, retryCount)
	return cb
}

func (cb *ConfigBuilder) WithErrorMode(mode ErrorMode) *ConfigBuilder {
	cb.config.WithErrorMode(mode)
	return cb
}

func (cb *ConfigBuilder) WithBadgerStorage(dataDir string) *ConfigBuilder {
	cb.config.WithBadgerStorage(dataDir)
	return cb
}

func (cb *ConfigBuilder) WithInMemoryBadger() *ConfigBuilder {
	cb.config.WithInMemoryBadger()
	return cb
}

func (cb *ConfigBuilder) WithEncryptionKey(key string) *ConfigBuilder {
	cb.config.WithEncryptionKey(key)
	return cb
}

func (cb *ConfigBuilder) WithHTTPRateLimit(requestsPerSecond float64, burst int) *ConfigBuilder {
	cb.config.HTTP.RequestsPerSecond = requestsPerSecond
	cb.config.HTTP.Burst = burst
	return cb
}

func (cb *ConfigBuilder) WithExecutionTTL(ttl time.Duration) *ConfigBuilder {
	cb.config.Storage.ExecutionTTL = ttl
	return cb
}

// Build validates the accumulated settings and returns the config.
func (cb *ConfigBuilder) Build() (*Config, error) {
	if err := cb.config.Validate(); err != nil {
		return nil, err
	}
	return cb.config, nil
}
