package domain

import (
	"log/slog"
	"time"
)

type Config struct {
	Logger *slog.Logger `json:"-" yaml:"-"`

	Engine      EngineConfig     `json:"engine" yaml:"engine"`
	Storage     StorageConfig    `json:"storage" yaml:"storage"`
	Credentials CredentialConfig `json:"credentials" yaml:"credentials"`
	HTTP        HTTPConfig       `json:"http" yaml:"http"`
}

type EngineConfig struct {
	MaxParallelism     int           `json:"max_parallelism" yaml:"max_parallelism"`
	NodeTimeout        time.Duration `json:"node_timeout" yaml:"node_timeout"`
	RetryCount         int           `json:"retry_count" yaml:"retry_count"`
	RetryDelay         time.Duration `json:"retry_delay" yaml:"retry_delay"`
	MaxRetryDelay      time.Duration `json:"max_retry_delay" yaml:"max_retry_delay"`
	RetryModeAttempts  int           `json:"retry_mode_attempts" yaml:"retry_mode_attempts"`
	ErrorMode          ErrorMode     `json:"error_mode" yaml:"error_mode"`
	DefaultTriggerType string        `json:"default_trigger_type" yaml:"default_trigger_type"`
}

type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageBadger StorageBackend = "badger"
)

type StorageConfig struct {
	Backend      StorageBackend `json:"backend" yaml:"backend"`
	DataDir      string         `json:"data_dir" yaml:"data_dir"`
	InMemory     bool           `json:"in_memory" yaml:"in_memory"`
	ExecutionTTL time.Duration  `json:"execution_ttl" yaml:"execution_ttl"`
	ListLimit    int            `json:"list_limit" yaml:"list_limit"`
}

type CredentialConfig struct {
	EncryptionKey string `json:"-" yaml:"encryption_key"`
	Salt          string `json:"-" yaml:"salt"`
}

type HTTPConfig struct {
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `json:"burst" yaml:"burst"`
	MaxResponseBytes  int64         `json:"max_response_bytes" yaml:"max_response_bytes"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	Breaker           BreakerConfig `json:"circuit_breaker" yaml:"circuit_breaker"`
}

// BreakerConfig guards outbound hosts. A zero FailureThreshold disables it.
type BreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold" yaml:"failure_threshold"`
	Cooldown         time.Duration `json:"cooldown" yaml:"cooldown"`
}
