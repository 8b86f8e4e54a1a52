package config

import (
	"time"

	redisclient "github.com/pawmatch/pawmatch/internal/infra/redis"
	"github.com/pawmatch/pawmatch/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Logging    LoggingConfig      `yaml:"logging"`
	Database   postgres.Config    `yaml:"database"`
	Redis      redisclient.Config `yaml:"redis"`
	Tournament TournamentConfig   `yaml:"tournament"`
	Resilience ResilienceConfig   `yaml:"resilience"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TournamentConfig holds tournament engine settings.
type TournamentConfig struct {
	UndoWindow time.Duration `yaml:"undo_window"` // how long a vote stays reversible
	Rounds     int           `yaml:"rounds"`      // shuffled pairing rounds per tournament
	EloK       float64       `yaml:"elo_k"`       // rating delta magnitude
	SessionTTL time.Duration `yaml:"session_ttl"` // idle session eviction
}

// ResilienceConfig holds retry and circuit breaker defaults for outbound
// collaborators (vote sink, ratings persistence).
type ResilienceConfig struct {
	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerReset     time.Duration `yaml:"breaker_reset"`
}
