package config

import "time"

type StorageConfig struct {
	DataDir      string `mapstructure:"data_dir"`
	BusyTimeout  int    `mapstructure:"busy_timeout_ms"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// CoordinationConfig controls the session/command registry timing. All
// intervals are wall-clock driven; cooperating processes only need clocks
// that agree within the session timeout.
type CoordinationConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	SessionTimeout    time.Duration `mapstructure:"session_timeout"`
	CommandTTL        time.Duration `mapstructure:"command_ttl"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
}
