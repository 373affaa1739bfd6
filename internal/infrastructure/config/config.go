package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "procdesk/internal/shared/config"
)

type Config struct {
	Storage      sharedConfig.StorageConfig      `mapstructure:"storage"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Auth         sharedConfig.AuthConfig         `mapstructure:"auth"`
	Coordination sharedConfig.CoordinationConfig `mapstructure:"coordination"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables. A missing
// config file is fine; defaults plus PROCDESK_* env vars fully describe a
// working setup.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("PROCDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.data_dir", "./database")
	v.SetDefault("storage.busy_timeout_ms", 5000)
	v.SetDefault("storage.max_idle_conns", 2)
	v.SetDefault("storage.max_open_conns", 10)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.bcrypt_cost", 12)

	// Coordination defaults. Session timeout mirrors the classic two-minute
	// reclamation window; heartbeats run well inside it.
	v.SetDefault("coordination.heartbeat_interval", "5s")
	v.SetDefault("coordination.poll_interval", "2s")
	v.SetDefault("coordination.session_timeout", "120s")
	v.SetDefault("coordination.command_ttl", "60s")
	v.SetDefault("coordination.retry_attempts", 3)
	v.SetDefault("coordination.retry_backoff", "150ms")
}
