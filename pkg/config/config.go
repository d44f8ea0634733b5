// Package config provides configuration loading and validation for the
// Meerkat language server and CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel  = errors.New("invalid logging level")
	ErrInvalidLogFormat = errors.New("invalid logging format")
	ErrInvalidTimeout   = errors.New("suricata timeout must be positive")
	ErrMissingBinary    = errors.New("suricata binary must not be empty when enabled")
)

// Default configuration values.
const (
	defaultSuricataBin     = "suricata"
	defaultSuricataTimeout = 30 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

// Config holds all configuration for Meerkat.
type Config struct {
	Suricata  SuricataConfig  `mapstructure:"suricata"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SuricataConfig controls the external rule checker.
type SuricataConfig struct {
	Binary  string        `mapstructure:"binary"`
	Timeout time.Duration `mapstructure:"timeout"`
	Enabled bool          `mapstructure:"enabled"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds trace export configuration. An empty endpoint
// disables export entirely.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Load reads configuration from file and environment variables. An
// empty configPath falls back to the default search locations; a
// missing file is not an error, the defaults carry the server.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("meerkat")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("/etc/meerkat")
	}

	viperCfg.SetEnvPrefix("MEERKAT")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("suricata.enabled", true)
	viperCfg.SetDefault("suricata.binary", defaultSuricataBin)
	viperCfg.SetDefault("suricata.timeout", defaultSuricataTimeout.String())

	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.insecure", false)
}

// validate validates the configuration.
func validate(config *Config) error {
	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Suricata.Enabled {
		if config.Suricata.Binary == "" {
			return ErrMissingBinary
		}

		if config.Suricata.Timeout <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTimeout, config.Suricata.Timeout)
		}
	}

	return nil
}
