package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Sensor   SensorConfig   `toml:"sensor"`
	Storage  StorageConfig  `toml:"storage"`
	Insights InsightsConfig `toml:"insights"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ReadTimeoutSeconds int      `toml:"read_timeout_seconds"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SensorConfig holds BLE sampling settings.
type SensorConfig struct {
	SamplingIntervalSeconds int  `toml:"sampling_interval_seconds"`
	ScanWindowSeconds       int  `toml:"scan_window_seconds"`
	ConnectDelayMs          int  `toml:"connect_delay_ms"`
	Simulated               bool `toml:"simulated"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// InsightsConfig holds post-flight summary settings. Insights are
// disabled when the API key is empty.
type InsightsConfig struct {
	OpenAIAPIKey string `toml:"openai_api_key"`
	Model        string `toml:"model"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Sensor: SensorConfig{
			SamplingIntervalSeconds: 5,
			ScanWindowSeconds:       2,
			ConnectDelayMs:          1500,
			Simulated:               true,
		},
		Storage: StorageConfig{
			DBPath: "aerosense.db",
		},
		Insights: InsightsConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// Load reads configuration from the given TOML file, overlaying it on
// the defaults. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Sensor.SamplingIntervalSeconds <= 0 {
		return fmt.Errorf("sampling interval must be positive, got %d", c.Sensor.SamplingIntervalSeconds)
	}
	return nil
}
