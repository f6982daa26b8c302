// Package config loads task-analyzer settings through viper: defaults,
// an optional YAML file and TASK_ANALYZER_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config directory and the env var prefix.
const AppName = "task-analyzer"

// EnvPrefix is prepended to every environment override,
// e.g. TASK_ANALYZER_CLIENT_BASE_URL for client.base_url.
const EnvPrefix = "TASK_ANALYZER"

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the analysis service started by `serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// DBPath is the sqlite file holding the run log.
	DBPath string `mapstructure:"db_path"`
	// WeightsFile optionally overrides the scoring weights. Empty means defaults.
	WeightsFile string `mapstructure:"weights_file"`
}

// ClientConfig controls how the CLI reaches the analysis service.
type ClientConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	DefaultStrategy string `mapstructure:"default_strategy"`
}

// Timeout returns the request timeout as a duration.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Dir is where task-analyzer.log is written. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: "./analyzer.db",
		},
		Client: ClientConfig{
			BaseURL:         "http://localhost:8080",
			TimeoutSeconds:  10,
			DefaultStrategy: "smart",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.db_path", defaults.Server.DBPath)
	viper.SetDefault("server.weights_file", defaults.Server.WeightsFile)

	viper.SetDefault("client.base_url", defaults.Client.BaseURL)
	viper.SetDefault("client.timeout_seconds", defaults.Client.TimeoutSeconds)
	viper.SetDefault("client.default_strategy", defaults.Client.DefaultStrategy)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load unmarshals the current viper state and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
