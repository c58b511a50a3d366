// Package config holds process-wide configuration for robomem. A single
// Config value is constructed at startup and threaded into each component;
// nothing reads ambient global state after that.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global robomem config
	GlobalConfigDir = ".robomem"
	// GlobalConfigFile is the global config filename
	GlobalConfigFile = "robomem.yaml"

	// DefaultUserID is the fixed robot identity used when none is configured.
	DefaultUserID = "navigation_robot"
)

// Config holds the application configuration
type Config struct {
	// Service configures the external memory service connection
	Service ServiceConfig `mapstructure:"service" yaml:"service,omitempty"`
	// Robot configures the default robot identity
	Robot RobotConfig `mapstructure:"robot" yaml:"robot,omitempty"`
	// Server configures the HTTP serving mode
	Server ServerConfig `mapstructure:"server" yaml:"server,omitempty"`
}

// ServiceConfig holds memory service settings
type ServiceConfig struct {
	// BaseURL is the memory service API URL
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	// APIKey authenticates against the memory service (can also be set via
	// ROBOMEM_API_KEY or MEM0_API_KEY env)
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// TimeoutSeconds is the transport timeout for service calls. This is
	// the only timeout in the system; the tool layer enforces none.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
}

// RobotConfig holds robot identity settings
type RobotConfig struct {
	// UserID is the default identity observations are stored under
	UserID string `mapstructure:"user_id" yaml:"user_id,omitempty"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	// Host is the server bind address
	Host string `mapstructure:"host" yaml:"host,omitempty"`
	// Port is the server port
	Port int `mapstructure:"port" yaml:"port,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:        "https://api.mem0.ai",
			TimeoutSeconds: 30,
		},
		Robot: RobotConfig{
			UserID: DefaultUserID,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// Load loads configuration from file and environment.
//
// File lookup: robomem.yaml in the current directory, then
// ~/.robomem/config.yaml. Environment variables (ROBOMEM_*) take priority
// over file values.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("robomem")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, GlobalConfigDir))
	}

	v.SetEnvPrefix("ROBOMEM")
	v.AutomaticEnv()

	_ = v.BindEnv("service.base_url", "ROBOMEM_BASE_URL")
	_ = v.BindEnv("service.api_key", "ROBOMEM_API_KEY", "MEM0_API_KEY")
	_ = v.BindEnv("service.timeout_seconds", "ROBOMEM_TIMEOUT_SECONDS")
	_ = v.BindEnv("robot.user_id", "ROBOMEM_USER_ID")
	_ = v.BindEnv("server.host", "ROBOMEM_HOST")
	_ = v.BindEnv("server.port", "ROBOMEM_PORT")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Timeout returns the service transport timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// RenderYAML returns the configuration serialized as YAML, with the API key
// masked.
func (c *Config) RenderYAML() (string, error) {
	shown := *c
	if shown.Service.APIKey != "" {
		shown.Service.APIKey = "***"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// GlobalConfigPath returns the path to ~/.robomem/config.yaml
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}

// WriteDefaultConfig writes the default config file to ~/.robomem/ if no
// config file exists there yet.
func WriteDefaultConfig() (string, error) {
	configPath, err := GlobalConfigPath()
	if err != nil {
		return "", err
	}

	// Don't overwrite existing config
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return configPath, nil
}
