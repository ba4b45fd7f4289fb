// Package config loads tool configuration from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	// DefaultQuality is the quality label used when -q is not given.
	DefaultQuality string        `mapstructure:"default_quality"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultQuality: "high",
		Logging: LoggingConfig{
			Level:      "info",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		// Look for config file in current directory and home directory
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.pdf-converter")
		viper.AddConfigPath("/etc/pdf-converter")
	}

	// Enable environment variable support
	viper.SetEnvPrefix("PDF_CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal config
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate and normalize config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validQualities := map[string]bool{
		"high":   true,
		"medium": true,
		"low":    true,
	}
	if c.DefaultQuality == "" {
		c.DefaultQuality = "high"
	}
	if !validQualities[strings.ToLower(c.DefaultQuality)] {
		return fmt.Errorf("invalid default_quality: %s (valid: high, medium, low)", c.DefaultQuality)
	}
	c.DefaultQuality = strings.ToLower(c.DefaultQuality)

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}
