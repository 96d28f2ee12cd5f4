package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kodayn/osukit/osuapi"
)

// Load loads the configuration from file, environment and defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "osukit"))
		}

		// Check /etc
		v.AddConfigPath("/etc/osukit/")
	}

	// Environment variables such as OSUKIT_OSU_API_KEY override the file
	v.SetEnvPrefix("OSUKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file. A missing file is tolerated when no explicit
	// path was given, settings then come from environment and defaults.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// osu! API defaults
	v.SetDefault("osu.api_key", "")
	v.SetDefault("osu.base_url", "")
	v.SetDefault("osu.timeout", 30*time.Second)
	v.SetDefault("osu.retries", 5)
	v.SetDefault("osu.circuit_breaker", false)
	v.SetDefault("osu.mode", "osu")

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.limit", 10)
	v.SetDefault("output.show_details", true)
	v.SetDefault("output.show_date", false)

	// Filter defaults
	v.SetDefault("filter.default", "")
	v.SetDefault("filter.presets", map[string]string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Osu.APIKey == "" || cfg.Osu.APIKey == "your-api-key-here" {
		return fmt.Errorf("osu.api_key must be set to a valid API key")
	}

	if cfg.Osu.Timeout < 0 {
		return fmt.Errorf("osu.timeout must not be negative")
	}

	if cfg.Osu.Retries < 0 {
		return fmt.Errorf("osu.retries must not be negative")
	}

	if cfg.Osu.Mode != "" {
		if _, err := osuapi.ParseGameMode(cfg.Osu.Mode); err != nil {
			return fmt.Errorf("invalid osu.mode: %s", cfg.Osu.Mode)
		}
	}

	if cfg.Output.Limit < 1 || cfg.Output.Limit > 100 {
		return fmt.Errorf("output.limit must be between 1 and 100")
	}

	// Validate output format
	validOutputs := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s", cfg.Output.Format)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
