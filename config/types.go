package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Osu     OsuConfig     `mapstructure:"osu"`
	Output  OutputConfig  `mapstructure:"output"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OsuConfig holds osu! API connection details
type OsuConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
	CircuitBreaker bool          `mapstructure:"circuit_breaker"`
	Mode           string        `mapstructure:"mode"`
}

// OutputConfig controls how results are rendered
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	Limit       int    `mapstructure:"limit"`
	ShowDetails bool   `mapstructure:"show_details"`
	ShowDate    bool   `mapstructure:"show_date"`
}

// FilterConfig holds the default filter expression and named presets
type FilterConfig struct {
	Default string            `mapstructure:"default"`
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
