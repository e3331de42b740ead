package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .plantdash.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	API        APIConfig        `yaml:"api" mapstructure:"api"`
	Poll       PollConfig       `yaml:"poll" mapstructure:"poll"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// APIConfig points the dashboard at the plant backend.
type APIConfig struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each HTTP request. Zero means no timeout: a slow fetch
	// simply has its result applied when it lands.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PollConfig controls the reconciliation loop.
type PollConfig struct {
	// Interval between cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Limit is how many recent samples each cycle requests.
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// RangeConfig is a min/max pair as written in the config file.
type RangeConfig struct {
	Min float64 `yaml:"min" mapstructure:"min"`
	Max float64 `yaml:"max" mapstructure:"max"`
}

// ThresholdsConfig overrides the fallback ranges used when the active plant
// profile has none. Light always uses its fixed band and cannot be set here.
type ThresholdsConfig struct {
	Temperature *RangeConfig `yaml:"temperature,omitempty" mapstructure:"temperature"`
	Humidity    *RangeConfig `yaml:"humidity,omitempty" mapstructure:"humidity"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	// File is where the log is written. Empty means ~/.plantdash/plantdash.log.
	File string `yaml:"file" mapstructure:"file"`

	// Debug enables debug-level entries.
	Debug bool `yaml:"debug" mapstructure:"debug"`
}

// Defaults used across the config layer.
const (
	DefaultBaseURL      = "http://localhost:5000/api"
	DefaultPollInterval = 15 * time.Second
	DefaultPollLimit    = 24
	DefaultColor        = "auto"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 0,
		},
		Poll: PollConfig{
			Interval: DefaultPollInterval,
			Limit:    DefaultPollLimit,
		},
		Output: OutputConfig{
			Color: DefaultColor,
		},
	}
}
