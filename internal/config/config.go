package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	UsageCSV              string              `yaml:"usage_csv,omitempty" env:"NETDASH_USAGE_CSV"`
	IndicatorsCSV         string              `yaml:"indicators_csv,omitempty" env:"NETDASH_INDICATORS_CSV"`
	ListenAddr            string              `yaml:"listen_addr,omitempty" env:"NETDASH_LISTEN_ADDR"`
	Regions               map[string][]string `yaml:"regions,omitempty"`                 // Added to (or replacing) the built-in regions
	ReplaceDefaultRegions bool                `yaml:"replace_default_regions,omitempty"` // Use only the regions above
	MQTT                  MQTTConfig          `yaml:"mqtt,omitempty"`
	Telemetry             TelemetryConfig     `yaml:"telemetry,omitempty"`
}

// MQTTConfig holds MQTT broker configuration for the publish command
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker" env:"NETDASH_MQTT_BROKER"` // e.g., "localhost:1883"
	Username    string `yaml:"username,omitempty" env:"NETDASH_MQTT_USERNAME"`
	Password    string `yaml:"password,omitempty" env:"NETDASH_MQTT_PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // default: "netdash"
}

// TelemetryConfig controls trace export from the dashboard. Tracing is on
// when an endpoint is set, unless enabled is explicitly false.
type TelemetryConfig struct {
	Enabled     *bool   `yaml:"enabled,omitempty" env:"NETDASH_OTEL_ENABLED"`
	Endpoint    string  `yaml:"endpoint,omitempty" env:"NETDASH_OTEL_ENDPOINT"` // e.g., "http://localhost:4318"
	ServiceName string  `yaml:"service_name,omitempty" env:"NETDASH_OTEL_SERVICE_NAME"`
	SampleRatio float64 `yaml:"sample_ratio,omitempty" env:"NETDASH_OTEL_SAMPLE_RATIO"` // (0, 1], default 1
}

// Load reads the config file, then applies environment overrides
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Missing file means defaults plus environment
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetUsageCSV returns the usage file path, defaulting to data/internet_usage.csv
func (c *Config) GetUsageCSV() string {
	if c.UsageCSV == "" {
		return filepath.Join("data", "internet_usage.csv")
	}
	return c.UsageCSV
}

// GetIndicatorsCSV returns the indicators file path, defaulting to data/economic_indicators.csv
func (c *Config) GetIndicatorsCSV() string {
	if c.IndicatorsCSV == "" {
		return filepath.Join("data", "economic_indicators.csv")
	}
	return c.IndicatorsCSV
}

// GetListenAddr returns the dashboard listen address, defaulting to :8080
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return ":8080"
	}
	return c.ListenAddr
}

// GetTopicPrefix returns the MQTT topic prefix, defaulting to "netdash"
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "netdash"
	}
	return m.TopicPrefix
}

// Active reports whether traces should be exported
func (t TelemetryConfig) Active() bool {
	if t.Endpoint == "" {
		return false
	}
	return t.Enabled == nil || *t.Enabled
}

// GetServiceName returns the reported service name, defaulting to "netdash"
func (t TelemetryConfig) GetServiceName() string {
	if t.ServiceName == "" {
		return "netdash"
	}
	return t.ServiceName
}

// GetSampleRatio returns the fraction of traces to sample. Values outside
// (0, 1] sample everything.
func (t TelemetryConfig) GetSampleRatio() float64 {
	if t.SampleRatio <= 0 || t.SampleRatio > 1 {
		return 1
	}
	return t.SampleRatio
}
