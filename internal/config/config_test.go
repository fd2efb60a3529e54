package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	unsetenv(t, "NETDASH_USAGE_CSV")
	unsetenv(t, "NETDASH_LISTEN_ADDR")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "internet_usage.csv"), cfg.GetUsageCSV())
	assert.Equal(t, filepath.Join("data", "economic_indicators.csv"), cfg.GetIndicatorsCSV())
	assert.Equal(t, ":8080", cfg.GetListenAddr())
	assert.Equal(t, "netdash", cfg.MQTT.GetTopicPrefix())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `usage_csv: in/usage.csv
indicators_csv: in/econ.csv
listen_addr: 127.0.0.1:9000
regions:
  Nordics: [Denmark, Finland, Iceland, Norway, Sweden]
mqtt:
  enabled: true
  broker: broker.local:1883
  topic_prefix: stats
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	t.Setenv("NETDASH_LISTEN_ADDR", ":7070")
	unsetenv(t, "NETDASH_USAGE_CSV")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "in/usage.csv", cfg.GetUsageCSV())
	assert.Equal(t, "in/econ.csv", cfg.GetIndicatorsCSV())
	assert.Equal(t, ":7070", cfg.GetListenAddr())
	assert.Equal(t, []string{"Denmark", "Finland", "Iceland", "Norway", "Sweden"}, cfg.Regions["Nordics"])
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "broker.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, "stats", cfg.MQTT.GetTopicPrefix())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regions: [unterminated"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestSaveRoundTrip(t *testing.T) {
	unsetenv(t, "NETDASH_USAGE_CSV")
	unsetenv(t, "NETDASH_LISTEN_ADDR")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, Save(path, &Config{UsageCSV: "u.csv", ReplaceDefaultRegions: true}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "u.csv", cfg.UsageCSV)
	assert.True(t, cfg.ReplaceDefaultRegions)
}

func TestTelemetryFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `telemetry:
  endpoint: http://collector:4318
  service_name: netdash-staging
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	unsetenv(t, "NETDASH_OTEL_ENDPOINT")
	unsetenv(t, "NETDASH_OTEL_ENABLED")
	unsetenv(t, "NETDASH_OTEL_SERVICE_NAME")
	unsetenv(t, "NETDASH_OTEL_SAMPLE_RATIO")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Active())
	assert.Equal(t, "netdash-staging", cfg.Telemetry.GetServiceName())
	assert.Equal(t, 1.0, cfg.Telemetry.GetSampleRatio())

	t.Setenv("NETDASH_OTEL_ENABLED", "false")
	t.Setenv("NETDASH_OTEL_SAMPLE_RATIO", "0.25")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Telemetry.Enabled)
	assert.False(t, cfg.Telemetry.Active())
	assert.Equal(t, 0.25, cfg.Telemetry.GetSampleRatio())

	t.Setenv("NETDASH_OTEL_ENABLED", "maybe")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestTelemetryDefaults(t *testing.T) {
	var tc TelemetryConfig
	assert.False(t, tc.Active())
	assert.Equal(t, "netdash", tc.GetServiceName())

	on := true
	tc = TelemetryConfig{Enabled: &on}
	assert.False(t, tc.Active())

	tc.Endpoint = "http://localhost:4318"
	assert.True(t, tc.Active())
}
