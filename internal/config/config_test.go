package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno/waypoint-agent/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
agent:
  device_id: tracker-7
remote:
  url: https://api.example.com/records
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tracker-7", cfg.Agent.DeviceID)
	assert.Equal(t, 60, cfg.Agent.IntervalSeconds)
	assert.Equal(t, "http", cfg.Remote.Kind)
	assert.Equal(t, 15, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Signal.FallbackTimeoutSeconds)
	assert.Equal(t, "file", cfg.Backlog.Store)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigRequiresRemoteTarget(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, "agent:\n  device_id: x\n"))
	assert.Error(t, err)

	_, err = config.LoadConfig(writeConfig(t, `
remote:
  kind: kafka
`))
	assert.Error(t, err)
}

func TestLoadConfigKafka(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, `
remote:
  kind: kafka
  kafka_brokers: ["broker-1:9092"]
`))
	require.NoError(t, err)
	assert.Equal(t, "waypoint.records", cfg.Remote.KafkaTopic)
}

func TestLoadConfigRejectsUnknownRemoteKind(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, `
remote:
  kind: carrier-pigeon
`))
	assert.Error(t, err)
}
