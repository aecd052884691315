package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(content), 0o644))
	return fname
}

func TestPrepareConfigurationTOML(t *testing.T) {
	fname := writeTempConfig(t, "conf.toml", `
[stream]
address = "192.168.1.10"
port = 9000
stream_path = "/cam"
auth_enabled = true
username = "operator"
password = "correct-horse-battery"

[stream.quality]
width = 1920
height = 1080
frame_rate = 25
bitrate = 3000000

[tuning]
buffer_capacity = 120
target_band = 0.8
test_source_fps = 15

[vault]
type = "redis"
redis_addr = "127.0.0.1:6380"

[snapshots]
enabled = true
type = "filesystem"
directory = "/tmp/snaps"
`)
	cfg, err := PrepareConfiguration(fname)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10", cfg.StreamCfg.Address)
	assert.Equal(t, 9000, cfg.StreamCfg.Port)
	assert.Equal(t, "/cam", cfg.StreamCfg.StreamPath)
	assert.True(t, cfg.StreamCfg.AuthEnabled)
	assert.Equal(t, 1920, cfg.StreamCfg.Quality.Width)
	assert.Equal(t, 25, cfg.StreamCfg.Quality.FrameRate)
	assert.Equal(t, 120, cfg.TuningCfg.BufferCapacity)
	assert.Equal(t, 0.8, cfg.TuningCfg.TargetBand)
	assert.Equal(t, 15, cfg.TuningCfg.TestSourceFPS)
	assert.Equal(t, "redis", cfg.VaultCfg.Type)
	assert.Equal(t, "127.0.0.1:6380", cfg.VaultCfg.RedisAddr)
	assert.True(t, cfg.SnapshotCfg.Enabled)
	assert.Equal(t, "/tmp/snaps", cfg.SnapshotCfg.Directory)

	// Untouched sections get defaults
	assert.Equal(t, defaultInitialTargetRate, cfg.TuningCfg.InitialTargetRate)
	assert.Equal(t, defaultMaxSegments, cfg.TuningCfg.MaxSegments)
	assert.Equal(t, defaultLogLevel, cfg.LoggerCfg.Level)
}

func TestPrepareConfigurationJSON(t *testing.T) {
	fname := writeTempConfig(t, "conf.json", `{
  "stream": {
    "address": "10.0.0.5",
    "port": 8088,
    "stream_path": "/live"
  },
  "tuning": {
    "overlay_enabled": true
  }
}`)
	cfg, err := PrepareConfiguration(fname)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.StreamCfg.Address)
	assert.Equal(t, 8088, cfg.StreamCfg.Port)
	assert.Equal(t, "/live", cfg.StreamCfg.StreamPath)
	assert.True(t, cfg.TuningCfg.OverlayEnabled)
	assert.Equal(t, defaultBufferCapacity, cfg.TuningCfg.BufferCapacity)
}

func TestPrepareConfigurationDefaultsOnEmptyFile(t *testing.T) {
	fname := writeTempConfig(t, "conf.json", `{}`)
	cfg, err := PrepareConfiguration(fname)
	require.NoError(t, err)
	assert.Equal(t, defaultAddress, cfg.StreamCfg.Address)
	assert.Equal(t, defaultPort, cfg.StreamCfg.Port)
	assert.Equal(t, defaultStreamPath, cfg.StreamCfg.StreamPath)
	assert.Equal(t, defaultVaultType, cfg.VaultCfg.Type)
	assert.Equal(t, defaultSnapshotType, cfg.SnapshotCfg.Type)
}

func TestPrepareConfigurationRejectsUnknownFormat(t *testing.T) {
	fname := writeTempConfig(t, "conf.yaml", "stream:\n  port: 1\n")
	_, err := PrepareConfiguration(fname)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not supported file format")
}

func TestPrepareConfigurationEmptyName(t *testing.T) {
	_, err := PrepareConfiguration("")
	require.Error(t, err)
}

func TestPrepareConfigurationMissingFile(t *testing.T) {
	_, err := PrepareConfiguration("/no/such/dir/conf.json")
	require.Error(t, err)
}
