package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 60, cfg.FrameRate)
	assert.True(t, cfg.Sound.Bell)
}

func TestLoadReadsFields(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/b.db
log_file: /tmp/b.log
log_level: debug
frame_rate: 30
sound:
  command: "paplay {file}"
  dir: /usr/share/breathr
  bell: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/b.db", cfg.DBPath)
	assert.Equal(t, "/tmp/b.log", cfg.LogFile)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 30, cfg.FrameRate)
	assert.Equal(t, "paplay {file}", cfg.Sound.Command)
	assert.Equal(t, "/usr/share/breathr", cfg.Sound.Dir)
	assert.False(t, cfg.Sound.Bell)
}

func TestLoadRepairsOutOfRange(t *testing.T) {
	path := writeConfig(t, `
log_level: loud
frame_rate: 1000
sound:
  command: "  "
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultFrameRate, cfg.FrameRate)
	assert.Empty(t, cfg.Sound.Command)
	assert.True(t, cfg.Sound.Bell, "bell keeps its default when not set")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "frame_rate: [1, 2\n")
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, "db_path: ~/data/b.db\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "b.db"), cfg.DBPath)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Config{
		DBPath:    "/var/b.db",
		LogLevel:  slog.LevelWarn,
		FrameRate: 24,
		Sound:     SoundConfig{Command: "afplay", Bell: false},
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenLoggerDiscardsWithoutFile(t *testing.T) {
	logger, closer, err := OpenLogger(Default())
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}

func TestOpenLoggerWritesFile(t *testing.T) {
	cfg := Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "breathr.log")
	logger, closer, err := OpenLogger(cfg)
	require.NoError(t, err)

	logger.Info("hello", "k", "v")
	logger.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.NotContains(t, string(data), "hidden")
}
