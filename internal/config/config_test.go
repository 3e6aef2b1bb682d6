package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dispatchmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 120*time.Second, cfg.Monitor.LeadTime)
	assert.Equal(t, time.Second, cfg.Monitor.TimerPeriod)
	assert.Equal(t, 256, cfg.Monitor.QueueSize)
	assert.Equal(t, 8080, cfg.HTTP.APIPort)
	assert.Equal(t, 9090, cfg.HTTP.AdminPort)
	assert.Equal(t, 100, cfg.EventStore.HistorySize)
}

func TestLoad_SampleYAMLIsValid(t *testing.T) {
	path := writeConfig(t, SampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dispatch.notify", cfg.Notifications.SubjectPrefix)
	assert.Equal(t, 30*24*time.Hour, cfg.EventStore.Retention)
}

func TestLoad_ReaderScript(t *testing.T) {
	path := writeConfig(t, `
reader:
  script:
    - after: 5s
      tag_ids: [T1, T2]
    - after: 10s
      tag_ids: [T3]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Reader.Script, 2)
	assert.Equal(t, 5*time.Second, cfg.Reader.Script[0].After)
	assert.Equal(t, []string{"T1", "T2"}, cfg.Reader.Script[0].TagIDs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, derrors.CategoryConfig, derrors.CategoryOf(err))
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "monitor: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, derrors.CategoryConfig, derrors.CategoryOf(err))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"api port out of range", func(c *Config) { c.HTTP.APIPort = 0 }},
		{"admin port out of range", func(c *Config) { c.HTTP.AdminPort = 70000 }},
		{"ports collide", func(c *Config) { c.HTTP.AdminPort = c.HTTP.APIPort }},
		{"tagdb path required", func(c *Config) { c.TagDB.Path = "" }},
		{"eventstore path required", func(c *Config) { c.EventStore.Path = "" }},
		{"nats url required when enabled", func(c *Config) { c.Notifications.Enabled = true }},
		{"lead time below timer period", func(c *Config) { c.Monitor.LeadTime = time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, derrors.CategoryConfig, derrors.CategoryOf(err))
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISPATCHMON_NATS_URL", "nats://override:4222")
	t.Setenv("DISPATCHMON_LOG_LEVEL", "warn")

	path := writeConfig(t, "notifications:\n  enabled: true\n  nats_url: nats://file:4222\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://override:4222", cfg.Notifications.NATSURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LevelInfo, NormalizeLogLevel("nonsense"))
	assert.Equal(t, LevelInfo, NormalizeLogLevel(""))
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LoggingConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LoggingConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LoggingConfig{}.SlogLevel())
}
