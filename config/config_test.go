package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/scopedfs/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"stderr"}, cfg.Logging.Output)
	assert.Equal(t, DefaultRoot, cfg.Storage.Root)
	assert.Equal(t, DefaultSDK, cfg.Storage.SDK)
	assert.Equal(t, "native", cfg.Storage.Mode)
	assert.Equal(t, "sh", cfg.Privileged.Shell)
	assert.Empty(t, cfg.Privileged.Command)
	assert.Equal(t, "memory", cfg.Grants.Store)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: DEBUG
storage:
  root: /sdcard
  sdk: 34
  mode: Privileged
privileged:
  command: ["su", "0"]
  timeout: 30s
  legacy_echo: true
grants:
  store: badger
  badger:
    db_path: /data/grants
    gc_interval: 10m
metrics:
  enabled: true
  textfile: /tmp/scopedfs.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/sdcard", cfg.Storage.Root)
	assert.Equal(t, 34, cfg.Storage.SDK)
	assert.Equal(t, "privileged", cfg.Storage.Mode)
	assert.Equal(t, []string{"su", "0"}, cfg.Privileged.Command)
	assert.Equal(t, 30*time.Second, cfg.Privileged.Timeout)
	assert.True(t, cfg.Privileged.LegacyEcho)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/scopedfs.prom", cfg.Metrics.Textfile)

	bc, err := BadgerConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/data/grants", bc.DBPath)
	assert.Equal(t, 10*time.Minute, bc.GCInterval)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  sdk: 29\n")
	t.Setenv("SCOPEDFS_STORAGE_SDK", "33")
	t.Setenv("SCOPEDFS_PRIVILEGED_INTERPRETER", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 33, cfg.Storage.SDK)
	assert.True(t, cfg.Privileged.Interpreter)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "Config.Logging.Level"},
		{"relative root", func(c *Config) { c.Storage.Root = "sdcard" }, "Config.Storage.Root"},
		{"negative sdk", func(c *Config) { c.Storage.SDK = -1 }, "Config.Storage.SDK"},
		{"bad mode", func(c *Config) { c.Storage.Mode = "root" }, "Config.Storage.Mode"},
		{"bad store", func(c *Config) { c.Grants.Store = "sqlite" }, "Config.Grants.Store"},
		{"negative timeout", func(c *Config) { c.Privileged.Timeout = -time.Second }, "Config.Privileged.Timeout"},
	}

	require.NoError(t, Validate(valid()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

			var pe errors.PlatformError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Context()["field"])
		})
	}
}

func TestValidateCustomRules(t *testing.T) {
	t.Run("interpreter with command prefix", func(t *testing.T) {
		cfg := &Config{Privileged: PrivilegedConfig{Interpreter: true, Command: []string{"su"}}}
		ApplyDefaults(cfg)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(Validate(cfg)))
	})

	t.Run("metrics without textfile", func(t *testing.T) {
		cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
		ApplyDefaults(cfg)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(Validate(cfg)))
	})

	t.Run("unknown badger option", func(t *testing.T) {
		cfg := &Config{Grants: GrantsConfig{Store: "badger", Badger: map[string]any{
			"db_path": "/x",
			"cache":   true,
		}}}
		ApplyDefaults(cfg)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(Validate(cfg)))
	})
}

func TestApplyDefaultsBadgerPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	cfg := &Config{Grants: GrantsConfig{Store: "Badger"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "badger", cfg.Grants.Store)
	assert.Equal(t, filepath.Join("/xdg", "scopedfs", "grants"), cfg.Grants.Badger["db_path"])

	explicit := &Config{Grants: GrantsConfig{Store: "badger", Badger: map[string]any{"in_memory": true, "db_path": ""}}}
	ApplyDefaults(explicit)
	bc, err := BadgerConfig(explicit)
	require.NoError(t, err)
	assert.True(t, bc.InMemory)
}
