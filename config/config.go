// Package config loads scopedfs configuration from a file and the
// environment.
//
// Sources, highest precedence first:
//  1. Environment variables (SCOPEDFS_*, e.g. SCOPEDFS_STORAGE_SDK=34)
//  2. Configuration file (YAML, TOML or JSON)
//  3. Defaults
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jmgilman/go/scopedfs/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SCOPEDFS"

// Config is the complete scopedfs configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Privileged PrivilegedConfig `mapstructure:"privileged"`
	Grants     GrantsConfig     `mapstructure:"grants"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is normalized to lowercase by ApplyDefaults.
	Level       string   `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Development bool     `mapstructure:"development"`
	Output      []string `mapstructure:"output" validate:"required,min=1"`
}

// StorageConfig describes the device storage and how to reach it.
type StorageConfig struct {
	// Root is the external storage root, e.g. /storage/emulated/0.
	Root string `mapstructure:"root" validate:"required,startswith=/"`

	// SDK is the platform API level.
	SDK int `mapstructure:"sdk" validate:"required,gte=1"`

	// Mode is "native" or "privileged".
	Mode string `mapstructure:"mode" validate:"required,oneof=native privileged"`
}

// PrivilegedConfig configures the elevated execution channel.
type PrivilegedConfig struct {
	// Command is the argv prefix of the channel, e.g. ["su", "0"]. Empty
	// runs the shell directly.
	Command []string `mapstructure:"command"`

	// Shell receives every command line.
	Shell string `mapstructure:"shell" validate:"required"`

	// Timeout bounds each command. Zero means no limit.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// Interpreter runs command lines in-process instead of spawning the
	// shell.
	Interpreter bool `mapstructure:"interpreter"`

	// LegacyEcho writes text with an unquoted echo.
	LegacyEcho bool `mapstructure:"legacy_echo"`
}

// GrantsConfig selects the grant store.
type GrantsConfig struct {
	// Store is "memory" or "badger".
	Store string `mapstructure:"store" validate:"required,oneof=memory badger"`

	// Badger holds the options of the badger store. Only used when
	// Store is "badger".
	Badger map[string]any `mapstructure:"badger"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Textfile receives the collected metrics in the text exposition
	// format when the process exits, for a node_exporter textfile
	// collector.
	Textfile string `mapstructure:"textfile"`
}

// keys lists every leaf key so environment variables are seen by
// Unmarshal even when no file mentions them.
var keys = []string{
	"logging.level",
	"logging.development",
	"logging.output",
	"storage.root",
	"storage.sdk",
	"storage.mode",
	"privileged.command",
	"privileged.shell",
	"privileged.timeout",
	"privileged.interpreter",
	"privileged.legacy_echo",
	"grants.store",
	"grants.badger.db_path",
	"grants.badger.sync_writes",
	"grants.badger.gc_interval",
	"metrics.enabled",
	"metrics.textfile",
}

// Load reads configuration from configPath, or from the default location
// when configPath is empty, then applies defaults and validates the
// result. A missing file at the default location is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to unmarshal config")
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(ConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if stderrors.As(err, &notFound) {
		return nil
	}
	return errors.Wrap(err, errors.CodeInvalidConfig, "failed to read config file")
}

// ConfigDir returns $XDG_CONFIG_HOME/scopedfs, falling back to
// ~/.config/scopedfs and finally the working directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scopedfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "scopedfs")
}
