package config

import (
	"path/filepath"
	"strings"
)

// Default values applied to unset fields.
const (
	DefaultRoot       = "/storage/emulated/0"
	DefaultSDK        = 30
	DefaultMode       = "native"
	DefaultShell      = "sh"
	DefaultGrantStore = "memory"
)

// ApplyDefaults fills zero-valued fields with defaults. Explicit values are
// preserved and enumerations are normalized to lowercase.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyStorageDefaults(&cfg.Storage)
	applyPrivilegedDefaults(&cfg.Privileged)
	applyGrantsDefaults(&cfg.Grants)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	cfg.Level = strings.ToLower(cfg.Level)
	if len(cfg.Output) == 0 {
		cfg.Output = []string{"stderr"}
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.SDK == 0 {
		cfg.SDK = DefaultSDK
	}
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	cfg.Mode = strings.ToLower(cfg.Mode)
}

func applyPrivilegedDefaults(cfg *PrivilegedConfig) {
	if cfg.Shell == "" {
		cfg.Shell = DefaultShell
	}
}

func applyGrantsDefaults(cfg *GrantsConfig) {
	if cfg.Store == "" {
		cfg.Store = DefaultGrantStore
	}
	cfg.Store = strings.ToLower(cfg.Store)
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if _, ok := cfg.Badger["db_path"]; !ok && cfg.Store == "badger" {
		cfg.Badger["db_path"] = filepath.Join(ConfigDir(), "grants")
	}
}
