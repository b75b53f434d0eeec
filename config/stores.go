package config

import (
	"github.com/mitchellh/mapstructure"

	"github.com/jmgilman/go/scopedfs/errors"
	grantbadger "github.com/jmgilman/go/scopedfs/grant/badger"
)

// BadgerConfig decodes the grants.badger options. Durations may be given
// as strings such as "10m".
func BadgerConfig(cfg *Config) (grantbadger.Config, error) {
	var out grantbadger.Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &out,
	})
	if err != nil {
		return out, errors.Wrap(err, errors.CodeInternal, "failed to create decoder")
	}
	if err := decoder.Decode(cfg.Grants.Badger); err != nil {
		return out, errors.Wrap(err, errors.CodeInvalidConfig, "invalid grants.badger options")
	}
	if out.DBPath == "" && !out.InMemory {
		return out, errors.New(errors.CodeInvalidConfig, "grants.badger: db_path is required")
	}
	return out, nil
}
