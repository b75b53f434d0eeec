package config

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"

	"github.com/jmgilman/go/scopedfs/errors"
)

var validate = validator.New()

// Validate checks cfg with struct tags and the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if cfg.Privileged.Interpreter && len(cfg.Privileged.Command) > 0 {
		return errors.New(errors.CodeInvalidConfig,
			"privileged: command prefix cannot be used with the in-process interpreter")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Textfile == "" {
		return errors.New(errors.CodeInvalidConfig, "metrics: textfile is required when metrics are enabled")
	}
	if cfg.Grants.Store == "badger" {
		if _, err := BadgerConfig(cfg); err != nil {
			return err
		}
	}
	return nil
}

// formatValidationError reports the first failed field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return errors.WithContextMap(
			errors.Newf(errors.CodeInvalidConfig, "%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value()),
			map[string]interface{}{"field": e.Namespace(), "tag": e.Tag()})
	}
	return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
}
