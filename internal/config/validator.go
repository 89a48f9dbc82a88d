package config

import (
	"fmt"
	"strings"

	"envprobe/internal/errorwrapper"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errorwrapper.NewError("configuration is nil")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf(
					"field '%s' failed on '%s' (value: '%v')",
					fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Value(),
				))
			}
			return errorwrapper.WrapSentinel(errorwrapper.ErrInvalidConfiguration,
				errorwrapper.NewError("config validation failed: %s", strings.Join(messages, "; ")))
		}
		return errorwrapper.WrapSentinel(errorwrapper.ErrInvalidConfiguration,
			errorwrapper.WrapError(err, "config validation failed"))
	}

	if len(cfg.ExpanderConfig.EnvPrefixes) == 0 {
		return errorwrapper.NewValidationError("expander_config.env_prefixes", nil, "at least one environment prefix is required")
	}
	if len(cfg.ExpanderConfig.CommonPaths) == 0 {
		return errorwrapper.NewValidationError("expander_config.common_paths", nil, "at least one path entry is required")
	}
	return nil
}
