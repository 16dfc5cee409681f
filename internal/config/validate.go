package config

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/errors"
)

// maxPoolSize caps execution.pool_size; every slot may hold a goroutine.
const maxPoolSize = 1024

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - locale must be a valid BCP 47 tag
//   - steps.default_timeout must not be negative
//   - steps.paths entries must not be blank
//   - execution.pool_size must be between 1 and 1024
//   - execution.parallel must be at least 1
//   - log.level must be a zerolog level name
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if _, err := language.Parse(cfg.Locale); err != nil {
		return errors.Wrapf(errors.ErrConfigInvalidLocale, "locale %q", cfg.Locale)
	}

	if err := validateStepsConfig(&cfg.Steps); err != nil {
		return err
	}

	if err := validateExecutionConfig(&cfg.Execution); err != nil {
		return err
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil || cfg.Log.Level == "" {
		return errors.Wrapf(errors.ErrConfigInvalidLog, "log.level %q", cfg.Log.Level)
	}

	return nil
}

// validateStepsConfig checks step-loading configuration values.
func validateStepsConfig(cfg *StepsConfig) error {
	if cfg.DefaultTimeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidSteps,
			"steps.default_timeout cannot be negative, got %s", cfg.DefaultTimeout)
	}

	for i, p := range cfg.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.Wrapf(errors.ErrConfigInvalidSteps,
				"steps.paths[%d] must not be empty", i)
		}
	}

	return nil
}

// validateExecutionConfig checks execution configuration values.
func validateExecutionConfig(cfg *ExecutionConfig) error {
	if cfg.PoolSize < 1 || cfg.PoolSize > maxPoolSize {
		return errors.Wrapf(errors.ErrConfigInvalidExecution,
			"execution.pool_size must be between 1 and %d, got %d", maxPoolSize, cfg.PoolSize)
	}

	if cfg.Parallel < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidExecution,
			"execution.parallel must be at least 1, got %d", cfg.Parallel)
	}

	return nil
}
