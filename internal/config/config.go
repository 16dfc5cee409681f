// Package config provides configuration management for stepwire with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (STEPWIRE_* prefix)
//  3. Project config (.stepwire/config.yaml)
//  4. Global config (~/.stepwire/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import (
	"time"

	"golang.org/x/text/language"

	"github.com/mrz1836/stepwire/internal/errors"
)

// Config is the root configuration structure for stepwire.
type Config struct {
	// Locale is the BCP 47 tag step arguments are converted with. It decides
	// the decimal and grouping separators of numbers.
	// Default: "en"
	Locale string `yaml:"locale" mapstructure:"locale"`

	// Steps contains settings for loading step definitions.
	Steps StepsConfig `yaml:"steps" mapstructure:"steps"`

	// Execution contains settings for running scenarios.
	Execution ExecutionConfig `yaml:"execution" mapstructure:"execution"`

	// Log contains settings for the CLI log file.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Metrics contains settings for run metrics.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// StepsConfig contains settings for loading step definitions.
type StepsConfig struct {
	// Paths lists YAML step files, directories of step files, or globs.
	// Relative paths are resolved against the working directory.
	Paths []string `yaml:"paths" mapstructure:"paths"`

	// DefaultTimeout is the budget of every definition that does not set its
	// own. Zero means unbounded.
	// Default: 0
	DefaultTimeout time.Duration `yaml:"default_timeout" mapstructure:"default_timeout"`
}

// ExecutionConfig contains settings for running scenarios.
type ExecutionConfig struct {
	// PoolSize bounds how many bounded-time step calls may be in flight,
	// including calls that have outlived their budget.
	// Default: 16
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size"`

	// Parallel is the number of scenarios run at once.
	// Default: 1
	Parallel int `yaml:"parallel" mapstructure:"parallel"`

	// Strict makes undefined and pending steps fail the run.
	// Default: false
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// LogConfig contains settings for the rotating CLI log file.
type LogConfig struct {
	// Level is the minimum level written to the log file.
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// MaxSizeMB is the size at which the log file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 5
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	// Default: 30
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// MetricsConfig contains settings for run metrics.
type MetricsConfig struct {
	// Textfile, when set, is where the run's Prometheus metrics are written
	// after the run, in the text exposition format.
	Textfile string `yaml:"textfile" mapstructure:"textfile"`

	// Namespace prefixes every metric name.
	// Default: "stepwire"
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// LocaleTag parses Locale.
func (c *Config) LocaleTag() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, errors.Wrapf(errors.ErrConfigInvalidLocale, "locale %q: %v", c.Locale, err)
	}
	return tag, nil
}
