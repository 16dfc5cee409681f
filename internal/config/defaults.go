package config

import (
	"github.com/mrz1836/stepwire/internal/constants"
)

// Log file defaults.
const (
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 5
	defaultLogMaxAgeDays = 30
)

// DefaultMetricsNamespace prefixes metric names when none is configured.
const DefaultMetricsNamespace = "stepwire"

// DefaultConfig returns a new Config with default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Locale: constants.DefaultLocale,
		Steps: StepsConfig{
			// Paths: empty means only compiled-in Go steps are loaded.
			Paths:          nil,
			DefaultTimeout: constants.DefaultStepTimeout,
		},
		Execution: ExecutionConfig{
			PoolSize: constants.DefaultPoolSize,
			Parallel: constants.DefaultParallelism,
			Strict:   false,
		},
		Log: LogConfig{
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}
