package config

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/errors"
)

// layer is one config file in the precedence chain. Later layers win.
type layer struct {
	name string
	path string
	// required makes a missing file an error.
	required bool
}

// Load reads the built-in defaults, ~/.stepwire/config.yaml,
// .stepwire/config.yaml and STEPWIRE_* environment variables, each
// overriding the one before. Missing config files are skipped.
func Load(ctx context.Context) (*Config, error) {
	var layers []layer
	if global, err := GlobalConfigPath(); err == nil {
		layers = append(layers, layer{name: "global", path: global})
	}
	layers = append(layers, layer{name: "project", path: ProjectConfigPath()})
	return load(ctx, layers...)
}

// LoadFile reads the defaults, path and the environment. It backs --config,
// so a missing file is an error.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	return load(ctx, layer{name: "config", path: path, required: true})
}

// LoadFromPaths is Load with explicit file locations. An empty path skips
// that layer.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	return load(ctx,
		layer{name: "global", path: globalConfigPath},
		layer{name: "project", path: projectConfigPath},
	)
}

func load(ctx context.Context, layers ...layer) (*Config, error) {
	v := newViper()
	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()

	for _, l := range layers {
		if l.path == "" {
			continue
		}
		if _, err := os.Stat(l.path); err != nil {
			if l.required {
				return nil, errors.Wrapf(os.ErrNotExist, "config file %s", l.path)
			}
			continue
		}
		v.SetConfigFile(l.path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read %s config: %s", l.name, l.path)
		}
		logger.Debug().Str("layer", l.name).Str("path", l.path).Msg("config file merged")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHooks()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	logger.Debug().
		Str("locale", cfg.Locale).
		Strs("steps.paths", cfg.Steps.Paths).
		Int("execution.pool_size", cfg.Execution.PoolSize).
		Int("execution.parallel", cfg.Execution.Parallel).
		Msg("configuration loaded")
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal. Keys must match the yaml tags.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	for key, value := range map[string]any{
		"locale":                d.Locale,
		"steps.paths":           []string{},
		"steps.default_timeout": d.Steps.DefaultTimeout.String(),
		"execution.pool_size":   d.Execution.PoolSize,
		"execution.parallel":    d.Execution.Parallel,
		"execution.strict":      d.Execution.Strict,
		"log.level":             d.Log.Level,
		"log.max_size_mb":       d.Log.MaxSizeMB,
		"log.max_backups":       d.Log.MaxBackups,
		"log.max_age_days":      d.Log.MaxAgeDays,
		"metrics.textfile":      "",
		"metrics.namespace":     d.Metrics.Namespace,
	} {
		v.SetDefault(key, value)
	}
}

// decodeHooks decodes durations from strings such as "250ms" and lists
// given through the environment from comma-separated strings.
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Apply returns a copy of cfg with the non-zero fields of overrides laid on
// top, validated. Step paths from overrides are appended. A false Strict
// cannot switch strict mode off.
func Apply(cfg, overrides *Config) (*Config, error) {
	merged := *cfg
	merged.Steps.Paths = slices.Clone(cfg.Steps.Paths)

	if o := overrides; o != nil {
		merged.Steps.Paths = append(merged.Steps.Paths, o.Steps.Paths...)
		overrideString(&merged.Locale, o.Locale)
		overrideString(&merged.Log.Level, o.Log.Level)
		overrideString(&merged.Metrics.Textfile, o.Metrics.Textfile)
		if o.Steps.DefaultTimeout != 0 {
			merged.Steps.DefaultTimeout = o.Steps.DefaultTimeout
		}
		if o.Execution.PoolSize != 0 {
			merged.Execution.PoolSize = o.Execution.PoolSize
		}
		if o.Execution.Parallel != 0 {
			merged.Execution.Parallel = o.Execution.Parallel
		}
		merged.Execution.Strict = merged.Execution.Strict || o.Execution.Strict
	}

	if err := Validate(&merged); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return &merged, nil
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
