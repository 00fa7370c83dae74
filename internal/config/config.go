// Package config resolves overproofed settings from flags, environment,
// an optional config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/overproofed/internal/values"
)

// EnvPrefix is prepended to every environment variable, e.g.
// OVERPROOFED_CAPACITY.
const EnvPrefix = "OVERPROOFED"

// DefaultCapacity is the value store capacity used when none is configured.
const DefaultCapacity = 1024

// Keys shared by flags, environment and config files.
const (
	KeyConfig   = "config"
	KeyCapacity = "capacity"
	KeyDB       = "db"
	KeyFormat   = "format"
	KeyVerbose  = "verbose"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config is the resolved configuration.
type Config struct {
	// Capacity is the default value store capacity for recipes built by the
	// CLI. A scenario may override it.
	Capacity int `mapstructure:"capacity"`
	// DB is the run log database path. Empty disables the run log.
	DB      string `mapstructure:"db"`
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "config file (yaml, toml or json)")
	fs.Int(KeyCapacity, DefaultCapacity, "value store capacity")
	fs.String(KeyDB, "", "run log database path (empty disables the run log)")
	fs.String(KeyFormat, "text", "output format (json|text)")
	fs.BoolP(KeyVerbose, "v", false, "verbose output")
}

// Load resolves the configuration. fs may be nil, in which case only the
// environment and defaults are consulted.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyCapacity, DefaultCapacity)
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, key := range []string{KeyConfig, KeyCapacity, KeyDB, KeyFormat, KeyVerbose} {
			if f := fs.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %q: %w", key, err)
				}
			}
		}
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks field ranges.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("%w: format %q must be one of %v", ErrInvalid, c.Format, ValidFormats)
	}
	if c.Capacity < 1 || c.Capacity > values.MaxCapacity {
		return fmt.Errorf("%w: capacity %d must be between 1 and %d", ErrInvalid, c.Capacity, values.MaxCapacity)
	}
	return nil
}
