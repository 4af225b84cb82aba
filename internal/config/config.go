// Package config resolves the settings of the dedup CLI from flags,
// DEDUP_* environment variables and an optional dedup.toml file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "dedup"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "dedup"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DEDUP"
)

// Viper keys.
const (
	KeyDatabase       = "database"
	KeyLogLevel       = "log_level"
	KeySpoolThreshold = "spool_threshold"
)

// Config holds the resolved settings.
type Config struct {
	Database       string `mapstructure:"database"`
	LogLevel       string `mapstructure:"log_level"`
	SpoolThreshold string `mapstructure:"spool_threshold"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Database:       "./dedup.sqlite3",
		LogLevel:       "info",
		SpoolThreshold: "32 MiB",
	}
}

// Dir returns $XDG_CONFIG_HOME/dedup, falling back to ~/.config/dedup.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// New returns a viper instance with defaults, environment overrides and the
// config search path set up.
func New() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyDatabase, defaults.Database)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeySpoolThreshold, defaults.SpoolThreshold)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(".")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	return v
}

// Load reads the config file, if any, and returns the resolved settings.
// file selects an explicit config file; it must exist.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting parses.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("database path must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.SpoolBytes(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// SpoolBytes parses SpoolThreshold, e.g. "32 MiB" or "1048576".
func (c Config) SpoolBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.SpoolThreshold)
	if err != nil {
		return 0, fmt.Errorf("invalid spool threshold %q: %w", c.SpoolThreshold, err)
	}
	return int64(n), nil
}

// NewLogger returns the leveled logger every command writes diagnostics to.
func (c Config) NewLogger(w io.Writer) (*log.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: AppName,
	}), nil
}
