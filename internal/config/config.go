// Package config loads tlogg settings from defaults, an optional config
// file, TLOGG_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dori/tlogg/internal/db"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "TLOGG"

// Config holds the effective settings for one invocation
type Config struct {
	DataDir      string        `mapstructure:"data_dir"`
	LogLevel     string        `mapstructure:"log_level"`
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`
	LockTimeout  time.Duration `mapstructure:"lock_timeout"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	Theme        string        `mapstructure:"theme"`

	// ConfigFile is the file the settings were read from, if any
	ConfigFile string `mapstructure:"-"`
}

// DBPath returns the dataset file inside the data directory
func (c *Config) DBPath() string {
	return db.DBPath(c.DataDir)
}

// LockPath returns the session lock file inside the data directory
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "tlogg.lock")
}

// DefaultConfigDir returns the directory searched for config.{yaml,toml,json}
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "tlogg")
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		DataDir:      db.DefaultDataDir(),
		LogLevel:     "warn",
		BusyTimeout:  db.DefaultBusyTimeout,
		LockTimeout:  2 * time.Second,
		RetryBackoff: db.DefaultRetryBackoff,
		Theme:        "nord",
	}
}

// Options controls where Load looks for settings
type Options struct {
	// ConfigFile is an explicit config file; it must exist when set
	ConfigFile string
	// ConfigDirs are searched for a file named "config" when ConfigFile is empty
	ConfigDirs []string
	// Flags are bound by key name, e.g. a "data-dir" flag overrides data_dir
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"data-dir": "data_dir",
	"theme":    "theme",
}

// Load resolves the effective configuration
func Load(opts Options) (*Config, error) {
	v := viper.New()

	// Set defaults
	def := DefaultConfig()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("busy_timeout", def.BusyTimeout)
	v.SetDefault("lock_timeout", def.LockTimeout)
	v.SetDefault("retry_backoff", def.RetryBackoff)
	v.SetDefault("theme", def.Theme)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for flagName, key := range flagKeys {
			if f := opts.Flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
				}
			}
		}
	}

	// Read config file
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		dirs := opts.ConfigDirs
		if dirs == nil {
			dirs = []string{DefaultConfigDir()}
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return &Error{Field: "data_dir", Message: "must not be empty"}
	}
	if c.BusyTimeout < 0 {
		return &Error{Field: "busy_timeout", Message: "must not be negative"}
	}
	if c.LockTimeout <= 0 {
		return &Error{Field: "lock_timeout", Message: "must be positive"}
	}
	if c.RetryBackoff < 0 {
		return &Error{Field: "retry_backoff", Message: "must not be negative"}
	}
	return nil
}

// Error represents a configuration error
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
