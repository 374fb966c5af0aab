package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables read during Load
// (e.g. FLASHMARK_STORAGE_BACKEND overrides storage.backend).
const envPrefix = "FLASHMARK"

// Load reads configuration from an optional config file, environment
// variables, and the given flag set (which may be nil). Precedence, from
// lowest to highest: defaults, config file, environment, flags.
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8488)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.path", "flashmark.json")
	v.SetDefault("storage.url", "")
	v.SetDefault("storage.max_backups", 10)

	// Optional config file: ./flashmark.yaml or ~/.config/flashmark/
	v.SetConfigName("flashmark")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/flashmark")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with FLASHMARK_ prefix
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Command-line flags take highest precedence
	if flags != nil {
		bindings := map[string]string{
			"server.port":         "port",
			"server.log_level":    "log-level",
			"storage.backend":     "store",
			"storage.path":        "data",
			"storage.url":         "database-url",
			"storage.max_backups": "max-backups",
		}
		for key, name := range bindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
