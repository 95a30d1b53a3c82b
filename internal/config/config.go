package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/m-kr/cms-nano/internal/logging"
)

// EnvPrefix namespaces environment overrides, e.g. CMS_NANO_API_BASE_URL.
const EnvPrefix = "CMS_NANO"

// Config represents the cms-nano configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Listing ListingConfig `mapstructure:"listing"`
	Log     LogConfig     `mapstructure:"log"`
	Mock    MockConfig    `mapstructure:"mock"`
	Schema  SchemaConfig  `mapstructure:"schema"`
}

// APIConfig points the client at the remote API
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ListingConfig seeds the listing cursor
type ListingConfig struct {
	ItemsPerPage int    `mapstructure:"items_per_page"`
	Sort         string `mapstructure:"sort"`
}

// LogConfig selects the logger level
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MockConfig configures the in-memory API server
type MockConfig struct {
	Addr string `mapstructure:"addr"`
	Seed bool   `mapstructure:"seed"`
}

// SchemaConfig selects the model declarations. Models is a file, directory
// or http(s) URL; the bundled declarations are used when empty.
type SchemaConfig struct {
	Models string `mapstructure:"models"`
}

// Load reads cms-nano.yaml from the working directory or
// $HOME/.config/cms-nano, or configFile when given, then applies environment
// overrides. A missing default config file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("listing.items_per_page", 10)
	v.SetDefault("listing.sort", "-updatedAt")
	v.SetDefault("log.level", "info")
	v.SetDefault("mock.addr", ":3000")
	v.SetDefault("mock.seed", true)
	v.SetDefault("schema.models", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cms-nano")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cms-nano")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an absolute http(s) url, got: %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got: %s", cfg.API.Timeout)
	}
	if cfg.Listing.ItemsPerPage < 1 {
		return fmt.Errorf("listing.items_per_page must be positive, got: %d", cfg.Listing.ItemsPerPage)
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level must be one of debug, info, warn, warning, error, got: %s", cfg.Log.Level)
	}
	return nil
}
