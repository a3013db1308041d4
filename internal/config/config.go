// Package config loads process configuration from the environment and an
// optional .env file via viper, read once at process start.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration.
type Config struct {
	BasePath    string `mapstructure:"BASE_PATH"`
	Strict      bool   `mapstructure:"STRICT"`
	FHIRVersion string `mapstructure:"FHIR_VERSION"`
	Port        string `mapstructure:"PORT"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`
	Env         string `mapstructure:"ENV"`
}

// Load reads FHIRMAP_* environment variables (and a .env file if present)
// into a Config, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FHIRMAP")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("BASE_PATH", "./mappings")
	v.SetDefault("STRICT", true)
	v.SetDefault("FHIR_VERSION", "4.0.1")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("ENV", "development")

	for _, key := range []string{"BASE_PATH", "STRICT", "FHIR_VERSION", "PORT", "LOG_FORMAT", "ENV"} {
		_ = v.BindEnv(key)
	}

	_ = v.ReadInConfig() // .env is optional; ignore a missing file

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether ENV is "development".
func (c *Config) IsDev() bool { return c.Env == "development" }

// Validate checks invariants Load alone cannot express via defaults.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("BASE_PATH must not be empty")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", c.LogFormat)
	}
	return nil
}
