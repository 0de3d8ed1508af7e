package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the service configuration.
type Config struct {
	DatabaseURL string `mapstructure:"database_url"`
	ListenAddr  string `mapstructure:"listen_addr"`
	CORSOrigin  string `mapstructure:"cors_origin"`
	// InvokerURL is the base URL of the hosted integration backend. Empty
	// disables the remote invoker; service-style integrations then fail
	// at invocation time.
	InvokerURL string `mapstructure:"invoker_url"`
	// SeedFile optionally points at a workflow document imported on
	// startup, in addition to the built-in sample.
	SeedFile string `mapstructure:"seed_file"`
}

// Load reads configuration from config.yaml (working directory or ./config)
// and the environment. Environment variables use the upper-cased key names
// (DATABASE_URL, LISTEN_ADDR, ...).
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	for _, key := range []string{"database_url", "listen_addr", "cors_origin", "invoker_url", "seed_file"} {
		_ = viper.BindEnv(key)
	}

	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("cors_origin", "http://localhost:3003")

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; the environment can supply everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return &cfg, nil
}
