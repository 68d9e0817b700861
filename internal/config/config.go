package config

import (
	"github.com/spf13/viper"
)

// Config carries the process settings for the scheduling service.
type Config struct {
	Port             string  `mapstructure:"port"`
	DatabaseURL      string  `mapstructure:"database_url"`
	DefaultScale     string  `mapstructure:"default_scale"`
	RowHeight        float64 `mapstructure:"row_height"`
	ProjectionWorker int     `mapstructure:"projection_workers"`
}

// Default returns the built-in settings used when no config file or
// environment override is present.
func Default() Config {
	return Config{
		Port:         "8080",
		DefaultScale: "month",
		RowHeight:    40,
		// 0 projection workers lets the service size the pool itself.
	}
}

// Load reads settings from an optional YAML file plus GANTT_* env
// overrides. With an empty path it searches for gantt.yaml in the
// working directory and silently falls back to defaults when absent;
// an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetDefault("port", cfg.Port)
	v.SetDefault("database_url", cfg.DatabaseURL)
	v.SetDefault("default_scale", cfg.DefaultScale)
	v.SetDefault("row_height", cfg.RowHeight)
	v.SetDefault("projection_workers", cfg.ProjectionWorker)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gantt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("GANTT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return Config{}, err
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
