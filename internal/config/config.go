// Package config loads application configuration and wires the logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	Grid     GridConfig     `yaml:"grid" mapstructure:"grid"`
	Analyzer AnalyzerConfig `yaml:"analyzer" mapstructure:"analyzer"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// GoogleConfig holds Places API settings.
type GoogleConfig struct {
	APIKey             string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL            string  `yaml:"base_url" mapstructure:"base_url"`
	RadiusM            int     `yaml:"radius_m" mapstructure:"radius_m"`
	RateLimit          float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	PageTokenDelayMS   int     `yaml:"page_token_delay_ms" mapstructure:"page_token_delay_ms"`
	MaxRetries         int     `yaml:"max_retries" mapstructure:"max_retries"`
	DetailsConcurrency int     `yaml:"details_concurrency" mapstructure:"details_concurrency"`
}

// GridConfig configures the hex grid.
type GridConfig struct {
	Resolution int `yaml:"resolution" mapstructure:"resolution"`
}

// AnalyzerConfig configures analysis output.
type AnalyzerConfig struct {
	TopCompetitors int `yaml:"top_competitors" mapstructure:"top_competitors"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.path", "prospect.db")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.radius_m", 500)
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("google.page_token_delay_ms", 2000)
	v.SetDefault("google.max_retries", 3)
	v.SetDefault("google.details_concurrency", 5)
	v.SetDefault("grid.resolution", 8)
	v.SetDefault("analyzer.top_competitors", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate(component string) error {
	switch component {
	case "google":
		if c.Google.APIKey == "" {
			return eris.New("config: google.api_key is required (set PROSPECT_GOOGLE_API_KEY)")
		}
	case "store":
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
