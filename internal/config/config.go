package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Clock   ClockConfig   `yaml:"clock" mapstructure:"clock"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Suggest SuggestConfig `yaml:"suggest" mapstructure:"suggest"`
	Intake  IntakeConfig  `yaml:"intake" mapstructure:"intake"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ClockConfig controls how "today" is derived.
type ClockConfig struct {
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// ScoringConfig points at an optional YAML rule table.
type ScoringConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// SuggestConfig configures the daily suggestion selector.
type SuggestConfig struct {
	CatalogFile string `yaml:"catalog_file" mapstructure:"catalog_file"`
	Max         int    `yaml:"max" mapstructure:"max"`
}

// IntakeConfig configures manual lead entry.
type IntakeConfig struct {
	PhoneRegion string `yaml:"phone_region" mapstructure:"phone_region"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port        int             `yaml:"port" mapstructure:"port"`
	CORSOrigins []string        `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadMB int             `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RateLimit   RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig is a token bucket: Requests per Interval.
type RateLimitConfig struct {
	Requests int           `yaml:"requests" mapstructure:"requests"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("clock.timezone", "Local")
	v.SetDefault("scoring.rules_file", "")
	v.SetDefault("suggest.catalog_file", "")
	v.SetDefault("suggest.max", 5)
	v.SetDefault("intake.phone_region", "IN")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.rate_limit.requests", 60)
	v.SetDefault("server.rate_limit.interval", time.Minute)

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

// Location resolves the configured timezone.
func (c ClockConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load timezone %q", c.Timezone)
	}
	return loc, nil
}

// Validate checks the settings a command mode depends on.
// Modes: "score", "suggest", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	if _, err := c.Clock.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("clock.timezone %q is not a known zone", c.Clock.Timezone))
	}

	switch mode {
	case "score":
		if c.Intake.PhoneRegion == "" {
			errs = append(errs, "intake.phone_region is required")
		}
	case "suggest":
		if c.Suggest.Max < 1 {
			errs = append(errs, "suggest.max must be >= 1")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be 1-65535 (got %d)", c.Server.Port))
		}
		if c.Server.MaxUploadMB <= 0 {
			errs = append(errs, "server.max_upload_mb must be > 0")
		}
		if c.Server.RateLimit.Requests < 0 {
			errs = append(errs, "server.rate_limit.requests must be >= 0")
		}
		if c.Suggest.Max < 1 {
			errs = append(errs, "suggest.max must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
