// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig    `yaml:"store" mapstructure:"store"`
	Bulk       BulkConfig     `yaml:"bulk" mapstructure:"bulk"`
	Verify     VerifyConfig   `yaml:"verify" mapstructure:"verify"`
	Pipeline   PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Classify   ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Server     ServerConfig   `yaml:"server" mapstructure:"server"`
	Log        LogConfig      `yaml:"log" mapstructure:"log"`
	PolicyFile string         `yaml:"policy_file" mapstructure:"policy_file"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ChainPortal describes one chain's price-transparency endpoint.
type ChainPortal struct {
	Chain      string  `yaml:"chain" mapstructure:"chain"`
	URL        string  `yaml:"url" mapstructure:"url"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
}

// BulkConfig configures bulk catalog acquisition.
type BulkConfig struct {
	Portals     []ChainPortal `yaml:"portals" mapstructure:"portals"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxRecords  int           `yaml:"max_records" mapstructure:"max_records"`
}

// VerifyConfig configures the browser-verifier client.
type VerifyConfig struct {
	ServiceURL        string   `yaml:"service_url" mapstructure:"service_url"`
	Sites             []string `yaml:"sites" mapstructure:"sites"`
	DefaultSite       string   `yaml:"default_site" mapstructure:"default_site"`
	SearchTimeoutSecs int      `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	RatePerSec        float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	CacheTTLMins      int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// PipelineConfig bounds a reconciliation run.
type PipelineConfig struct {
	SelectRatio   float64 `yaml:"select_ratio" mapstructure:"select_ratio"`
	HardCap       int     `yaml:"hard_cap" mapstructure:"hard_cap"`
	VerifyWorkers int     `yaml:"verify_workers" mapstructure:"verify_workers"`
}

// ClassifyConfig configures the AI category fallback.
type ClassifyConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SearchTimeout returns the verifier call timeout as a duration.
func (c VerifyConfig) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSecs) * time.Second
}

// Timeout returns the bulk download timeout as a duration.
func (c BulkConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BASAROMETER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "basarometer.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("bulk.timeout_secs", 60)
	v.SetDefault("bulk.user_agent", "basarometer/2.0 (+https://basarometer.org)")
	v.SetDefault("bulk.rate_per_sec", 2.0)
	v.SetDefault("bulk.max_records", 50000)
	v.SetDefault("verify.search_timeout_secs", 30)
	v.SetDefault("verify.rate_per_sec", 0.5)
	v.SetDefault("verify.cache_ttl_mins", 30)
	v.SetDefault("verify.default_site", "shufersal.co.il")
	v.SetDefault("pipeline.select_ratio", 0.2)
	v.SetDefault("pipeline.hard_cap", 50)
	v.SetDefault("pipeline.verify_workers", 1)
	v.SetDefault("classify.enabled", false)
	v.SetDefault("classify.model", "claude-haiku-4-5-20251001")

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
