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
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Relay    RelayConfig    `yaml:"relay" mapstructure:"relay"`
	Demo     DemoConfig     `yaml:"demo" mapstructure:"demo"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Profiles ProfilesConfig `yaml:"profiles" mapstructure:"profiles"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures the direct HTTP page source.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int `yaml:"max_retries" mapstructure:"max_retries"`
}

// RelayConfig holds reader relay settings. The relay is skipped when
// no key is configured.
type RelayConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// DemoConfig configures the synthetic offline source.
type DemoConfig struct {
	Enabled         bool `yaml:"enabled" mapstructure:"enabled"`
	ListingsPerPage int  `yaml:"listings_per_page" mapstructure:"listings_per_page"`
}

// PipelineConfig configures run pacing and batching.
type PipelineConfig struct {
	PageDelayMS    int  `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	SiteDelayMS    int  `yaml:"site_delay_ms" mapstructure:"site_delay_ms"`
	BackoffEvery   int  `yaml:"backoff_every" mapstructure:"backoff_every"`
	BackoffDelayMS int  `yaml:"backoff_delay_ms" mapstructure:"backoff_delay_ms"`
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`
	Workers        int  `yaml:"workers" mapstructure:"workers"`
	Dedup          bool `yaml:"dedup" mapstructure:"dedup"`
}

// ProfilesConfig points at an optional selector profile file merged
// over the built-in directory profiles.
type ProfilesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the control API server.
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
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("relay.base_url", "https://r.jina.ai")
	v.SetDefault("demo.listings_per_page", 20)
	v.SetDefault("pipeline.page_delay_ms", 2000)
	v.SetDefault("pipeline.site_delay_ms", 1000)
	v.SetDefault("pipeline.backoff_every", 10)
	v.SetDefault("pipeline.backoff_delay_ms", 10000)
	v.SetDefault("pipeline.batch_size", 10)
	v.SetDefault("pipeline.workers", 1)

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
