// Package config loads application configuration from a YAML file and
// ECOCENSUS_-prefixed environment variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Planet-Detroit/ecocensus/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	GDELT     GDELTConfig     `yaml:"gdelt" mapstructure:"gdelt"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// GDELTConfig configures the GDELT DOC API backend.
type GDELTConfig struct {
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// GoogleConfig holds Google Custom Search credentials and quota.
type GoogleConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	EngineID   string `yaml:"engine_id" mapstructure:"engine_id"`
	DailyQuota int64  `yaml:"daily_quota" mapstructure:"daily_quota"`
}

// AnthropicConfig holds Anthropic API settings for the agent backend.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CollectConfig configures the collection run itself.
type CollectConfig struct {
	QueryContext     string        `yaml:"query_context" mapstructure:"query_context"`
	Backends         []string      `yaml:"backends" mapstructure:"backends"`
	PerBackendLimit  int           `yaml:"per_backend_limit" mapstructure:"per_backend_limit"`
	BackendDelay     time.Duration `yaml:"backend_delay" mapstructure:"backend_delay"`
	OrgDelay         time.Duration `yaml:"org_delay" mapstructure:"org_delay"`
	AgentDomains     []string      `yaml:"agent_domains" mapstructure:"agent_domains"`
	AgentPerDomain   int           `yaml:"agent_per_domain" mapstructure:"agent_per_domain"`
	AgentSearchDelay time.Duration `yaml:"agent_search_delay" mapstructure:"agent_search_delay"`
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
	v.SetEnvPrefix("ECOCENSUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about, so
	// credentials without defaults must be bound explicitly or their
	// environment variables are silently ignored.
	for _, key := range []string{
		"store.database_url",
		"google.key",
		"google.engine_id",
		"anthropic.key",
	} {
		_ = v.BindEnv(key)
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("gdelt.base_url", "https://api.gdeltproject.org/api/v2/doc/doc")
	v.SetDefault("gdelt.rate_per_sec", 0.2)
	v.SetDefault("google.daily_quota", 100)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4000)
	v.SetDefault("collect.query_context", "Michigan")
	v.SetDefault("collect.backends", []string{"gdelt"})
	v.SetDefault("collect.per_backend_limit", 10)
	v.SetDefault("collect.backend_delay", "1s")
	v.SetDefault("collect.org_delay", "3s")
	v.SetDefault("collect.agent_per_domain", 3)
	v.SetDefault("collect.agent_search_delay", "2s")

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
