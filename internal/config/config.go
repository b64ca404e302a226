// Package config holds the typed application configuration, decoded from
// viper's merged file/env/flag state.
package config

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Reddit  RedditConfig  `mapstructure:"reddit"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Scout   ScoutConfig   `mapstructure:"scout"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
}

// LoggingConfig selects log level and profile.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"` // cli or structured
}

// RedditConfig controls the upstream JSON client.
type RedditConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Delay     time.Duration `mapstructure:"delay"`
	Jitter    time.Duration `mapstructure:"jitter"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LLMConfig gates and configures the plan-generation backend. An empty API
// key disables the LLM planning path regardless of Enabled.
type LLMConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScoutConfig bounds the pipeline.
type ScoutConfig struct {
	Budget         time.Duration `mapstructure:"budget"`
	Limit          int           `mapstructure:"limit"`
	MaxDiscovery   int           `mapstructure:"max_discovery"`
	ReplyLimit     int           `mapstructure:"reply_limit"`
	NicheThreshold int           `mapstructure:"niche_threshold"`
}

// StoreConfig configures the optional libsql-backed cache.
type StoreConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Path      string        `mapstructure:"path"`
	URL       string        `mapstructure:"url"`
	AuthToken string        `mapstructure:"auth_token"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SetDefaults installs default values on a viper instance. Called once by
// the root command before any config is read.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "cli")

	v.SetDefault("reddit.base_url", "https://www.reddit.com")
	v.SetDefault("reddit.user_agent", "threadlens/1.0 (research bot)")
	v.SetDefault("reddit.delay", "3s")
	v.SetDefault("reddit.jitter", "500ms")
	v.SetDefault("reddit.timeout", "30s")

	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("scout.budget", "360s")
	v.SetDefault("scout.limit", 20)
	v.SetDefault("scout.max_discovery", 30)
	v.SetDefault("scout.reply_limit", 5)
	v.SetDefault("scout.niche_threshold", 1000)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "")
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")
	v.SetDefault("store.ttl", "24h")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "420s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// FromViper decodes the merged viper state into a typed Config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
