// Package app holds process configuration. Values come from the
// environment; an optional YAML file pointed at by CONFIG_FILE overrides
// whatever the environment provided.
package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pulsefit/coach-backend/internal/platform/envutil"
)

type ProviderConfig struct {
	Name         string `yaml:"name"`
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

type Config struct {
	LogMode string `yaml:"log_mode"`
	Port    string `yaml:"port"`

	JWTSecret         string `yaml:"jwt_secret"`
	CredentialsSecret string `yaml:"credentials_secret"`

	RedisAddr    string `yaml:"redis_addr"`
	EventChannel string `yaml:"event_channel"`

	OpenAIKey string `yaml:"openai_key"`

	AllowOrigins []string `yaml:"allow_origins"`

	TickInterval time.Duration `yaml:"tick_interval"`

	Providers []ProviderConfig `yaml:"providers"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		LogMode:           envutil.Str("LOG_MODE", "development"),
		Port:              envutil.Str("PORT", "8080"),
		JWTSecret:         envutil.Str("JWT_SECRET_KEY", ""),
		CredentialsSecret: envutil.Str("CREDENTIALS_SECRET", ""),
		RedisAddr:         envutil.Str("REDIS_ADDR", ""),
		EventChannel:      envutil.Str("EVENT_CHANNEL", "coach-events"),
		OpenAIKey:         envutil.Str("OPENAI_API_KEY", ""),
		TickInterval:      time.Duration(envutil.Int("TICK_INTERVAL_SECONDS", 3600)) * time.Second,
	}
	if origins := envutil.Str("ALLOW_ORIGINS", ""); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}

	if path := envutil.Str("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if cfg.CredentialsSecret == "" {
		return nil, fmt.Errorf("CREDENTIALS_SECRET is required")
	}
	return cfg, nil
}
