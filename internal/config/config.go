package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2330
	defaultEnv        = "development"

	defaultRequestTimeoutSeconds   = 60
	defaultBreakerFailureThreshold = 5
	defaultBreakerCooldownMinutes  = 10
	defaultActionsPerHour          = 120
	defaultQueueWorkers            = 4
)

// Load reads, defaults and validates the YAML config file.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg, path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration before any file is applied.
func Default() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		AI: AIConfig{
			RequestTimeoutSeconds:   defaultRequestTimeoutSeconds,
			BreakerFailureThreshold: defaultBreakerFailureThreshold,
			BreakerCooldownMinutes:  defaultBreakerCooldownMinutes,
			ActionsPerHour:          defaultActionsPerHour,
			QueueWorkers:            defaultQueueWorkers,
			GeminiRegion:            "us-central1",
			DefaultModels: map[string]string{
				"openai":            "gpt-4o-mini",
				"anthropic":         "claude-haiku-4-5-20251001",
				"gemini":            "gemini-1.5-pro",
				"openai-compatible": "gpt-4o-mini",
			},
		},
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.AI.RequestTimeoutSeconds <= 0 {
		cfg.AI.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if cfg.AI.QueueWorkers <= 0 {
		cfg.AI.QueueWorkers = defaultQueueWorkers
	}
	if cfg.AI.GeminiRegion == "" {
		cfg.AI.GeminiRegion = "us-central1"
	}
	if cfg.AI.DefaultModels == nil {
		cfg.AI.DefaultModels = Default().AI.DefaultModels
	}
}

func validate(cfg *AppConfig, path string) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return fmt.Errorf("dsn is required in %q", path)
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return fmt.Errorf("redis_url is required in %q", path)
	}
	if cfg.AI.BreakerCooldownMinutes < 0 {
		return fmt.Errorf("invalid ai.breaker_cooldown_minutes %d in %q", cfg.AI.BreakerCooldownMinutes, path)
	}
	if cfg.AI.ActionsPerHour < 0 {
		return fmt.Errorf("invalid ai.actions_per_hour %d in %q", cfg.AI.ActionsPerHour, path)
	}
	return nil
}
