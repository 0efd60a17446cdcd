package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int      `yaml:"port"`
	DSN            string   `yaml:"dsn"` // MySQL DSN
	RedisURL       string   `yaml:"redis_url"`
	Env            string   `yaml:"env"` // "development" | "production"
	JWTSecret      string   `yaml:"jwt_secret"`
	SecretKey      string   `yaml:"secret_key"` // hex, 32 bytes; seals tenant API credentials
	AllowedOrigins []string `yaml:"allowed_origins"`
	AI             AIConfig `yaml:"ai"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// AIConfig is the process-level configuration of the AI pipeline.
type AIConfig struct {
	// MockMode forces the mock gateway for every tenant, regardless of
	// provider settings. Used for local development and CI.
	MockMode bool `yaml:"mock_mode"`

	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// PromptVersions maps task name → active prompt version string.
	PromptVersions map[string]string `yaml:"prompt_versions"`
	// DefaultModels maps provider name → model used when the tenant does
	// not override it.
	DefaultModels map[string]string `yaml:"default_models"`

	BreakerFailureThreshold int `yaml:"breaker_failure_threshold"`
	BreakerCooldownMinutes  int `yaml:"breaker_cooldown_minutes"`

	// ActionsPerHour bounds mutating AI API calls per tenant per hour.
	ActionsPerHour int `yaml:"actions_per_hour"`

	QueueWorkers int `yaml:"queue_workers"`

	GeminiProject string `yaml:"gemini_project"`
	GeminiRegion  string `yaml:"gemini_region"`
}

// RequestTimeout returns the provider call timeout.
func (c AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// BreakerCooldown returns the circuit breaker cooldown window.
func (c AIConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownMinutes) * time.Minute
}

// PromptVersion returns the active prompt version for a task, or the
// task-derived fallback when unconfigured.
func (c AIConfig) PromptVersion(task string) string {
	if v, ok := c.PromptVersions[task]; ok && v != "" {
		return v
	}
	return task + "-v1"
}

// DefaultModel returns the configured default model for a provider.
func (c AIConfig) DefaultModel(provider string) string {
	return c.DefaultModels[provider]
}
