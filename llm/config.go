package llm

import (
	"time"

	"github.com/kbukum/minutes/resilience"
)

// Config holds configuration for creating a model adapter.
// The Dialect field selects the backend mapping.
type Config struct {
	// Enabled turns model-backed extraction on. When false no adapter is built.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Name identifies this adapter instance in logs and health output.
	Name string `mapstructure:"name" yaml:"name"`

	// Dialect selects the backend mapping (e.g., "ollama", "openai").
	Dialect string `mapstructure:"dialect" yaml:"dialect" validate:"required_if=Enabled true"`

	// BaseURL is the backend's API base URL (e.g., "http://localhost:11434").
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`

	// Model is the default model (e.g., "qwen2.5:1.5b").
	Model string `mapstructure:"model" yaml:"model"`

	// Temperature is the default sampling temperature.
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens is the default maximum tokens for responses. 0 means backend default.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gte=0"`

	// Timeout bounds a single HTTP attempt. Defaults to 120s.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// APIKey is sent as a Bearer token when set.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`

	// Retry configures retry behavior for failed requests.
	Retry *resilience.RetryConfig `mapstructure:"retry" yaml:"retry"`

	// CircuitBreaker configures circuit breaker protection.
	CircuitBreaker *resilience.CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`

	// Bulkhead caps concurrent calls to the backend.
	Bulkhead *resilience.BulkheadConfig `mapstructure:"bulkhead" yaml:"bulkhead"`
}

// applyDefaults sets default values for unset config fields.
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Name == "" && c.Dialect != "" {
		c.Name = c.Dialect + "-llm"
	}
}
