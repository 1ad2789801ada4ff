package config

import "time"

// Config holds the resolved aimerge settings. A single value is built once
// at startup and passed into the orchestrator and resolution client so
// tests can inject deterministic settings.
type Config struct {
	// APIKey authenticates against the completion service. Empty means
	// no AI assistance is available.
	APIKey string `json:"api_key"`

	// Model is the completion model requested for conflict resolution.
	Model string `json:"model"`

	// MaxRetries bounds how many times a transient service failure is
	// retried per conflict region.
	MaxRetries int `json:"max_retries"`

	// TimeoutSeconds bounds each individual completion call.
	TimeoutSeconds int `json:"timeout_seconds"`

	// BackoffInitialMS is the first retry delay; it doubles per attempt.
	BackoffInitialMS int `json:"backoff_initial_ms"`

	// ContextLines is how many unconflicted lines around a region are
	// included in the prompt for disambiguation.
	ContextLines int `json:"context_lines"`

	// APIBaseURL points at an OpenAI-compatible endpoint.
	APIBaseURL string `json:"api_base_url"`
}

// Timeout returns the per-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// InitialBackoff returns the first retry delay.
func (c Config) InitialBackoff() time.Duration {
	if c.BackoffInitialMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.BackoffInitialMS) * time.Millisecond
}

// HasAPIKey reports whether a completion service credential is configured.
func (c Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:            "gpt-4",
		MaxRetries:       3,
		TimeoutSeconds:   30,
		BackoffInitialMS: 500,
		ContextLines:     3,
		APIBaseURL:       "https://api.openai.com/v1",
	}
}
