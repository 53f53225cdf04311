// Package llm wraps the completion and embedding providers behind small interfaces.
package llm

import (
	"context"
)

// Completer produces a single text completion
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Provider defines the interface for LLM providers
type Provider interface {
	Completer

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one system+user exchange
type CompletionRequest struct {
	// System is the optional system instruction
	System string

	// Prompt is the user message, sent verbatim
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length; 0 uses the configured value
	MaxTokens int

	// Temperature overrides the configured value when positive
	Temperature float32
}

// CompletionResponse contains the generated text
type CompletionResponse struct {
	// Text is the trimmed completion
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature used when a request does not set one explicitly
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

func (c Config) timeoutOr(def int) int {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return def
}

func resolveModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func resolveMaxTokens(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 1000
}

func resolveTemperature(requested, configured float32) float32 {
	if requested > 0 {
		return requested
	}
	return configured
}
