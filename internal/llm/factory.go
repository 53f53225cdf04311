package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/hanrei/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai", "":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// NewEmbedder creates an embedding provider based on configuration
func NewEmbedder(config EmbedderConfig) (Embedder, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "":
		return NewOpenAIEmbedder(config)

	case "ollama":
		return NewOllamaEmbedder(config)

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:    llmConfig.Provider,
		Model:       llmConfig.Model,
		APIKey:      llmConfig.APIKey,
		BaseURL:     llmConfig.BaseURL,
		Timeout:     llmConfig.Timeout,
		MaxTokens:   llmConfig.MaxTokens,
		Temperature: llmConfig.Temperature,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}
}

// EmbedderConfigFromModel converts model.EmbeddingConfig to llm.EmbedderConfig
func EmbedderConfigFromModel(embConfig model.EmbeddingConfig, httpConfig model.HTTPConfig) EmbedderConfig {
	return EmbedderConfig{
		Provider:   embConfig.Provider,
		Model:      embConfig.Model,
		APIKey:     embConfig.APIKey,
		BaseURL:    embConfig.BaseURL,
		Dimensions: embConfig.Dimensions,
		Timeout:    embConfig.Timeout,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}
