package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/util"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

func newOpenAIClient(apiKey, baseURL, httpProxy, httpsProxy, noProxy string) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if httpProxy != "" || httpsProxy != "" {
		clientConfig.HTTPClient = util.NewHTTPClient(httpProxy, httpsProxy, noProxy)
	}
	return openai.NewClientWithConfig(clientConfig)
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: newOpenAIClient(config.APIKey, config.BaseURL, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models is the cheapest authenticated call
	if _, err := p.client.ListModels(ctx); err != nil {
		logging.Default().Warn("OpenAI API check failed", "error", err)
		return false
	}
	return true
}

// Complete generates a completion using OpenAI's Chat Completions API
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := resolveModel(req.Model, p.config.Model, openai.GPT4oMini)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Duration(p.config.timeoutOr(60))*time.Second)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   resolveMaxTokens(req.MaxTokens, p.config.MaxTokens),
		Temperature: openAITemperature(resolveTemperature(req.Temperature, p.config.Temperature)),
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &CompletionResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// minOpenAITemperature stands in for 0. The client omits a zero temperature
// and the API would then apply its default of 1.
const minOpenAITemperature float32 = 1e-6

func openAITemperature(t float32) float32 {
	if t <= 0 {
		return minOpenAITemperature
	}
	return t
}
