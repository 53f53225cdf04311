package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Embedder turns texts into vectors. Result i belongs to texts[i].
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the expected vector length; 0 when unknown
	Dimensions() int
}

// EmbedderConfig holds embedding provider configuration
type EmbedderConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
	Timeout    int // seconds

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// OpenAIEmbedder embeds texts with the OpenAI embeddings endpoint
type OpenAIEmbedder struct {
	client *openai.Client
	config EmbedderConfig
}

// NewOpenAIEmbedder creates a new OpenAI embedder
func NewOpenAIEmbedder(config EmbedderConfig) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = string(openai.AdaEmbeddingV2)
	}

	return &OpenAIEmbedder{
		client: newOpenAIClient(config.APIKey, config.BaseURL, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config: config,
	}, nil
}

// Dimensions returns the configured vector length
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Embed sends all texts in one request
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	timeout := e.config.Timeout
	if timeout <= 0 {
		timeout = 30
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	req := openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.config.Model),
	}
	// Only the text-embedding-3 family accepts a dimensions parameter
	if strings.HasPrefix(e.config.Model, "text-embedding-3") && e.config.Dimensions > 0 {
		req.Dimensions = e.config.Dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("OpenAI embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// OllamaEmbedder embeds texts with a local Ollama server, one request per text
type OllamaEmbedder struct {
	baseURL    string
	httpClient *http.Client
	config     EmbedderConfig
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaEmbedder creates a new Ollama embedder
func NewOllamaEmbedder(config EmbedderConfig) (*OllamaEmbedder, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama embedding model must be specified (e.g., nomic-embed-text)")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	return &OllamaEmbedder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: newOllamaClient(Config{
			Timeout:    config.Timeout,
			HTTPProxy:  config.HTTPProxy,
			HTTPSProxy: config.HTTPSProxy,
			NoProxy:    config.NoProxy,
		}),
		config: config,
	}, nil
}

// Dimensions returns the configured vector length
func (e *OllamaEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Embed requests one embedding per text, in order
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		var resp ollamaEmbeddingResponse
		req := ollamaEmbeddingRequest{Model: e.config.Model, Prompt: text}
		if err := postJSON(ctx, e.httpClient, e.baseURL+"/api/embeddings", req, &resp); err != nil {
			return nil, fmt.Errorf("ollama embeddings error (input %d): %w", i, err)
		}
		if len(resp.Embedding) == 0 {
			return nil, fmt.Errorf("ollama returned an empty embedding (input %d)", i)
		}

		vec := make([]float32, len(resp.Embedding))
		for j, v := range resp.Embedding {
			vec[j] = float32(v)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
