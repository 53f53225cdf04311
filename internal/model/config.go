package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all hanrei settings
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	VectorStore  VectorStoreConfig  `yaml:"vector_store" mapstructure:"vector_store"`
	Statute      StatuteConfig      `yaml:"statute" mapstructure:"statute"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Ranking      RankingConfig      `yaml:"ranking" mapstructure:"ranking"`
}

// HTTPConfig configures outbound requests to the statute-text API
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LLMConfig selects the completion provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// EmbeddingConfig selects the embedding provider.
// Dimensions must match the vector collection.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// VectorStoreConfig locates the sqlite-vec case index
type VectorStoreConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	ChunkSize int    `yaml:"chunk_size" mapstructure:"chunk_size"` // runes per ingested chunk
}

// StatuteConfig configures directory lookup and statute-text fetching
type StatuteConfig struct {
	DirectoryPath string `yaml:"directory_path" mapstructure:"directory_path"`
	APIBaseURL    string `yaml:"api_base_url" mapstructure:"api_base_url"`
	MaxCandidates int    `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// CacheConfig configures the statute-text cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig throttles statute-text API calls per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`             // batch questions in flight
	FetchWorkers int `yaml:"fetch_workers" mapstructure:"fetch_workers"` // statute candidates fetched in parallel
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	// Citations extracts and resolves statute citations after answering
	Citations bool `yaml:"citations" mapstructure:"citations"`
	// ShowStatuteText prints fetched statute text in terminal output
	ShowStatuteText bool `yaml:"show_statute_text" mapstructure:"show_statute_text"`
}

// RankingConfig is the default case-list ordering
type RankingConfig struct {
	Mode      string `yaml:"mode" mapstructure:"mode"`           // similarity, date
	Direction string `yaml:"direction" mapstructure:"direction"` // desc, asc
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".hanrei")

	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "hanrei/0.1 (+https://github.com/ppiankov/hanrei)",
			MaxBodyBytes: 20_000_000,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-ada-002",
			Dimensions: 1536,
			Timeout:    30,
		},
		VectorStore: VectorStoreConfig{
			Path:      filepath.Join(base, "cases.db"),
			ChunkSize: 1000,
		},
		Statute: StatuteConfig{
			DirectoryPath: filepath.Join(base, "name_num.json"),
			APIBaseURL:    "https://elaws.e-gov.go.jp/api/1/lawdata/",
			MaxCandidates: 5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			FetchWorkers: 5,
		},
		Output: OutputConfig{
			Citations:       true,
			ShowStatuteText: true,
		},
		Ranking: RankingConfig{
			Mode:      "similarity",
			Direction: "desc",
		},
	}
}
