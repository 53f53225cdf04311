package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/hanrei/internal/cache"
	"github.com/ppiankov/hanrei/internal/citation"
	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/model"
	"github.com/ppiankov/hanrei/internal/retrieval"
	"github.com/ppiankov/hanrei/internal/statute"
	"github.com/ppiankov/hanrei/internal/util"
	"github.com/ppiankov/hanrei/internal/vectorstore"
	"github.com/ppiankov/hanrei/internal/worker"
)

// NewPipeline wires the production pipeline from configuration: the LLM
// provider, the embedding-backed case index, the statute directory and the
// cached, rate-limited statute-text fetcher. A missing statute directory
// degrades citation resolution to "no match" instead of failing.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	logger := logging.Default()

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	embedder, err := llm.NewEmbedder(llm.EmbedderConfigFromModel(cfg.Embedding, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}

	store, err := vectorstore.New(cfg.VectorStore.Path, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("open case index: %w", err)
	}

	orchestrator := retrieval.NewOrchestrator(vectorstore.NewIndex(store, embedder), provider, cfg.LLM.Model)
	extractor := citation.NewExtractor(provider, cfg.LLM.Model)
	resolver := citation.NewResolver(
		LoadDirectory(cfg.Statute.DirectoryPath, logger),
		NewStatuteFetcher(cfg),
		citation.ResolverConfig{
			MaxCandidates: cfg.Statute.MaxCandidates,
			Workers:       cfg.Concurrency.FetchWorkers,
			Logger:        logger,
		},
	)

	p := New(cfg, orchestrator, extractor, resolver, logger)
	p.closers = append(p.closers, store.Close)
	return p, nil
}

// LoadDirectory loads the statute directory, returning nil (an empty
// directory) when it cannot be read
func LoadDirectory(path string, logger *slog.Logger) *statute.Directory {
	dir, err := statute.LoadDirectoryFile(path)
	if err != nil {
		logger.Warn("Statute directory unavailable; citations will not be resolved", "path", path, "error", err)
		return nil
	}
	logger.Debug("Loaded statute directory", "path", path, "entries", dir.Len())
	return dir
}

// NewStatuteFetcher builds the statute-text fetcher from configuration
func NewStatuteFetcher(cfg *model.Config) *statute.Fetcher {
	var c cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	httpClient := util.NewHTTPClient(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, httpClient)
	}

	return statute.NewFetcher(statute.FetcherConfig{
		BaseURL:    cfg.Statute.APIBaseURL,
		HTTPClient: httpClient,
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxBytes:   cfg.HTTP.MaxBodyBytes,
		Limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		Cache:      c,
		Robots:     robots,
	})
}
