package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/vectorstore"
	"github.com/spf13/cobra"
)

var (
	skipExisting  bool
	chunkSize     int
	ingestTimeout time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Index precedent JSON files into the case vector store",
	Long: `Ingest reads one precedent per JSON file from a directory, splits each
decision text into excerpts, embeds them and stores them with the case
metadata. Re-ingesting a file replaces its excerpts.

Example:
  hanrei ingest ./precedent
  hanrei ingest ./precedent --skip-existing
  hanrei ingest ./precedent --chunk-size 800`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "leave already-indexed files untouched")
	ingestCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "runes per excerpt (default from config)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 2*time.Hour, "total timeout for ingestion")
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.VectorStore.ChunkSize = chunkSize
	}
	if (cfg.Embedding.Provider == "openai" || cfg.Embedding.Provider == "") && cfg.Embedding.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set (needed for embeddings)")
	}

	embedder, err := llm.NewEmbedder(llm.EmbedderConfigFromModel(cfg.Embedding, cfg.HTTP))
	if err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}

	store, err := vectorstore.New(cfg.VectorStore.Path, cfg.Embedding.Dimensions)
	if err != nil {
		return fmt.Errorf("open case index: %w", err)
	}
	defer func() { _ = store.Close() }()

	fmt.Fprintf(os.Stderr, "⚙️  Indexing %s into %s\n", dir, cfg.VectorStore.Path)

	ingester := vectorstore.NewIngester(store, embedder, vectorstore.IngestConfig{
		ChunkSize:    cfg.VectorStore.ChunkSize,
		SkipExisting: skipExisting,
		Logger:       logging.Default(),
	})

	start := time.Now()
	stats, err := ingester.IngestDir(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Indexed %d/%d files (%d excerpts) in %v\n",
		stats.Indexed, stats.Files, stats.Chunks, time.Since(start).Round(time.Second))
	if stats.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped:  %d already indexed\n", stats.Skipped)
	}
	if stats.Empty > 0 {
		fmt.Fprintf(os.Stderr, "  Empty:    %d without decision text\n", stats.Empty)
	}
	if stats.Failed > 0 {
		fmt.Fprintf(os.Stderr, "✗ Failed:   %d (see log)\n", stats.Failed)
	}

	total, err := store.Stats(ctx)
	if err == nil {
		fmt.Fprintf(os.Stderr, "  Index:    %d cases, %d excerpts\n", total.Sources, total.Chunks)
	}

	return nil
}
