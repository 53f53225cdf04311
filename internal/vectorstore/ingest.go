package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/model"
)

// Precedent is one case file of the precedent dataset
type Precedent struct {
	TrialType string `json:"trial_type"`
	Date      struct {
		Era   string `json:"era"`
		Year  int    `json:"year"`
		Month int    `json:"month"`
		Day   int    `json:"day"`
	} `json:"date"`
	CaseNumber     string `json:"case_number"`
	CaseName       string `json:"case_name"`
	CourtName      string `json:"court_name"`
	Result         string `json:"result"`
	LawsuitID      string `json:"lawsuit_id"`
	DetailPageLink string `json:"detail_page_link"`
	FullPDFLink    string `json:"full_pdf_link"`
	Contents       string `json:"contents"`
}

// Metadata flattens the case attributes stored with every excerpt
func (p Precedent) Metadata() model.CaseMetadata {
	return model.CaseMetadata{
		TrialType:      p.TrialType,
		Era:            p.Date.Era,
		EraYear:        p.Date.Year,
		Month:          p.Date.Month,
		Day:            p.Date.Day,
		CaseNumber:     p.CaseNumber,
		CaseName:       p.CaseName,
		CourtName:      p.CourtName,
		Result:         p.Result,
		LawsuitID:      p.LawsuitID,
		DetailPageLink: p.DetailPageLink,
		FullPDFLink:    p.FullPDFLink,
	}
}

// LoadPrecedent reads one precedent JSON file
func LoadPrecedent(path string) (*Precedent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read precedent: %w", err)
	}

	var p Precedent
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode precedent %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

// ChunkWriter stores the chunks of one source
type ChunkWriter interface {
	ReplaceSource(ctx context.Context, source string, chunks []Chunk) error
	HasSource(ctx context.Context, source string) (bool, error)
}

// IngestConfig tunes an Ingester. Zero values select defaults.
type IngestConfig struct {
	ChunkSize int // runes per excerpt
	BatchSize int // texts per embedding request
	// SkipExisting leaves already-indexed files untouched
	SkipExisting bool
	Logger       *slog.Logger
}

// IngestStats reports one directory run
type IngestStats struct {
	Files   int `json:"files"`
	Indexed int `json:"indexed"`
	Empty   int `json:"empty"`   // No contents; the dataset has cases without a decision text
	Skipped int `json:"skipped"` // Already indexed
	Failed  int `json:"failed"`
	Chunks  int `json:"chunks"`
}

// Ingester loads precedent files into the case index
type Ingester struct {
	writer    ChunkWriter
	embedder  llm.Embedder
	chunkSize int
	batchSize int
	skip      bool
	logger    *slog.Logger
}

// NewIngester creates an ingester writing to writer
func NewIngester(writer ChunkWriter, embedder llm.Embedder, cfg IngestConfig) *Ingester {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Ingester{
		writer:    writer,
		embedder:  embedder,
		chunkSize: chunkSize,
		batchSize: batchSize,
		skip:      cfg.SkipExisting,
		logger:    logger,
	}
}

// PrecedentFiles lists the case files directly under dir, sorted by name.
// The dataset's list.json index is not a case and is excluded.
func PrecedentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read precedent directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, "list.json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// IngestDir indexes every case file in dir. A failing file is logged and
// counted; it does not stop the run.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (*IngestStats, error) {
	files, err := PrecedentFiles(dir)
	if err != nil {
		return nil, err
	}

	stats := &IngestStats{Files: len(files)}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		source := filepath.Base(path)
		if in.skip {
			exists, err := in.writer.HasSource(ctx, source)
			if err != nil {
				return stats, fmt.Errorf("check %s: %w", source, err)
			}
			if exists {
				stats.Skipped++
				continue
			}
		}

		n, err := in.IngestFile(ctx, path)
		switch {
		case err != nil:
			stats.Failed++
			in.logger.Warn("Failed to ingest precedent", "file", source, "error", err)
		case n == 0:
			stats.Empty++
			in.logger.Debug("Precedent has no contents", "file", source)
		default:
			stats.Indexed++
			stats.Chunks += n
			in.logger.Debug("Ingested precedent", "file", source, "chunks", n, "progress", fmt.Sprintf("%d/%d", i+1, len(files)))
		}
	}
	return stats, nil
}

// IngestFile indexes one case file and returns the number of stored chunks.
// A case without contents stores nothing.
func (in *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	p, err := LoadPrecedent(path)
	if err != nil {
		return 0, err
	}

	texts := SplitText(p.Contents, in.chunkSize)
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := in.embedBatches(ctx, texts)
	if err != nil {
		return 0, err
	}

	metadata := p.Metadata()
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			Source:    filepath.Base(path),
			Position:  i,
			Content:   text,
			Metadata:  metadata,
			Embedding: vectors[i],
		}
	}

	if err := in.writer.ReplaceSource(ctx, filepath.Base(path), chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	return len(chunks), nil
}

func (in *Ingester) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += in.batchSize {
		end := min(start+in.batchSize, len(texts))
		batch, err := in.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embed chunks: got %d vectors for %d texts", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
