// Package pipeline runs one question through retrieval, answering and citation resolution.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/model"
	"github.com/ppiankov/hanrei/internal/rank"
)

// Answerer produces an answer and its supporting documents
type Answerer interface {
	Answer(ctx context.Context, query string) (*model.Answer, error)
}

// CitationExtractor finds statute citations in an answer
type CitationExtractor interface {
	Extract(ctx context.Context, answer string) ([]model.Citation, error)
}

// CitationResolver turns citations into displayable statute text
type CitationResolver interface {
	Resolve(ctx context.Context, citations []model.Citation) []model.Resolution
}

// Pipeline orchestrates one question-answer turn
type Pipeline struct {
	answerer  Answerer
	extractor CitationExtractor
	resolver  CitationResolver
	renderer  *Renderer
	config    *model.Config
	logger    *slog.Logger
	closers   []func() error
	now       func() time.Time
}

// New assembles a pipeline from its parts. A nil extractor or resolver, or
// cfg.Output.Citations being false, skips citation handling.
func New(cfg *model.Config, answerer Answerer, extractor CitationExtractor, resolver CitationResolver, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Pipeline{
		answerer:  answerer,
		extractor: extractor,
		resolver:  resolver,
		renderer:  NewRenderer(cfg.Ranking, cfg.Output.ShowStatuteText),
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// SetRanking changes the case-list order used when rendering turns
func (p *Pipeline) SetRanking(mode rank.Mode, direction rank.Direction) {
	p.renderer = p.renderer.WithRanking(mode, direction)
}

// Ask answers query and resolves the statute citations in the answer.
// Only answering can fail the turn; citation problems are recorded as
// warnings on the returned turn.
func (p *Pipeline) Ask(ctx context.Context, query string) (*model.Turn, error) {
	answer, err := p.answerer.Answer(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}

	turn := &model.Turn{
		Query:     answer.Query,
		AskedAt:   p.now().UTC(),
		Answer:    answer.Text,
		Model:     answer.Model,
		Documents: answer.Documents,
	}

	if !p.config.Output.Citations || p.extractor == nil || p.resolver == nil {
		return turn, nil
	}

	citations, err := p.extractor.Extract(ctx, answer.Text)
	if err != nil {
		p.logger.Warn("Citation extraction failed", "error", err)
		turn.Warnings = append(turn.Warnings, fmt.Sprintf("citation extraction failed: %v", err))
		return turn, nil
	}
	p.logger.Debug("Extracted citations", "count", len(citations))

	turn.Resolutions = p.resolver.Resolve(ctx, citations)
	for _, res := range turn.Resolutions {
		for _, text := range res.Texts {
			if text.Unavailable {
				turn.Warnings = append(turn.Warnings, fmt.Sprintf("statute text unavailable: %s", text.Label))
			}
		}
	}

	return turn, nil
}

// Close releases resources opened by NewPipeline
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// RenderTurn writes the requested files and prints the terminal summary
func (p *Pipeline) RenderTurn(turn *model.Turn, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(turn, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			p.logger.Info("✓ Wrote JSON", "path", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(turn, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			p.logger.Info("✓ Wrote Markdown", "path", mdPath)
		}
	}

	return nil
}

// Slug turns a question into a short file-name stem
func Slug(query string, maxRunes int) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(query) {
		if n >= maxRunes {
			break
		}
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 0x20:
			b.WriteRune('_')
		case r == ' ' || r == '　' || r == '\t':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
		n++
	}
	if b.Len() == 0 {
		return "question"
	}
	return b.String()
}
