package citation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/model"
	"github.com/ppiankov/hanrei/internal/worker"
)

// MaxCandidates caps statute-text fetches for one keyword-matched citation
const MaxCandidates = 5

// Directory resolves statute names to canonical identifiers
type Directory interface {
	LookupExact(name string) string
	LookupByKeywords(keywords []string) []model.StatuteEntry
}

// TextFetcher retrieves cleaned statute text by canonical identifier
type TextFetcher interface {
	FetchStatuteText(ctx context.Context, canonicalID string) (string, error)
}

// ResolverConfig tunes a Resolver. Zero values select defaults.
type ResolverConfig struct {
	// MaxCandidates lowers the keyword-match cap; it never exceeds MaxCandidates
	MaxCandidates int
	// Workers bounds concurrent candidate fetches
	Workers int
	Logger  *slog.Logger
}

// Resolver maps citations to displayable statute text
type Resolver struct {
	directory     Directory
	fetcher       TextFetcher
	maxCandidates int
	workers       int
	logger        *slog.Logger
}

// NewResolver creates a resolver. A nil directory resolves nothing.
func NewResolver(directory Directory, fetcher TextFetcher, cfg ResolverConfig) *Resolver {
	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 || maxCandidates > MaxCandidates {
		maxCandidates = MaxCandidates
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = maxCandidates
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Resolver{
		directory:     directory,
		fetcher:       fetcher,
		maxCandidates: maxCandidates,
		workers:       workers,
		logger:        logger,
	}
}

// Label renders "{name} {article}条{paragraph}項{item}号", leaving out every
// empty field together with its suffix. With no fields it is the name alone.
func Label(c model.Citation) string {
	var b strings.Builder
	if c.Article != "" {
		b.WriteString(c.Article + "条")
	}
	if c.Paragraph != "" {
		b.WriteString(c.Paragraph + "項")
	}
	if c.Item != "" {
		b.WriteString(c.Item + "号")
	}
	if b.Len() == 0 {
		return c.StatuteName
	}
	return c.StatuteName + " " + b.String()
}

// Resolve resolves each citation in order. It never fails; fetch errors are
// recorded on the affected text block.
func (r *Resolver) Resolve(ctx context.Context, citations []model.Citation) []model.Resolution {
	resolutions := make([]model.Resolution, 0, len(citations))
	for _, c := range citations {
		if !c.Valid() {
			continue
		}
		resolutions = append(resolutions, r.ResolveOne(ctx, c))
	}
	return resolutions
}

// ResolveOne resolves a single citation: an exact directory match yields one
// text block under the citation's label; otherwise up to MaxCandidates keyword
// matches are fetched, each labeled by its own display name.
func (r *Resolver) ResolveOne(ctx context.Context, c model.Citation) model.Resolution {
	res := model.Resolution{
		Citation: c,
		Label:    Label(c),
		Match:    model.MatchNone,
	}
	if r.directory == nil {
		return res
	}

	if id := r.directory.LookupExact(c.StatuteName); id != "" {
		res.Match = model.MatchExact
		res.Texts = []model.ResolvedStatuteText{r.fetch(ctx, res.Label, id)}
		return res
	}

	candidates := r.directory.LookupByKeywords([]string{c.StatuteName})
	if len(candidates) == 0 {
		r.logger.Debug("No statute matches citation", "label", res.Label)
		return res
	}
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	res.Match = model.MatchKeyword
	res.Texts = r.fetchCandidates(ctx, candidates)
	return res
}

func (r *Resolver) fetch(ctx context.Context, label, canonicalID string) model.ResolvedStatuteText {
	block := model.ResolvedStatuteText{Label: label, CanonicalID: canonicalID}
	if r.fetcher == nil {
		block.Unavailable = true
		block.Error = "no statute text fetcher configured"
		return block
	}

	text, err := r.fetcher.FetchStatuteText(ctx, canonicalID)
	if err != nil {
		r.logger.Warn("Statute text unavailable", "label", label, "id", canonicalID, "error", err)
		block.Unavailable = true
		block.Error = err.Error()
		return block
	}
	block.Text = text
	return block
}

type candidateJob struct {
	index    int
	entry    model.StatuteEntry
	resolver *Resolver
}

type candidateResult struct {
	index int
	block model.ResolvedStatuteText
}

func (r candidateResult) GetError() error { return nil }

func (j candidateJob) Execute(ctx context.Context) worker.Result {
	return candidateResult{
		index: j.index,
		block: j.resolver.fetch(ctx, j.entry.DisplayName, j.entry.CanonicalID),
	}
}

// fetchCandidates fetches every candidate concurrently and returns the blocks
// in candidate order
func (r *Resolver) fetchCandidates(ctx context.Context, candidates []model.StatuteEntry) []model.ResolvedStatuteText {
	pool := worker.NewPoolWithContext(ctx, min(r.workers, len(candidates)))
	pool.Start()
	for i, entry := range candidates {
		pool.Submit(candidateJob{index: i, entry: entry, resolver: r})
	}

	blocks := make([]model.ResolvedStatuteText, len(candidates))
	done := make([]bool, len(candidates))
	for _, result := range pool.Wait() {
		cr := result.(candidateResult)
		blocks[cr.index] = cr.block
		done[cr.index] = true
	}

	// Jobs dropped by a cancelled context still get a block
	for i, entry := range candidates {
		if !done[i] {
			blocks[i] = model.ResolvedStatuteText{
				Label:       entry.DisplayName,
				CanonicalID: entry.CanonicalID,
				Unavailable: true,
				Error:       "fetch cancelled",
			}
		}
	}
	return blocks
}
