package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/hanrei/internal/era"
	"github.com/ppiankov/hanrei/internal/model"
	"github.com/ppiankov/hanrei/internal/rank"
)

// Renderer formats turns for the terminal, Markdown and JSON.
// Documents are ordered for display by the configured ranking; the turn
// itself keeps retrieval order.
type Renderer struct {
	mode        rank.Mode
	direction   rank.Direction
	statuteText bool
}

// NewRenderer creates a renderer. Unknown ranking values fall back to
// similarity order, descending.
func NewRenderer(ranking model.RankingConfig, statuteText bool) *Renderer {
	mode, err := rank.ParseMode(ranking.Mode)
	if err != nil {
		mode = rank.BySimilarity
	}
	direction, err := rank.ParseDirection(ranking.Direction)
	if err != nil {
		direction = rank.Descending
	}
	return &Renderer{mode: mode, direction: direction, statuteText: statuteText}
}

// Ranking returns the display ordering
func (r *Renderer) Ranking() (rank.Mode, rank.Direction) {
	return r.mode, r.direction
}

// WithRanking returns a copy of r using a different ordering
func (r *Renderer) WithRanking(mode rank.Mode, direction rank.Direction) *Renderer {
	c := *r
	c.mode = mode
	c.direction = direction
	return &c
}

// Documents returns the turn's documents in display order
func (r *Renderer) Documents(turn *model.Turn) []model.CaseDocument {
	return rank.Rank(turn.Documents, r.mode, r.direction)
}

type turnView struct {
	*model.Turn
	Documents []model.CaseDocument `json:"documents"`
	Sort      rank.Mode            `json:"sort"`
	Order     rank.Direction       `json:"order"`
}

// WriteJSON writes the turn as indented JSON with documents in display order
func (r *Renderer) WriteJSON(w io.Writer, turn *model.Turn) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(turnView{
		Turn:      turn,
		Documents: r.Documents(turn),
		Sort:      r.mode,
		Order:     r.direction,
	})
}

// RenderJSON writes the turn as JSON to path
func (r *Renderer) RenderJSON(turn *model.Turn, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, turn) })
}

// RenderMarkdown writes the turn as Markdown to path
func (r *Renderer) RenderMarkdown(turn *model.Turn, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteMarkdown(w, turn) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteMarkdown renders the answer, the case list and the statute texts
func (r *Renderer) WriteMarkdown(w io.Writer, turn *model.Turn) error {
	var b strings.Builder

	b.WriteString("# 質問\n\n")
	b.WriteString(turn.Query + "\n\n")

	b.WriteString("## 回答\n\n")
	b.WriteString(turn.Answer + "\n\n")

	docs := r.Documents(turn)
	fmt.Fprintf(&b, "## 参照した判例 (%d件, %s)\n\n", len(docs), r.orderLabel())
	for i, doc := range docs {
		m := doc.Metadata
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, caseTitle(m))
		if m.CourtName != "" {
			fmt.Fprintf(&b, "- 裁判所: %s\n", m.CourtName)
		}
		fmt.Fprintf(&b, "- 判決日: %s\n", era.DisplayDate(m))
		if m.CaseNumber != "" {
			fmt.Fprintf(&b, "- 事件番号: %s\n", m.CaseNumber)
		}
		if m.Result != "" {
			fmt.Fprintf(&b, "- 結果: %s\n", m.Result)
		}
		fmt.Fprintf(&b, "- 類似度: %.3f\n", doc.Score)
		if m.DetailPageLink != "" {
			fmt.Fprintf(&b, "- 詳細: [%s](%s)\n", m.DetailPageLink, m.DetailPageLink)
		}
		if m.FullPDFLink != "" {
			fmt.Fprintf(&b, "- 全文: [PDF](%s)\n", m.FullPDFLink)
		}
		b.WriteString("\n")
		b.WriteString(quote(doc.Content))
		b.WriteString("\n")
	}

	if len(turn.Resolutions) > 0 {
		b.WriteString("## 関連法令\n\n")
		for _, res := range turn.Resolutions {
			for _, text := range res.Texts {
				fmt.Fprintf(&b, "### %s\n\n", text.Label)
				if text.Unavailable {
					b.WriteString("_条文を取得できませんでした。_\n\n")
					continue
				}
				if text.Text == "" {
					b.WriteString("_条文が見つかりませんでした。_\n\n")
					continue
				}
				b.WriteString(text.Text + "\n\n")
			}
		}
	}

	if len(turn.Warnings) > 0 {
		b.WriteString("## 注意\n\n")
		for _, warning := range turn.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints the answer, a compact case list and the statute texts
func (r *Renderer) RenderSummary(w io.Writer, turn *model.Turn) {
	_, _ = fmt.Fprintf(w, "\n%s\n\n", turn.Answer)

	docs := r.Documents(turn)
	_, _ = fmt.Fprintf(w, "参照した判例 (%d件, %s)\n", len(docs), r.orderLabel())
	for i, doc := range docs {
		m := doc.Metadata
		_, _ = fmt.Fprintf(w, "  %2d. %s  %s  %s  (%.3f)\n", i+1, era.DisplayDate(m), m.CourtName, caseTitle(m), doc.Score)
		if m.DetailPageLink != "" {
			_, _ = fmt.Fprintf(w, "      %s\n", m.DetailPageLink)
		}
	}

	for _, res := range turn.Resolutions {
		for _, text := range res.Texts {
			_, _ = fmt.Fprintf(w, "\n■ %s\n", text.Label)
			switch {
			case text.Unavailable:
				_, _ = fmt.Fprintln(w, "  (条文を取得できませんでした)")
			case r.statuteText && text.Text != "":
				_, _ = fmt.Fprintf(w, "  %s\n", text.Text)
			}
		}
	}

	for _, warning := range turn.Warnings {
		_, _ = fmt.Fprintf(w, "\n⚠️  %s\n", warning)
	}
}

func (r *Renderer) orderLabel() string {
	if r.mode == rank.ByDate {
		if r.direction == rank.Ascending {
			return "判決日の古い順"
		}
		return "判決日の新しい順"
	}
	return "類似度順"
}

func caseTitle(m model.CaseMetadata) string {
	if m.CaseName != "" {
		return m.CaseName
	}
	if m.CaseNumber != "" {
		return m.CaseNumber
	}
	return "(事件名なし)"
}

func quote(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.WriteString("> " + line + "\n")
	}
	return b.String()
}
