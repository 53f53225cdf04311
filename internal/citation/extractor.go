// Package citation extracts statute citations from answers and resolves them to statute text.
package citation

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/model"
)

// extractionTemplate asks for one citation per line as "name,article,paragraph,item".
// ParseCitationLines accepts nothing else.
const extractionTemplate = `以下の文章に含まれる法令の引用をすべて抽出せよ。

出力形式:
- 1行につき1件、「法令名,条,項,号」の4項目を半角カンマ区切りで出力すること。
- 該当しない項目は空欄とし、カンマは省略しないこと。
- 条・項・号の番号は数字のみで記し、「条」「項」「号」の文字は付けないこと。
- 引用以外の説明や見出しは出力しないこと。引用がなければ何も出力しないこと。

出力例:
著作権法,30,,
商法,10,2,

文章:
%s
`

// BuildExtractionPrompt embeds the answer text in the extraction instruction
func BuildExtractionPrompt(answer string) string {
	return fmt.Sprintf(extractionTemplate, answer)
}

// Extractor turns a free-text answer into structured citations using an LLM
type Extractor struct {
	completer llm.Completer
	model     string
}

// NewExtractor creates an extractor. An empty model uses the provider's configured one.
func NewExtractor(completer llm.Completer, model string) *Extractor {
	return &Extractor{completer: completer, model: model}
}

// Extract asks the LLM for the citations in answer and parses its output.
// An empty answer yields no citations without calling the LLM.
func (e *Extractor) Extract(ctx context.Context, answer string) ([]model.Citation, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, nil
	}

	resp, err := e.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: BuildExtractionPrompt(answer),
		Model:  e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("extract citations: %w", err)
	}

	return ParseCitationLines(resp.Text), nil
}

// ParseCitationLines parses "name,article,paragraph,item" lines.
// Lines with fewer than four fields or an empty name are dropped; fields past
// the fourth are ignored. Output order follows input order.
func ParseCitationLines(raw string) []model.Citation {
	var citations []model.Citation
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			continue
		}

		c := model.Citation{
			StatuteName: strings.TrimSpace(fields[0]),
			Article:     strings.TrimSpace(fields[1]),
			Paragraph:   strings.TrimSpace(fields[2]),
			Item:        strings.TrimSpace(fields[3]),
		}
		if !c.Valid() {
			continue
		}
		citations = append(citations, c)
	}
	return citations
}
