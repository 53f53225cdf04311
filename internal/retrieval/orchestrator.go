// Package retrieval answers a question from the most similar precedent excerpts.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/model"
)

// TopK is the number of excerpts retrieved per question
const TopK = 10

// contextSeparator joins excerpts into the context blob
const contextSeparator = "\n\n"

// ErrEmptyQuery is returned for a blank question
var ErrEmptyQuery = errors.New("empty query")

// Retriever returns the k documents most similar to query, most similar first
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]model.CaseDocument, error)
}

// answerTemplate takes the context blob, then the question. It restricts the
// model to the supplied excerpts and asks for 条/項/号 numbers so the answer
// can be mined for citations.
const answerTemplate = `<context>
%s
</context>

以上は、関連する判例の一部である。これらを参照しながら以下の質問に答えよ。
なお、回答する上では以下の条件を満たすこと。
1. 質問者の置かれた状況を考慮すること。
2. 上記の判例のみを参考に回答し、事前に学習した法律知識を用いないこと。
3. 関連する判例のうち、関連する箇所を引用すること。
4. 提示した判例から関連すると思われる法律があれば、その法令名と条、項、号を回答の最後に明記すること。
5. 上記の判例に言及する際は、「過去の判例によれば、」という表現を用いること。

質問：
%s

回答：
`

// FormatContext joins document contents in retrieval order, separated by a blank line
func FormatContext(docs []model.CaseDocument) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, contextSeparator)
}

// BuildAnswerPrompt embeds the context blob and the raw query verbatim
func BuildAnswerPrompt(contextBlob, query string) string {
	return fmt.Sprintf(answerTemplate, contextBlob, query)
}

// Orchestrator runs retrieval-augmented answer generation
type Orchestrator struct {
	retriever Retriever
	completer llm.Completer
	model     string
}

// NewOrchestrator creates an orchestrator. An empty model uses the provider's configured one.
func NewOrchestrator(retriever Retriever, completer llm.Completer, model string) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		completer: completer,
		model:     model,
	}
}

// Answer retrieves the TopK most similar excerpts and asks the LLM to answer
// from them alone. Documents are returned in retrieval order; ranking for
// display is left to the caller.
func (o *Orchestrator) Answer(ctx context.Context, query string) (*model.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	docs, err := o.retriever.Retrieve(ctx, query, TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	resp, err := o.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: BuildAnswerPrompt(FormatContext(docs), query),
		Model:  o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &model.Answer{
		Query:     query,
		Text:      resp.Text,
		Documents: docs,
		Model:     resp.Model,
	}, nil
}
