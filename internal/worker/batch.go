package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/hanrei/internal/model"
)

// Asker answers a single question
type Asker interface {
	Ask(ctx context.Context, query string) (*model.Turn, error)
}

// AskJob answers one question from a batch
type AskJob struct {
	Index int
	Query string
	Asker Asker
}

// Execute runs the question through the asker
func (j *AskJob) Execute(ctx context.Context) Result {
	turn, err := j.Asker.Ask(ctx, j.Query)
	return &AskResult{
		Index: j.Index,
		Query: j.Query,
		Turn:  turn,
		Error: err,
	}
}

// AskResult is the outcome of one batch question
type AskResult struct {
	Index int
	Query string
	Turn  *model.Turn
	Error error
}

// GetError returns the error from the ask result
func (r *AskResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many questions concurrently
type BatchProcessor struct {
	asker       Asker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(asker Asker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		asker:       asker,
		concurrency: concurrency,
	}
}

// ProcessQuestions answers every question and returns results in input order
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskResult {
	if len(questions) == 0 {
		return []*AskResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, q := range questions {
		pool.Submit(&AskJob{Index: i, Query: q, Asker: b.asker})
	}

	results := pool.Wait()

	askResults := make([]*AskResult, 0, len(results))
	for _, result := range results {
		askResults = append(askResults, result.(*AskResult))
	}
	sort.Slice(askResults, func(i, j int) bool {
		return askResults[i].Index < askResults[j].Index
	})

	return askResults
}

// ProcessFile reads questions from a file and answers them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads one question per line, skipping blanks, # comments and duplicates
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
