package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/hanrei/internal/model"
	"github.com/ppiankov/hanrei/internal/pipeline"
	"github.com/ppiankov/hanrei/internal/rank"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	sortMode    string
	sortOrder   string
	noCitations bool
	noCache     bool
	timeout     time.Duration
	llmProvider string
	llmModel    string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a legal question from similar court decisions",
	Long: `Ask retrieves the ten most similar precedent excerpts, answers the
question from them and resolves the statutes cited in the answer.

Without a question argument, ask reads one question per line from stdin
and answers each in turn until EOF.

Example:
  hanrei ask "私的複製はどこまで許されますか"
  hanrei ask "解雇予告手当について" --sort date --order asc
  hanrei ask "著作権侵害の損害額" --json turn.json --md turn.md
  hanrei ask --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	askCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	askCmd.Flags().StringVar(&sortMode, "sort", "", "case list order: similarity or date (default from config)")
	askCmd.Flags().StringVar(&sortOrder, "order", "", "date order: desc or asc (default from config)")
	askCmd.Flags().BoolVar(&noCitations, "no-citations", false, "skip statute citation extraction and lookup")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable statute text cache (force fresh fetch)")
	askCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "timeout per question")
	addLLMFlags(askCmd)
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applyFlags overlays explicitly set command flags onto cfg
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()

	if flags.Changed("llm-provider") && llmProvider != cfg.LLM.Provider {
		// The configured model belongs to the previous provider
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = ""
		cfg.LLM.APIKey = ""
		cfg.LLM.BaseURL = ""
		applyEnvCredentials(cfg)
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("no-citations") && noCitations {
		cfg.Output.Citations = false
	}
	if flags.Changed("no-cache") && noCache {
		cfg.Cache.Enabled = false
	}
	return nil
}

// applyRanking switches the pipeline's case-list order when --sort or
// --order is given; the other half keeps its configured value
func applyRanking(cmd *cobra.Command, p *pipeline.Pipeline) error {
	flags := cmd.Flags()
	if !flags.Changed("sort") && !flags.Changed("order") {
		return nil
	}

	mode, direction := p.Renderer().Ranking()
	if flags.Changed("sort") {
		m, err := rank.ParseMode(sortMode)
		if err != nil {
			return err
		}
		mode = m
	}
	if flags.Changed("order") {
		d, err := rank.ParseDirection(sortOrder)
		if err != nil {
			return err
		}
		direction = d
	}

	p.SetRanking(mode, direction)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := checkCredentials(cfg); err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	if err := applyRanking(cmd, p); err != nil {
		return err
	}

	if len(args) == 1 {
		return askOne(p, args[0], outJSON, outMD)
	}
	return askInteractive(p, os.Stdin)
}

func askOne(p *pipeline.Pipeline, question string, jsonPath string, mdPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Answering: %s\n", question)
	}

	turn, err := p.Ask(ctx, question)
	if err != nil {
		return err
	}

	p.Renderer().RenderSummary(os.Stdout, turn)

	if err := p.RenderTurn(turn, jsonPath, mdPath, verbose); err != nil {
		return err
	}
	if jsonPath != "" {
		fmt.Fprintf(os.Stderr, "✓ JSON: %s\n", jsonPath)
	}
	if mdPath != "" {
		fmt.Fprintf(os.Stderr, "✓ Markdown: %s\n", mdPath)
	}

	return nil
}

// askInteractive answers one question per input line. A failed turn is
// reported and the session continues with the next question.
func askInteractive(p *pipeline.Pipeline, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(os.Stderr, "質問> ")
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question != "" {
			if err := askOne(p, question, "", ""); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			}
		}
		fmt.Fprint(os.Stderr, "\n質問> ")
	}
	fmt.Fprintln(os.Stderr)

	return scanner.Err()
}
