package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/pipeline"
	"github.com/ppiankov/trustlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	itemTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Assess multiple article URLs from a file in parallel",
	Long: `Batch assesses many article URLs concurrently:
- Read URLs from input file (one per line, # comments allowed)
- Assess URLs in parallel with a configurable worker count
- Write a JSON and Markdown report per URL plus a run summary

Example:
  trustlens batch urls.txt
  trustlens batch urls.txt --concurrency 8 --output-dir ./reports
  trustlens batch urls.txt --timeout 30m --item-timeout 2m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers or CPU count)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./trustlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&itemTimeout, "item-timeout", 90*time.Second, "timeout for each URL")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the assessment cache")
	batchCmd.Flags().StringVar(&llmProvider, "llm", "", "content analysis provider (openai, anthropic, gemini, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "content analysis model name")
}

// batchSummary is written next to the per-URL reports
type batchSummary struct {
	RunID      string         `json:"runId"`
	InputFile  string         `json:"inputFile"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Summary    worker.Summary `json:"summary"`
	Failures   []batchFailure `json:"failures,omitempty"`
}

type batchFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Trustlens Batch Assessment\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Run ID:       %s\n", runID)
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if a.cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", a.cfg.LLM.Provider, a.cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	started := time.Now().UTC()
	processor := worker.NewBatchProcessor(a.assessor, workers, itemTimeout)
	items, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(os.Stdout, a.cfg.Output.Verbose || verbose)
	report := batchSummary{RunID: runID, InputFile: file, StartedAt: started}

	for _, item := range items {
		if item.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", item.URL, item.Error)
			logger.Warn().Err(item.Error).Str("subject_id", item.URL).Msg("assessment failed")
			report.Failures = append(report.Failures, batchFailure{URL: item.URL, Error: item.Error.Error()})
			continue
		}

		slug := sanitizeFilename(item.URL)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(item.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", item.URL, err)
			continue
		}
		if err := renderer.RenderMarkdown(item.Result, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", item.URL, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (score: %d/100, %s risk%s)\n", item.URL,
			item.Result.Assessment.FinalScore, item.Result.Assessment.RiskLevel, cachedSuffix(item.Result))
	}

	report.Summary = worker.Summarize(items)
	report.FinishedAt = time.Now().UTC()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	summaryPath := filepath.Join(outputDir, "summary.json")
	if err := os.WriteFile(summaryPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	s := report.Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d URLs\n", s.Total)
	fmt.Fprintf(os.Stderr, "  Success:    %d (%d from cache)\n", s.Succeeded, s.FromCache)
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", s.Failed)
	fmt.Fprintf(os.Stderr, "  Risk:       %d low, %d medium, %d high\n",
		s.ByRisk[model.RiskLow], s.ByRisk[model.RiskMedium], s.ByRisk[model.RiskHigh])
	fmt.Fprintf(os.Stderr, "  Mean score: %.1f\n", s.MeanScore)
	fmt.Fprintf(os.Stderr, "  Output:     %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func cachedSuffix(res *model.AssessResult) string {
	if res.FromCache {
		return ", cached"
	}
	return ""
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"&", "_",
	"=", "_",
	" ", "-",
)

// sanitizeFilename turns a URL into a safe report file name
func sanitizeFilename(s string) string {
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.Host + strings.TrimSuffix(u.Path, "/")
	}
	s = strings.TrimPrefix(s, "www.")
	s = filenameReplacer.Replace(s)
	s = strings.Trim(s, "_.-")

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}
