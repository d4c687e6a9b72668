package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	refresh     bool
	noCache     bool
	noFetch     bool
	readerURL   string
	insecureTLS bool
	llmProvider string
	llmModel    string
	textTitle   string
)

// assessCmd scores one article URL
var assessCmd = &cobra.Command{
	Use:     "assess <url>",
	Aliases: []string{"url"},
	Short:   "Score the credibility of a news article",
	Long: `Assess fetches a news article and scores its credibility:
- Source reputation from the reference dataset
- Corroboration by other outlets covering the same story
- Content signals (sensationalism, clickbait, bias, evidence)
- Community review average, when a database is configured

Example:
  trustlens assess https://www.reuters.com/world/some-story
  trustlens assess https://example.com/story --json report.json --md report.md
  trustlens assess https://example.com/story --llm openai --llm-model gpt-4o-mini -v`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

// textCmd scores raw text from a file or stdin
var textCmd = &cobra.Command{
	Use:   "text [file]",
	Short: "Score the credibility of raw article text",
	Long: `Text scores article text read from a file, or from stdin when the file
is "-" or omitted. No source is known, so the source component is neutral.

Example:
  trustlens text article.txt --title "Council approves budget"
  pbpaste | trustlens text`,
	Args: cobra.MaximumNArgs(1),
	RunE: runText,
}

// scoreCmd prints a cached assessment without computing anything
var scoreCmd = &cobra.Command{
	Use:   "score <subject-id>",
	Short: "Show a cached assessment",
	Long:  `Score prints the stored assessment for an article id or URL. It never triggers a new assessment.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(scoreCmd)

	for _, cmd := range []*cobra.Command{assessCmd, textCmd, scoreCmd} {
		cmd.Flags().StringVar(&outJSON, "json", "", "write JSON to path (- for stdout)")
		cmd.Flags().StringVar(&outMD, "md", "", "write Markdown report to path (- for stdout)")
	}
	for _, cmd := range []*cobra.Command{assessCmd, textCmd} {
		cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "overall assessment timeout")
		cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the assessment cache")
		cmd.Flags().StringVar(&llmProvider, "llm", "", "content analysis provider (openai, anthropic, gemini, ollama)")
		cmd.Flags().StringVar(&llmModel, "llm-model", "", "content analysis model name")
	}

	assessCmd.Flags().BoolVar(&refresh, "refresh", false, "ignore and replace any cached assessment")
	assessCmd.Flags().BoolVar(&noFetch, "no-fetch", false, "do not fetch the full article text")
	assessCmd.Flags().StringVar(&readerURL, "reader", "", "fetch through a reader proxy (e.g. https://r.jina.ai/)")
	assessCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")

	textCmd.Flags().StringVar(&textTitle, "title", "", "article headline (default: first line of the text)")
}

// applyFlags overlays command flags on the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("llm") {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
		applyEnv(cfg, os.Getenv)
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("no-fetch") {
		cfg.Content.FetchFullText = !noFetch
	}
	if flags.Changed("reader") {
		cfg.HTTP.ReaderURL = readerURL
	}
	if flags.Changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
}

func setup(cmd *cobra.Command) (*app, error) {
	logger, err := newLogger(os.Stderr, logLevel, logFormat)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	return wire(cmd.Context(), cfg, logger)
}

func runAssess(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Assessing: %s\n", rawURL)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", a.cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	if refresh {
		if err := a.assessor.Invalidate(ctx, rawURL); err != nil {
			a.logger.Warn().Err(err).Str("subject_id", rawURL).Msg("cache invalidation failed")
		}
	}

	res, err := a.assessor.AssessURL(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("assess %s: %w", rawURL, err)
	}
	return render(a, res)
}

func runText(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open text: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, err := a.assessor.AssessText(ctx, string(data), textTitle)
	if err != nil {
		return err
	}
	return render(a, res)
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cached, ok := a.assessor.Cached(cmd.Context(), args[0])
	if !ok {
		return fmt.Errorf("no cached assessment for %s (run 'trustlens assess' first)", args[0])
	}
	return render(a, &model.AssessResult{Assessment: cached, FromCache: true})
}

// render writes the requested outputs and always prints the terminal summary
func render(a *app, res *model.AssessResult) error {
	renderer := pipeline.NewRenderer(os.Stdout, a.cfg.Output.Verbose || verbose)

	if outJSON != "" {
		if err := renderer.RenderJSON(res, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose && outJSON != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(res, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose && outMD != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	// stdout stays machine-readable when a report goes there
	if outJSON == "-" || outMD == "-" {
		return nil
	}
	renderer.RenderSummary(res)
	return nil
}
