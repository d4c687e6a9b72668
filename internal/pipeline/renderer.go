package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/score"
)

// Renderer writes assessments as JSON, markdown or a terminal summary
type Renderer struct {
	out     io.Writer
	verbose bool
}

// NewRenderer creates a renderer printing summaries to out
func NewRenderer(out io.Writer, verbose bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out, verbose: verbose}
}

// reportJSON is the machine-readable output, breakdown included
type reportJSON struct {
	*model.AssessResult
	Breakdown []model.Signal `json:"breakdown,omitempty"`
}

// Encode marshals a result with its breakdown
func (r *Renderer) Encode(res *model.AssessResult) ([]byte, error) {
	out := reportJSON{AssessResult: res}
	if r.verbose && res.Assessment != nil {
		out.Breakdown = score.Breakdown(res.Assessment)
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderJSON writes the result to path, or to the output writer when path is "-"
func (r *Renderer) RenderJSON(res *model.AssessResult, path string) error {
	data, err := r.Encode(res)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	data = append(data, '\n')
	return r.write(path, data)
}

// RenderMarkdown writes a markdown report to path, or to the output writer when path is "-"
func (r *Renderer) RenderMarkdown(res *model.AssessResult, path string) error {
	return r.write(path, []byte(Markdown(res)))
}

func (r *Renderer) write(path string, data []byte) error {
	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown renders a report for humans
func Markdown(res *model.AssessResult) string {
	a := res.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "# Credibility Report\n\n")
	fmt.Fprintf(&b, "**Subject:** %s\n\n", a.SubjectID)
	fmt.Fprintf(&b, "**Score:** %d/100 (%s risk)\n\n", a.FinalScore, a.RiskLevel)
	if res.FromCache {
		fmt.Fprintf(&b, "_Served from cache, computed %s_\n\n", a.ComputedAt.Format(time.RFC3339))
	}

	if len(a.ExplanationTags) > 0 {
		b.WriteString("## Why\n\n")
		for _, tag := range a.ExplanationTags {
			fmt.Fprintf(&b, "- %s\n", tag)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Components\n\n")
	b.WriteString("| Component | Score | Weight |\n")
	b.WriteString("|---|---|---|\n")
	c := a.Scores
	fmt.Fprintf(&b, "| Source credibility | %d | %d%% |\n", c.SourceCredibility.Score, c.SourceCredibility.Weight)
	fmt.Fprintf(&b, "| Cross-source verification | %d | %d%% |\n", c.CrossSourceVerification.Score, c.CrossSourceVerification.Weight)
	fmt.Fprintf(&b, "| Content analysis (%s) | %d | %d%% |\n", c.AIContentAnalysis.Path, c.AIContentAnalysis.Score, c.AIContentAnalysis.Weight)
	fmt.Fprintf(&b, "| Community signals | %d | %d%% |\n\n", c.CommunitySignals.Score, c.CommunitySignals.Weight)

	src := a.SourceMetadata
	b.WriteString("## Source\n\n")
	fmt.Fprintf(&b, "- Name: %s\n", src.Name)
	fmt.Fprintf(&b, "- Domain: %s\n", src.Domain)
	fmt.Fprintf(&b, "- Tier: %s\n", src.CategoryTier)
	fmt.Fprintf(&b, "- Bias: %s\n", src.BiasLabel)
	fmt.Fprintf(&b, "- Trust / transparency: %d / %d\n\n", src.TrustScore, src.TransparencyScore)

	if matches := c.CrossSourceVerification.SourcesFound; len(matches) > 0 {
		b.WriteString("## Corroborating coverage\n\n")
		for _, m := range matches {
			fmt.Fprintf(&b, "- [%s](%s) (%s, %.0f%% similar)\n", m.Title, m.URL, m.SourceName, m.SimilarityScore*100)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Breakdown\n\n")
	for _, s := range score.Breakdown(a) {
		fmt.Fprintf(&b, "- **%s** [%s] %s", s.Type, s.Severity, s.Description)
		if formula, ok := s.Data["formula"].(string); ok {
			fmt.Fprintf(&b, " `%s`", formula)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(res *model.AssessResult) {
	a := res.Assessment
	cached := ""
	if res.FromCache {
		cached = " (cached)"
	}

	fmt.Fprintf(r.out, "\n%s%s\n", a.SubjectID, cached)
	fmt.Fprintf(r.out, "  Score: %d/100  Risk: %s\n", a.FinalScore, strings.ToUpper(string(a.RiskLevel)))
	fmt.Fprintf(r.out, "  Source: %s (%s)\n", a.SourceMetadata.Name, a.SourceMetadata.CategoryTier)
	if len(a.ExplanationTags) > 0 {
		fmt.Fprintf(r.out, "  Tags: %s\n", strings.Join(a.ExplanationTags, ", "))
	}

	if !r.verbose {
		return
	}

	for _, s := range score.Breakdown(a) {
		fmt.Fprintf(r.out, "  %s %s\n", severityMarker(s.Severity), s.Description)
		keys := make([]string, 0, len(s.Data))
		for k := range s.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(r.out, "      %s: %v\n", k, s.Data[k])
		}
	}
}

func severityMarker(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "!"
	default:
		return "✓"
	}
}
