package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/logicguard/internal/model"
)

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer printing to stdout
func NewRenderer() *Renderer {
	return &Renderer{out: os.Stdout}
}

// SetOutput redirects summaries and "-" paths to w
func (r *Renderer) SetOutput(w io.Writer) {
	r.out = w
}

// RenderJSON writes v as indented JSON. A path of "-" writes to the
// renderer's output.
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	return r.write(path, data)
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	return r.write(path, []byte(Markdown(report)))
}

func (r *Renderer) write(path string, data []byte) error {
	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown formats report as a Markdown document
func Markdown(report *model.AnalysisReport) string {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# LogicGuard Report\n\n")
	fmt.Fprintf(&b, "- Analyzed at: %s\n", report.Metadata.AnalyzedAt)
	if report.Metadata.WritingType != "" {
		fmt.Fprintf(&b, "- Writing type: %s\n", report.Metadata.WritingType)
	}
	fmt.Fprintf(&b, "- Paragraphs: %d, sentences: %d\n", report.Metadata.TotalParagraphs, report.Metadata.TotalSentences)
	fmt.Fprintf(&b, "- Quality score: **%.1f/100** (%d issues, %d critical)\n\n", s.DocumentQualityScore, s.TotalIssues, s.CriticalIssues)

	if len(s.KeyRecommendations) > 0 {
		b.WriteString("## Key Recommendations\n\n")
		for i, rec := range s.KeyRecommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
		b.WriteString("\n")
	}

	if items := report.UnsupportedClaims.Items; len(items) > 0 {
		fmt.Fprintf(&b, "## Unsupported Claims (%d)\n\n", len(items))
		for _, c := range items {
			fmt.Fprintf(&b, "- **%s** `%s` (%s)\n", c.Location, c.Status, c.ClaimType)
			fmt.Fprintf(&b, "  > %s\n", c.Claim)
			if c.Reason != "" {
				fmt.Fprintf(&b, "  %s\n", c.Reason)
			}
		}
		b.WriteString("\n")
	}

	if items := report.Contradictions.Items; len(items) > 0 {
		fmt.Fprintf(&b, "## Contradictions (%d)\n\n", len(items))
		for _, c := range items {
			fmt.Fprintf(&b, "### #%d %s, %s severity\n\n", c.ID, c.ContradictionType, c.Severity)
			fmt.Fprintf(&b, "- %s: %s\n", c.Sentence1Location, c.Sentence1)
			fmt.Fprintf(&b, "- %s: %s\n", c.Sentence2Location, c.Sentence2)
			if c.Explanation != "" {
				fmt.Fprintf(&b, "\n%s\n", c.Explanation)
			}
			b.WriteString("\n")
		}
	}

	if items := report.LogicalJumps.Items; len(items) > 0 {
		fmt.Fprintf(&b, "## Logical Jumps (%d)\n\n", len(items))
		b.WriteString("| From | To | Coherence | Severity | Flag |\n")
		b.WriteString("|------|----|-----------|----------|------|\n")
		for _, j := range items {
			fmt.Fprintf(&b, "| %d | %d | %.2f | %s | %s |\n", j.FromParagraph, j.ToParagraph, j.CoherenceScore, j.Severity, j.Flag)
		}
		b.WriteString("\n")
	}

	if items := report.UndefinedTerms.Items; len(items) > 0 {
		fmt.Fprintf(&b, "## Undefined Terms (%d)\n\n", len(items))
		for _, t := range items {
			fmt.Fprintf(&b, "- **%s** first used at %s", t.Term, t.FirstAppeared)
			if t.Reason != "" {
				fmt.Fprintf(&b, ": %s", t.Reason)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if items := report.SpellingErrors.Items; len(items) > 0 {
		fmt.Fprintf(&b, "## Spelling (%d)\n\n", len(items))
		for _, e := range items {
			fmt.Fprintf(&b, "- `%s` → `%s` at %d-%d (%s)\n", e.Original, e.Suggested, e.StartPos, e.EndPos, e.Language)
		}
		b.WriteString("\n")
	}

	if s.TotalIssues == 0 {
		b.WriteString("No issues found.\n")
	}
	return b.String()
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(report *model.AnalysisReport) {
	s := report.Summary
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Quality score: %.1f/100\n", s.DocumentQualityScore)
	fmt.Fprintf(r.out, "Issues: %d (%d critical)\n", s.TotalIssues, s.CriticalIssues)
	totals := report.SectionTotals()
	for _, d := range model.Priority {
		fmt.Fprintf(r.out, "  %-20s %d\n", d, totals[d])
	}
	for _, rec := range s.KeyRecommendations {
		fmt.Fprintf(r.out, "→ %s\n", rec)
	}
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.AnalysisReport, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose && jsonPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose && mdPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if jsonPath != "-" && mdPath != "-" {
		p.renderer.RenderSummary(report)
	}
	return nil
}

// Renderer exposes the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
