package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/logicguard/internal/ingest"
	"github.com/ppiankov/logicguard/internal/metrics"
	"github.com/ppiankov/logicguard/internal/pipeline"
	"github.com/ppiankov/logicguard/internal/store"
	"github.com/ppiankov/logicguard/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many documents listed in a file",
	Long: `Batch analyzes every source listed in the input file (one path or URL
per line, # starts a comment) with a pool of workers, and writes a JSON
and a Markdown report per document.

URL sources are rate-limited per host.

Example:
  logicguard batch sources.txt
  logicguard batch sources.txt --concurrency 8 --output-dir ./reports
  logicguard batch sources.txt --provider openai --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: batch.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./logicguard-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	batchCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record runs in the history database")

	batchCmd.Flags().StringVar(&language, "language", "auto", "document language: auto, en, vi or mixed")
	batchCmd.Flags().StringVar(&writingType, "writing-type", "", "kind of document, e.g. essay, report, proposal")
	batchCmd.Flags().StringVar(&mainGoal, "goal", "", "what the documents are trying to achieve")

	batchCmd.Flags().StringVar(&provider, "provider", "", "oracle provider (heuristic, openai, anthropic, ollama, gemini)")
	batchCmd.Flags().StringVar(&modelName, "model", "", "LLM model name")
	batchCmd.Flags().StringVar(&candidatesPath, "candidates", "", "replay oracle candidates from a JSON or YAML file")
	batchCmd.Flags().BoolVar(&unified, "unified", false, "ask the oracle for all five sections in one call")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the oracle response cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOracleFlags(cfg)
	if metricsFile != "" {
		cfg.Metrics.Textfile = metricsFile
	}
	if concurrency <= 0 {
		concurrency = cfg.Batch.Workers
	}

	template, err := buildInput()
	if err != nil {
		return err
	}

	o, err := buildOracle(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  LogicGuard Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Oracle:       %s\n", o.Name())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	recorder := metrics.NewRecorder()
	p := pipeline.New(cfg, o, pipeline.WithRecorder(recorder))
	limiter := worker.NewLimiter(cfg.Batch.RequestsPerSecond, cfg.Batch.BurstSize)
	processor := worker.NewBatchProcessor(p, ingest.NewRegistry(cfg.Ingest), limiter, concurrency, template)

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing sources with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	history := openHistory(cfg)
	if history != nil {
		defer func() { _ = history.Close() }()
	}

	successCount := 0
	failureCount := 0
	renderer := pipeline.NewRenderer()
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}
		successCount++

		name := result.Title
		if name == "" {
			name = result.Source
		}
		slug := uniqueSlug(used, sanitizeFilename(name))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Source, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Source, err)
			continue
		}

		if history != nil {
			res := &pipeline.Result{Report: result.Report, Doc: result.Doc, Degraded: result.Degraded}
			if err := history.Save(ctx, store.NewRun(result.Source, result.Title, res)); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to record run: %v\n", result.Source, err)
			}
		}

		fmt.Fprintf(os.Stderr, "✓ %s (quality: %.1f/100, issues: %d)\n",
			name, result.Report.Summary.DocumentQualityScore, result.Report.Summary.TotalIssues)
	}

	if err := p.WriteMetrics(cfg.Metrics.Textfile); err != nil {
		fmt.Fprintf(os.Stderr, "✗ failed to write metrics: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
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
	" ", "-",
)

// sanitizeFilename turns a title or source into a safe file name
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = filenameReplacer.Replace(s)
	s = strings.Trim(s, "._-")
	if s == "" {
		s = "report"
	}

	runes := []rune(s)
	if len(runes) > 100 {
		s = string(runes[:100])
	}
	return s
}

// uniqueSlug appends -2, -3, ... to repeated slugs
func uniqueSlug(used map[string]int, slug string) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
