package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/logicguard/internal/cache"
	"github.com/ppiankov/logicguard/internal/ingest"
	"github.com/ppiankov/logicguard/internal/metrics"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
	"github.com/ppiankov/logicguard/internal/pipeline"
	"github.com/ppiankov/logicguard/internal/store"
)

var (
	outJSON        string
	outMD          string
	only           string
	provider       string
	modelName      string
	language       string
	writingType    string
	mainGoal       string
	criteria       []string
	constraints    []string
	candidatesPath string
	unified        bool
	noCache        bool
	noHistory      bool
	metricsFile    string
	timeout        time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Analyze one document and generate a report",
	Long: `Analyze runs the five detectors over one document, in priority order:
spelling, unsupported claims, undefined terms, contradictions and logical
jumps. Text claimed by a higher-priority finding is never reported again
by a lower-priority detector.

The source can be a text, Markdown, HTML, PDF or DOCX file, an http(s) URL,
or "-" for stdin.

Example:
  logicguard analyze essay.md
  logicguard analyze bai-luan.docx --language vi --json report.json --md report.md
  logicguard analyze https://example.com/post --provider openai --model gpt-4o-mini
  logicguard analyze essay.md --only terms
  logicguard analyze essay.md --candidates recorded.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (- for stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&only, "only", "", "run a single analysis: terms or claims")
	analyzeCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	analyzeCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the run in the history database")

	// Document context
	analyzeCmd.Flags().StringVar(&language, "language", "auto", "document language: auto, en, vi or mixed")
	analyzeCmd.Flags().StringVar(&writingType, "writing-type", "", "kind of document, e.g. essay, report, proposal")
	analyzeCmd.Flags().StringVar(&mainGoal, "goal", "", "what the document is trying to achieve")
	analyzeCmd.Flags().StringSliceVar(&criteria, "criteria", nil, "evaluation criteria (repeatable)")
	analyzeCmd.Flags().StringSliceVar(&constraints, "constraint", nil, "constraints the document must respect (repeatable)")

	// Oracle flags
	analyzeCmd.Flags().StringVar(&provider, "provider", "", "oracle provider (heuristic, openai, anthropic, ollama, gemini)")
	analyzeCmd.Flags().StringVar(&modelName, "model", "", "LLM model name")
	analyzeCmd.Flags().StringVar(&candidatesPath, "candidates", "", "replay oracle candidates from a JSON or YAML file")
	analyzeCmd.Flags().BoolVar(&unified, "unified", false, "ask the oracle for all five sections in one call")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the oracle response cache")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall analysis timeout")
}

// applyOracleFlags layers the oracle flags over cfg
func applyOracleFlags(cfg *model.Config) {
	if provider != "" {
		cfg.Oracle.Provider = provider
	}
	if modelName != "" {
		cfg.Oracle.Model = modelName
	}
	if unified {
		cfg.Oracle.Mode = model.OracleModeUnified
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

// buildOracle returns the replay oracle when --candidates is set, or the
// configured provider chain
func buildOracle(cfg *model.Config) (oracle.Oracle, error) {
	if candidatesPath != "" {
		return oracle.LoadStatic(candidatesPath)
	}
	o, err := oracle.New(cfg, cache.FromConfig(cfg.Cache))
	if err != nil {
		return nil, fmt.Errorf("create oracle: %w", err)
	}
	return o, nil
}

// buildInput reads the document context flags
func buildInput() (pipeline.Input, error) {
	lang, err := model.ParseLanguage(language)
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{
		Language: lang,
		Context: model.AnalysisContext{
			WritingType: writingType,
			MainGoal:    mainGoal,
			Criteria:    criteria,
			Constraints: constraints,
		},
	}, nil
}

// openHistory opens the history database, or returns nil when it is
// disabled or unavailable
func openHistory(cfg *model.Config) *store.Store {
	if noHistory || !cfg.Store.Enabled {
		return nil
	}
	s, err := store.Open(cache.ExpandHome(cfg.Store.Path))
	if err != nil {
		slog.Warn("History disabled", "path", cfg.Store.Path, "error", err)
		return nil
	}
	return s
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOracleFlags(cfg)
	if metricsFile != "" {
		cfg.Metrics.Textfile = metricsFile
	}

	in, err := buildInput()
	if err != nil {
		return err
	}

	o, err := buildOracle(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Oracle:    %s (%s)\n", o.Name(), cfg.Oracle.Mode)
		fmt.Fprintf(os.Stderr, "Language:  %s\n", in.Language)
		fmt.Fprintln(os.Stderr)
	}

	src, err := ingest.NewRegistry(cfg.Ingest).Load(ctx, source)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	in.Content = src.Text

	recorder := metrics.NewRecorder()
	p := pipeline.New(cfg, o, pipeline.WithRecorder(recorder))
	defer func() {
		if err := p.WriteMetrics(cfg.Metrics.Textfile); err != nil {
			slog.Warn("Could not write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}()

	switch strings.ToLower(only) {
	case "":
	case "terms":
		report, err := p.AnalyzeTerms(ctx, in)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		return p.Renderer().RenderJSON(report, outJSON)
	case "claims":
		report, err := p.AnalyzeClaims(ctx, in)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		return p.Renderer().RenderJSON(report, outJSON)
	default:
		return fmt.Errorf("unknown --only value %q (want terms or claims)", only)
	}

	result, err := p.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Segmented %d paragraphs, %d sentences\n",
			result.Report.Metadata.TotalParagraphs, result.Report.Metadata.TotalSentences)
		fmt.Fprintf(os.Stderr, "✓ Dropped %d oracle candidates\n", result.Rejected)
		fmt.Fprintln(os.Stderr)
	}
	for _, d := range result.Degraded {
		fmt.Fprintf(os.Stderr, "⚠️  %s section left empty: the oracle failed\n", d)
	}

	if err := p.RenderReport(result.Report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if history := openHistory(cfg); history != nil {
		defer func() { _ = history.Close() }()
		run := store.NewRun(source, src.Title, result)
		if err := history.Save(ctx, run); err != nil {
			slog.Warn("Could not record run", "error", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Recorded run %s\n", run.ID)
		}
	}

	return nil
}
