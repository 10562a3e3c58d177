package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/ingest"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/pipeline"
)

// Loader turns a source (path, URL or "-") into text
type Loader interface {
	Load(ctx context.Context, source string) (*ingest.Source, error)
}

// Analyzer runs the analysis pipeline on one document
type Analyzer interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// AnalyzeJob loads one source and analyzes it
type AnalyzeJob struct {
	Source   string
	Template pipeline.Input // Context and Language for every document
	Loader   Loader
	Analyzer Analyzer
	Limiter  *Limiter // nil disables per-host limiting
}

// Execute runs the job. Failures are reported in the result.
func (j *AnalyzeJob) Execute(ctx context.Context) *AnalyzeResult {
	res := &AnalyzeResult{Source: j.Source}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			res.Error = fmt.Errorf("rate limit: %w", err)
			return res
		}
	}

	src, err := j.Loader.Load(ctx, j.Source)
	if err != nil {
		res.Error = err
		return res
	}
	res.Title = src.Title

	in := j.Template
	in.Content = src.Text
	out, err := j.Analyzer.Run(ctx, in)
	if err != nil {
		res.Error = fmt.Errorf("analyze %s: %w", j.Source, err)
		return res
	}

	res.Report = out.Report
	res.Doc = out.Doc
	res.Degraded = out.Degraded
	return res
}

// AnalyzeResult is the outcome of one AnalyzeJob
type AnalyzeResult struct {
	Source   string
	Title    string
	Report   *model.AnalysisReport
	Doc      *document.Document
	Degraded []model.Detector
	Error    error
}

// GetError returns the job error, if any
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many sources concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	loader      Loader
	limiter     *Limiter
	concurrency int
	template    pipeline.Input
}

// NewBatchProcessor creates a batch processor. limiter may be nil.
func NewBatchProcessor(analyzer Analyzer, loader Loader, limiter *Limiter, concurrency int, template pipeline.Input) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		loader:      loader,
		limiter:     limiter,
		concurrency: concurrency,
		template:    template,
	}
}

// ProcessSources analyzes sources and returns one result per source, in
// input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*AnalyzeResult {
	if len(sources) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool[*AnalyzeResult](ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&AnalyzeJob{
			Source:   source,
			Template: b.template,
			Loader:   b.loader,
			Analyzer: b.analyzer,
			Limiter:  b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*AnalyzeResult, len(sources))
	for i, source := range sources {
		if i < len(results) && results[i] != nil {
			out[i] = results[i]
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not processed")
		}
		out[i] = &AnalyzeResult{Source: source, Error: err}
	}

	failed := 0
	for _, r := range out {
		if r.Error != nil {
			failed++
			slog.Warn("Source failed", "source", r.Source, "error", r.Error)
		}
	}
	slog.Info("Batch finished", "sources", len(sources), "failed", failed)

	return out
}

// ProcessFile reads sources from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one source per line, skipping blanks, "#"
// comments and duplicates
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
