package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/logicguard/internal/detect"
	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/ledger"
	"github.com/ppiankov/logicguard/internal/metrics"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
	"github.com/ppiankov/logicguard/internal/score"
	"github.com/ppiankov/logicguard/internal/validate"
)

// Input is one document to analyze
type Input struct {
	Context  model.AnalysisContext
	Content  string
	Language model.Language // auto, en, vi or mixed
}

// Result is a validated report plus what happened while building it
type Result struct {
	Report   *model.AnalysisReport
	Doc      *document.Document
	Degraded []model.Detector // Sections emptied by an oracle failure
	Rejected int              // Candidates dropped across all detectors
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithClock replaces time.Now for analyzed_at
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) { p.clock = clock }
}

// WithRecorder reports stage metrics to r
func WithRecorder(r *metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// Pipeline orchestrates one analysis: spelling first, the ledger frozen,
// claims, terms and contradictions concurrently, then logical jumps.
type Pipeline struct {
	oracle       oracle.Oracle
	adapter      *detect.Adapter
	validator    *validate.Validator
	scorer       *score.Scorer
	renderer     *Renderer
	recorder     *metrics.Recorder
	clock        func() time.Time
	stageTimeout time.Duration
	retries      int
}

// New creates a pipeline that asks o for candidates
func New(cfg *model.Config, o oracle.Oracle, opts ...Option) *Pipeline {
	adapter := detect.New(detect.OptionsFromConfig(cfg))

	timeout := cfg.Oracle.StageTimeout
	if timeout <= 0 {
		timeout = model.DefaultConfig().Oracle.StageTimeout
	}
	retries := cfg.Pipeline.StageRetries
	if retries < 0 {
		retries = 0
	}

	p := &Pipeline{
		oracle:       o,
		adapter:      adapter,
		validator:    validate.NewValidator(adapter.CoherenceThreshold()),
		scorer:       score.NewScorer(),
		renderer:     NewRenderer(),
		clock:        time.Now,
		stageTimeout: timeout,
		retries:      retries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run is the state of one analysis. Each stage writes only its own fields,
// so the concurrent middle stages need no locking.
type run struct {
	in   Input
	doc  *document.Document
	lang model.Language
	view ledger.View

	spelling       detect.SpellingResult
	claims         detect.ClaimsResult
	terms          detect.TermsResult
	contradictions detect.ContradictionsResult
	jumps          detect.JumpsResult

	degraded [5]bool
	rejected [5][]error
}

func (r *run) env() detect.Env {
	return detect.Env{Doc: r.doc, Language: r.lang, Context: r.in.Context, View: r.view}
}

// Analyze runs all five detectors and returns the validated report
func (p *Pipeline) Analyze(ctx context.Context, in Input) (*model.AnalysisReport, error) {
	res, err := p.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

// Run is Analyze plus the degradation and rejection bookkeeping
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	report, r, err := p.run(ctx, in)
	p.recorder.RunFinished(report, err)
	if err != nil {
		return nil, err
	}

	res := &Result{Report: report, Doc: r.doc}
	for _, d := range model.Priority {
		if r.degraded[d.Rank()] {
			res.Degraded = append(res.Degraded, d)
		}
		res.Rejected += len(r.rejected[d.Rank()])
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, in Input) (*model.AnalysisReport, *run, error) {
	r, err := p.prepare(in)
	if err != nil {
		return nil, nil, err
	}

	if err := p.detectAll(ctx, r); err != nil {
		return nil, nil, err
	}

	for attempt := 0; ; attempt++ {
		report := p.aggregate(r)
		err := p.validator.Validate(report, r.doc, r.view)
		if err == nil {
			for _, d := range model.Priority {
				p.recorder.AddFindings(d, report.SectionTotals()[d])
			}
			slog.Info("analysis complete",
				"paragraphs", report.Metadata.TotalParagraphs,
				"sentences", report.Metadata.TotalSentences,
				"issues", report.Summary.TotalIssues,
				"quality", report.Summary.DocumentQualityScore,
			)
			return report, r, nil
		}

		var inv *model.SchemaInvariantError
		if !errors.As(err, &inv) || attempt >= p.retries {
			return nil, nil, fmt.Errorf("validate report: %w", err)
		}
		slog.Warn("report failed validation, re-running stage",
			"invariant", inv.Invariant,
			"stage", inv.Stage,
			"attempt", attempt+1,
		)

		if !inv.Stage.Valid() || inv.Stage == model.DetectorSpelling {
			if err := p.detectAll(ctx, r); err != nil {
				return nil, nil, err
			}
			continue
		}
		p.degradable(ctx, r, inv.Stage)
		p.resolve(r)
	}
}

func (p *Pipeline) prepare(in Input) (*run, error) {
	doc, err := document.Segment(in.Content)
	if err != nil {
		return nil, err
	}
	lang := in.Language.Resolve(doc.Language)
	if lang == "" || lang == model.LanguageAuto {
		lang = model.LanguageEN
	}
	slog.Debug("document segmented",
		"fingerprint", doc.Fingerprint(),
		"language", lang,
		"paragraphs", len(doc.Paragraphs),
		"sentences", doc.SentenceCount(),
	)
	return &run{in: in, doc: doc, lang: lang}, nil
}

// detectAll runs every stage in priority order
func (p *Pipeline) detectAll(ctx context.Context, r *run) error {
	if err := p.spellingStage(ctx, r); err != nil {
		return err
	}
	p.fanOut(ctx, r, model.DetectorUnsupportedClaims, model.DetectorUndefinedTerms, model.DetectorContradictions)
	p.resolve(r)
	p.degradable(ctx, r, model.DetectorLogicalJumps)
	return nil
}

// spellingStage builds and freezes the ledger. Its failure fails the run.
func (p *Pipeline) spellingStage(ctx context.Context, r *run) error {
	l := ledger.New()
	r.view = ledger.View{}
	if err := p.stage(ctx, r, model.DetectorSpelling, l); err != nil {
		return fmt.Errorf("spelling stage: %w", err)
	}
	r.view = l.Freeze()
	return nil
}

// fanOut runs stages concurrently. A failing stage degrades its own
// section and never cancels its siblings.
func (p *Pipeline) fanOut(ctx context.Context, r *run, stages ...model.Detector) {
	var g errgroup.Group
	for _, d := range stages {
		g.Go(func() error {
			p.degradable(ctx, r, d)
			return nil
		})
	}
	_ = g.Wait()
}

// degradable runs one stage, emptying its section on failure
func (p *Pipeline) degradable(ctx context.Context, r *run, d model.Detector) {
	err := p.stage(ctx, r, d, nil)
	if err == nil {
		r.degraded[d.Rank()] = false
		return
	}
	r.degraded[d.Rank()] = true
	p.recorder.Degraded(d)
	slog.Warn("detector degraded", "detector", d, "kind", model.Kind(err), "error", err)

	switch d {
	case model.DetectorUnsupportedClaims:
		r.claims = detect.ClaimsResult{}
	case model.DetectorUndefinedTerms:
		r.terms = detect.TermsResult{}
	case model.DetectorContradictions:
		r.contradictions = detect.ContradictionsResult{}
	case model.DetectorLogicalJumps:
		r.jumps = detect.JumpsResult{}
	}
}

// stage asks the oracle for d's candidates and validates them. l is only
// used by the spelling stage.
func (p *Pipeline) stage(ctx context.Context, r *run, d model.Detector, l *ledger.Ledger) error {
	start := time.Now()
	defer func() { p.recorder.ObserveStage(d, time.Since(start)) }()

	cands, err := p.infer(ctx, r, d)
	if err != nil {
		return err
	}

	var rejected []error
	env := r.env()
	switch d {
	case model.DetectorSpelling:
		r.spelling = p.adapter.Spelling(env, cands.Spelling, l)
		rejected = r.spelling.Rejected
	case model.DetectorUnsupportedClaims:
		r.claims = p.adapter.Claims(env, cands.Claims)
		rejected = r.claims.Rejected
	case model.DetectorUndefinedTerms:
		r.terms = p.adapter.Terms(env, cands.Terms)
		rejected = r.terms.Rejected
	case model.DetectorContradictions:
		r.contradictions = p.adapter.Contradictions(env, cands.Contradictions)
		rejected = r.contradictions.Rejected
	case model.DetectorLogicalJumps:
		r.jumps = p.adapter.Jumps(env, cands.Jumps)
		rejected = r.jumps.Rejected
	default:
		return fmt.Errorf("unknown detector %q", d)
	}

	r.rejected[d.Rank()] = append(cands.Errors, rejected...)
	for _, e := range r.rejected[d.Rank()] {
		p.recorder.Rejected(d, e)
		slog.Debug("candidate dropped", "detector", d, "kind", model.Kind(e), "error", e)
	}
	slog.Debug("stage finished",
		"detector", d,
		"candidates", cands.Len(),
		"rejected", len(r.rejected[d.Rank()]),
		"elapsed", time.Since(start),
	)
	return nil
}

// infer calls the oracle under the stage timeout
func (p *Pipeline) infer(ctx context.Context, r *run, d model.Detector) (*oracle.Candidates, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	cands, err := p.oracle.Infer(ctx, oracle.Request{
		Task:     d,
		Doc:      r.doc,
		Context:  r.in.Context,
		Language: r.lang,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &model.OracleTimeoutError{Detector: d, Timeout: p.stageTimeout, Err: err}
		}
		return nil, fmt.Errorf("oracle %s: %w", d, err)
	}
	return cands.Only(d), nil
}

// AnalyzeTerms runs spelling then the terms detector and returns defined
// and undefined terms. An oracle failure in the terms stage is returned.
func (p *Pipeline) AnalyzeTerms(ctx context.Context, in Input) (*model.TermsReport, error) {
	r, err := p.prepare(in)
	if err != nil {
		return nil, err
	}
	if err := p.spellingStage(ctx, r); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := p.stage(ctx, r, model.DetectorUndefinedTerms, nil); err != nil {
			return nil, fmt.Errorf("terms stage: %w", err)
		}
		p.resolve(r)

		report := model.NewTermsReport(r.terms.Undefined, r.terms.Defined)
		err := p.validator.ValidateTerms(report, r.view)
		if err == nil {
			p.recorder.AddFindings(model.DetectorUndefinedTerms, len(report.UndefinedTerms))
			return report, nil
		}
		if attempt >= p.retries {
			return nil, fmt.Errorf("validate terms report: %w", err)
		}
		slog.Warn("terms report failed validation, re-running", "error", err)
	}
}

// AnalyzeClaims runs spelling then the claims detector and returns both
// supported and unsupported claims
func (p *Pipeline) AnalyzeClaims(ctx context.Context, in Input) (*model.ClaimsReport, error) {
	r, err := p.prepare(in)
	if err != nil {
		return nil, err
	}
	if err := p.spellingStage(ctx, r); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := p.stage(ctx, r, model.DetectorUnsupportedClaims, nil); err != nil {
			return nil, fmt.Errorf("claims stage: %w", err)
		}
		p.resolve(r)

		report := model.NewClaimsReport(r.claims.Findings, r.claims.Supported)
		err := p.validator.ValidateClaims(report, r.view)
		if err == nil {
			p.recorder.AddFindings(model.DetectorUnsupportedClaims, len(report.UnsupportedClaims))
			return report, nil
		}
		if attempt >= p.retries {
			return nil, fmt.Errorf("validate claims report: %w", err)
		}
		slog.Warn("claims report failed validation, re-running", "error", err)
	}
}

// WriteMetrics exports the recorder's metrics to path, if both are set
func (p *Pipeline) WriteMetrics(path string) error {
	return p.recorder.WriteTextfile(path)
}
