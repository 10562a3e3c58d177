package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/logicguard/internal/ledger"
	"github.com/ppiankov/logicguard/internal/metrics"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
)

const (
	cookingText = "Boil the pasta in salted water. Drain it well.\n\n" +
		"Neutron stars are extremely dense. Their cores are exotic."
	typoText = "Teh results are clear. We track the ZKR metric daily."
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newPipeline(o oracle.Oracle, opts ...Option) *Pipeline {
	cfg := model.DefaultConfig()
	cfg.Oracle.StageTimeout = 100 * time.Millisecond
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(cfg, o, opts...)
}

func typoCandidates() *oracle.Candidates {
	return &oracle.Candidates{
		Spelling: []oracle.SpellingCandidate{
			{Original: "Teh", Suggested: "The", StartPos: 0, EndPos: 3},
		},
		Claims: []oracle.ClaimCandidate{
			{Claim: "Teh results are clear.", Location: "Paragraph 1, Sentence 1"},
			{Claim: "We track the ZKR metric daily.", Location: "Paragraph 1, Sentence 2"},
		},
		Terms: []oracle.TermCandidate{{Term: "ZKR"}},
	}
}

// blocking answers from next but hangs on the given task until the stage
// deadline fires
func blocking(next oracle.Oracle, task model.Detector) oracle.Oracle {
	return oracle.Func(func(ctx context.Context, req oracle.Request) (*oracle.Candidates, error) {
		if req.Task == task {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return next.Infer(ctx, req)
	})
}

func TestAnalyze_TopicShift(t *testing.T) {
	rec := metrics.NewRecorder()
	p := newPipeline(oracle.NewStatic(&oracle.Candidates{
		Jumps: []oracle.JumpCandidate{{FromParagraph: 1, ToParagraph: 2, CoherenceScore: ptr(0.1)}},
	}), WithRecorder(rec))

	report, err := p.Analyze(context.Background(), Input{
		Context: model.AnalysisContext{WritingType: "blog"},
		Content: cookingText,
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01T12:00:00Z", report.Metadata.AnalyzedAt)
	assert.Equal(t, "blog", report.Metadata.WritingType)
	assert.Equal(t, 2, report.Metadata.TotalParagraphs)
	assert.Equal(t, 4, report.Metadata.TotalSentences)

	require.Equal(t, 1, report.LogicalJumps.TotalFound)
	jump := report.LogicalJumps.Items[0]
	assert.Equal(t, 1, jump.FromParagraph)
	assert.Equal(t, 2, jump.ToParagraph)
	assert.Equal(t, model.SeverityHigh, jump.Severity)
	assert.Equal(t, "Boil the pasta in salted water.", jump.FromParagraphSummary)

	assert.Equal(t, 1, report.Summary.TotalIssues)
	assert.Equal(t, 1, report.Summary.CriticalIssues)
	assert.InDelta(t, 100*(1-0.25/3), report.Summary.DocumentQualityScore, 1e-9)
	assert.Len(t, report.Summary.KeyRecommendations, 1)

	assert.Empty(t, report.SpellingErrors.Items)
	assert.NotNil(t, report.SpellingErrors.Items)

	count, err := testutil.GatherAndCount(rec.Registry(), "logicguard_findings_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAnalyze_SpellingSuppression(t *testing.T) {
	p := newPipeline(oracle.NewStatic(typoCandidates()))

	res, err := p.Run(context.Background(), Input{Content: typoText})
	require.NoError(t, err)
	report := res.Report

	require.Equal(t, 1, report.SpellingErrors.TotalFound)
	assert.Equal(t, "The", report.SpellingErrors.Items[0].Suggested)

	// The first claim overlaps "Teh" and is consumed by the spelling finding
	require.Equal(t, 1, report.UnsupportedClaims.TotalFound)
	assert.Equal(t, "We track the ZKR metric daily.", report.UnsupportedClaims.Items[0].Claim)
	assert.Equal(t, "Paragraph 1, Sentence 2", report.UnsupportedClaims.Items[0].Location)

	// A term inside a claim is a different dimension and stays
	require.Equal(t, 1, report.UndefinedTerms.TotalFound)
	assert.Equal(t, "ZKR", report.UndefinedTerms.Items[0].Term)

	assert.Equal(t, 3, report.Summary.TotalIssues)
	assert.Equal(t, 1, report.Summary.CriticalIssues)
	assert.InDelta(t, 50, report.Summary.DocumentQualityScore, 1e-9)
	assert.GreaterOrEqual(t, res.Rejected, 1)
	assert.Empty(t, res.Degraded)
}

func TestAnalyze_SpellingTimeoutFailsRun(t *testing.T) {
	p := newPipeline(blocking(oracle.NewStatic(typoCandidates()), model.DetectorSpelling))

	report, err := p.Analyze(context.Background(), Input{Content: typoText})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, model.ErrOracleTimeout), err.Error())

	var timeout *model.OracleTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, model.DetectorSpelling, timeout.Detector)
}

func TestAnalyze_MiddleStageTimeoutDegrades(t *testing.T) {
	cands := typoCandidates()
	cands.Contradictions = []oracle.ContradictionCandidate{{
		Sentence1:         "Teh results are clear.",
		Sentence2:         "We track the ZKR metric daily.",
		Sentence1Location: "Paragraph 1, Sentence 1",
		Sentence2Location: "Paragraph 1, Sentence 2",
		ContradictionType: "logical",
	}}
	p := newPipeline(blocking(oracle.NewStatic(cands), model.DetectorContradictions))

	res, err := p.Run(context.Background(), Input{Content: typoText})
	require.NoError(t, err)

	assert.Equal(t, []model.Detector{model.DetectorContradictions}, res.Degraded)
	assert.Equal(t, 0, res.Report.Contradictions.TotalFound)
	assert.NotNil(t, res.Report.Contradictions.Items)

	// Sibling stages are untouched
	assert.Equal(t, 1, res.Report.SpellingErrors.TotalFound)
	assert.Equal(t, 1, res.Report.UnsupportedClaims.TotalFound)
	assert.Equal(t, 1, res.Report.UndefinedTerms.TotalFound)
}

func TestAnalyze_OracleErrorDegrades(t *testing.T) {
	static := oracle.NewStatic(typoCandidates())
	failing := oracle.Func(func(ctx context.Context, req oracle.Request) (*oracle.Candidates, error) {
		if req.Task == model.DetectorUnsupportedClaims {
			return nil, errors.New("provider unavailable")
		}
		return static.Infer(ctx, req)
	})

	res, err := newPipeline(failing).Run(context.Background(), Input{Content: typoText})
	require.NoError(t, err)
	assert.Equal(t, []model.Detector{model.DetectorUnsupportedClaims}, res.Degraded)
	assert.Equal(t, 0, res.Report.UnsupportedClaims.TotalFound)
	assert.Equal(t, 2, res.Report.Summary.TotalIssues)
}

func TestAnalyze_Idempotent(t *testing.T) {
	cands := typoCandidates()
	cands.Jumps = []oracle.JumpCandidate{{FromParagraph: 1, ToParagraph: 2, CoherenceScore: ptr(0.4)}}
	p := newPipeline(oracle.NewStatic(cands))
	in := Input{Content: typoText + "\n\n" + cookingText}

	first, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)
	second, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyze_TyposAndAbsoluteClaim(t *testing.T) {
	p := newPipeline(oracle.NewHeuristic(nil))

	report, err := p.Analyze(context.Background(), Input{
		Content: "Ths is a smple test. It always works for everyone.",
	})
	require.NoError(t, err)

	require.Len(t, report.SpellingErrors.Items, 2)
	first, second := report.SpellingErrors.Items[0], report.SpellingErrors.Items[1]
	assert.Equal(t, "Ths", first.Original)
	assert.Equal(t, "This", first.Suggested)
	assert.Equal(t, 0, first.StartPos)
	assert.Equal(t, 3, first.EndPos)
	assert.Equal(t, "smple", second.Original)
	assert.Equal(t, "simple", second.Suggested)
	assert.Equal(t, 9, second.StartPos)
	assert.Equal(t, 14, second.EndPos)

	require.Len(t, report.UnsupportedClaims.Items, 1)
	claim := report.UnsupportedClaims.Items[0]
	assert.Equal(t, model.StatusUnsupported, claim.Status)
	assert.Equal(t, model.ClaimTypeAbsolute, claim.ClaimType)

	assert.Zero(t, report.Contradictions.TotalFound)
	assert.Zero(t, report.UndefinedTerms.TotalFound)
	assert.Zero(t, report.LogicalJumps.TotalFound)
	assert.Equal(t, 3, report.Summary.TotalIssues)
	assert.InDelta(t, 50.0, report.Summary.DocumentQualityScore, 0.01)
}

func TestAnalyze_DefinitionAfterFirstUse(t *testing.T) {
	p := newPipeline(oracle.NewStatic(&oracle.Candidates{
		Terms: []oracle.TermCandidate{{Term: "Quantum Efficiency Score"}},
	}))
	in := Input{Content: "Our lab reports the Quantum Efficiency Score every week. Results vary by season. " +
		"The score, which is defined as the ratio of converted photons to incident photons, rose in May."}

	report, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, report.UndefinedTerms.TotalFound)

	terms, err := p.AnalyzeTerms(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, terms.UndefinedTerms)
	require.Len(t, terms.DefinedTerms, 1)
	assert.Equal(t, "Quantum Efficiency Score", terms.DefinedTerms[0].Term)
	assert.True(t, terms.DefinedTerms[0].IsDefined)
}

func TestAnalyze_JumpThresholdCannotLoosen(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Oracle.StageTimeout = 100 * time.Millisecond
	cfg.Jumps.CoherenceThreshold = 0.95
	p := New(cfg, oracle.NewStatic(&oracle.Candidates{
		Jumps: []oracle.JumpCandidate{{FromParagraph: 1, ToParagraph: 2, CoherenceScore: ptr(0.85)}},
	}), WithClock(func() time.Time { return fixedNow }))

	report, err := p.Analyze(context.Background(), Input{Content: cookingText})
	require.NoError(t, err)
	assert.Zero(t, report.LogicalJumps.TotalFound)
}

func TestAnalyze_MalformedInput(t *testing.T) {
	p := newPipeline(oracle.NewStatic(nil))

	for _, content := range []string{"", "   \n\n  "} {
		report, err := p.Analyze(context.Background(), Input{Content: content})
		assert.Nil(t, report)
		assert.True(t, errors.Is(err, model.ErrMalformedInput), "content %q", content)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(oracle.NewStatic(typoCandidates())).Analyze(ctx, Input{Content: typoText})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), err.Error())
	assert.False(t, errors.Is(err, model.ErrOracleTimeout))
}

func TestAnalyzeTerms(t *testing.T) {
	p := newPipeline(oracle.NewStatic(&oracle.Candidates{
		Terms: []oracle.TermCandidate{{Term: "ZKR"}, {Term: "QES"}},
	}))

	report, err := p.AnalyzeTerms(context.Background(), Input{
		Content: "We track ZKR daily. Output varies. ZKR means the share of photons converted. QES rose.",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTermsFound)
	require.Len(t, report.DefinedTerms, 1)
	assert.Equal(t, "ZKR", report.DefinedTerms[0].Term)
	require.Len(t, report.UndefinedTerms, 1)
	assert.Equal(t, "QES", report.UndefinedTerms[0].Term)
}

func TestAnalyzeTerms_SuppressedBySpelling(t *testing.T) {
	p := newPipeline(oracle.NewStatic(&oracle.Candidates{
		Spelling: []oracle.SpellingCandidate{{Original: "ZKRR", Suggested: "ZKR", StartPos: 9, EndPos: 13}},
		Terms:    []oracle.TermCandidate{{Term: "ZKRR"}},
	}))

	report, err := p.AnalyzeTerms(context.Background(), Input{Content: "We track ZKRR daily."})
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalTermsFound)
	assert.NotNil(t, report.UndefinedTerms)
	assert.NotNil(t, report.DefinedTerms)
}

func TestAnalyzeClaims(t *testing.T) {
	p := newPipeline(oracle.NewStatic(&oracle.Candidates{
		Claims: []oracle.ClaimCandidate{
			{Claim: "Sales rose sharply last year.", Location: "Paragraph 1, Sentence 1"},
		},
	}))

	report, err := p.AnalyzeClaims(context.Background(), Input{Content: "Sales rose sharply last year. Revenue grew 12% in 2021."})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalClaimsFound)
	assert.Empty(t, report.UnsupportedClaims)
	require.Len(t, report.SupportedClaims, 1)
	assert.Equal(t, "12%", report.SupportedClaims[0].Evidence)
}

func TestAnalyzeClaims_OracleFailure(t *testing.T) {
	p := newPipeline(blocking(oracle.NewStatic(nil), model.DetectorUnsupportedClaims))

	report, err := p.AnalyzeClaims(context.Background(), Input{Content: "Sales rose sharply last year."})
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, model.ErrOracleTimeout))
}

func TestResolveSpans(t *testing.T) {
	l := ledger.New()
	_, err := l.Claim(model.Span{Start: 40, End: 42})
	require.NoError(t, err)
	view := l.Freeze()

	items := []model.Span{
		{Start: 0, End: 10},
		{Start: 5, End: 8},
		{Start: 20, End: 25},
		{Start: 22, End: 30},
		{Start: 41, End: 45},
	}
	id := func(s model.Span) model.Span { return s }

	kept, dropped := resolveSpans(items, id, view, nil)
	assert.Equal(t, []model.Span{{Start: 0, End: 10}, {Start: 22, End: 30}}, kept)
	assert.Equal(t, []int{1, 2, 4}, dropped)

	t.Run("ties keep the earlier item", func(t *testing.T) {
		kept, dropped := resolveSpans([]model.Span{{Start: 0, End: 4}, {Start: 2, End: 6}}, id, ledger.View{}, nil)
		assert.Equal(t, []model.Span{{Start: 0, End: 4}}, kept)
		assert.Equal(t, []int{1}, dropped)
	})

	t.Run("taken spans block", func(t *testing.T) {
		kept, dropped := resolveSpans([]model.Span{{Start: 0, End: 4}}, id, ledger.View{}, []model.Span{{Start: 3, End: 9}})
		assert.Empty(t, kept)
		assert.Equal(t, []int{0}, dropped)
	})
}

func TestRenderer(t *testing.T) {
	report, err := newPipeline(oracle.NewStatic(typoCandidates())).Analyze(context.Background(), Input{Content: typoText})
	require.NoError(t, err)

	dir := t.TempDir()
	r := NewRenderer()
	var out bytes.Buffer
	r.SetOutput(&out)

	jsonPath := filepath.Join(dir, "out", "report.json")
	require.NoError(t, r.RenderJSON(report, jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Len(t, top, 7)
	for _, key := range []string{"analysis_metadata", "contradictions", "undefined_terms", "unsupported_claims", "logical_jumps", "spelling_errors", "summary"} {
		assert.Contains(t, top, key)
	}

	md := Markdown(report)
	assert.Contains(t, md, "# LogicGuard Report")
	assert.Contains(t, md, "## Unsupported Claims (1)")
	assert.Contains(t, md, "## Spelling (1)")
	assert.Contains(t, md, "`Teh` → `The`")
	assert.NotContains(t, md, "## Contradictions")

	r.RenderSummary(report)
	assert.Contains(t, out.String(), "Quality score: 50.0/100")

	out.Reset()
	require.NoError(t, r.RenderJSON(report, "-"))
	assert.True(t, json.Valid(out.Bytes()))
}
