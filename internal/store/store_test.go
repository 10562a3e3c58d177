package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/pipeline"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(t *testing.T, analyzedAt string, quality float64) *pipeline.Result {
	t.Helper()
	doc, err := document.Segment("Doanh thu tăng mạnh. Revenue grew.")
	require.NoError(t, err)

	report := &model.AnalysisReport{
		Metadata:          model.AnalysisMetadata{AnalyzedAt: analyzedAt, TotalParagraphs: 1, TotalSentences: 2},
		Contradictions:    model.NewSection[model.ContradictionFinding](nil),
		UndefinedTerms:    model.NewSection[model.TermFinding](nil),
		UnsupportedClaims: model.NewSection([]model.ClaimFinding{{Claim: "Revenue grew.", Location: "paragraph 1, sentence 2"}}),
		LogicalJumps:      model.NewSection[model.JumpFinding](nil),
		SpellingErrors:    model.NewSection[model.SpellingFinding](nil),
		Summary:           model.Summary{TotalIssues: 1, CriticalIssues: 1, DocumentQualityScore: quality, KeyRecommendations: []string{}},
	}
	return &pipeline.Result{Report: report, Doc: doc, Degraded: []model.Detector{model.DetectorLogicalJumps}}
}

func TestStore_SaveAndGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	run := NewRun("essay.txt", "essay", sampleResult(t, "2026-03-01T12:00:00Z", 75))
	require.NotEmpty(t, run.ID)
	assert.Len(t, run.Fingerprint, 64)
	require.NoError(t, s.Save(ctx, run))

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "essay.txt", got.Source)
	assert.Equal(t, "essay", got.Title)
	assert.Equal(t, run.Fingerprint, got.Fingerprint)
	assert.Equal(t, run.Language, got.Language)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), got.AnalyzedAt)
	assert.Equal(t, 1, got.TotalIssues)
	assert.Equal(t, 75.0, got.Quality)
	assert.Equal(t, []model.Detector{model.DetectorLogicalJumps}, got.Degraded)
	require.NotNil(t, got.Report)
	assert.Equal(t, "Revenue grew.", got.Report.UnsupportedClaims.Items[0].Claim)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_List(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, at := range []string{"2026-03-01T12:00:00Z", "2026-03-03T12:00:00Z", "2026-03-02T12:00:00Z"} {
		require.NoError(t, s.Save(ctx, NewRun("doc-"+at, "", sampleResult(t, at, 50))))
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "doc-2026-03-03T12:00:00Z", runs[0].Source)
	assert.Equal(t, "doc-2026-03-02T12:00:00Z", runs[1].Source)
	assert.Nil(t, runs[0].Report)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_SaveRequiresReport(t *testing.T) {
	s := openTemp(t)
	assert.Error(t, s.Save(context.Background(), &Run{Source: "x"}))
}
