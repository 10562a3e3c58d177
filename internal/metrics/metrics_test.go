package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/logicguard/internal/model"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.AddFindings(model.DetectorSpelling, 3)
	r.AddFindings(model.DetectorSpelling, 0)
	r.Rejected(model.DetectorSpelling, &model.CandidateError{
		Detector: model.DetectorSpelling,
		Err:      &model.OffsetMismatchError{Original: "teh"},
	})
	r.Rejected(model.DetectorUndefinedTerms, model.RejectCandidate(model.DetectorUndefinedTerms, 0, "dup"))
	r.Degraded(model.DetectorContradictions)
	r.ObserveStage(model.DetectorSpelling, 20*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.findings.WithLabelValues("spelling")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejected.WithLabelValues("spelling", "offset_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejected.WithLabelValues("undefined_terms", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degraded.WithLabelValues("contradictions")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_RunFinished(t *testing.T) {
	r := NewRecorder()

	r.RunFinished(&model.AnalysisReport{Summary: model.Summary{DocumentQualityScore: 80}}, nil)
	r.RunFinished(nil, &model.SchemaInvariantError{Invariant: "count_consistency", Index: -1})
	r.RunFinished(nil, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("schema_invariant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("error")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.AddFindings(model.DetectorSpelling, 1)
	r.Rejected(model.DetectorSpelling, errors.New("x"))
	r.Degraded(model.DetectorSpelling)
	r.ObserveStage(model.DetectorSpelling, time.Second)
	r.RunFinished(nil, nil)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.AddFindings(model.DetectorLogicalJumps, 2)

	path := filepath.Join(t.TempDir(), "logicguard.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `logicguard_findings_total{detector="logical_jumps"} 2`))
}
