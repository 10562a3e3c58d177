// Package metrics counts findings, rejections and degraded detectors on a
// private Prometheus registry. A nil *Recorder is a valid no-op.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/logicguard/internal/model"
)

// Recorder holds the LogicGuard collectors
type Recorder struct {
	registry *prometheus.Registry

	findings *prometheus.CounterVec
	rejected *prometheus.CounterVec
	degraded *prometheus.CounterVec
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	quality  prometheus.Histogram
}

// NewRecorder creates a recorder on its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logicguard_findings_total",
			Help: "Accepted findings by detector",
		}, []string{"detector"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logicguard_candidates_rejected_total",
			Help: "Oracle candidates dropped during validation",
		}, []string{"detector", "kind"}),
		degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logicguard_detector_degraded_total",
			Help: "Detector sections emptied after an oracle error or timeout",
		}, []string{"detector"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logicguard_detector_duration_seconds",
			Help:    "Wall time per detector stage, oracle call included",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"detector"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logicguard_runs_total",
			Help: "Analysis runs by outcome",
		}, []string{"outcome"}),
		quality: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "logicguard_document_quality_score",
			Help:    "Quality score of completed reports",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		}),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// AddFindings counts n accepted findings for d
func (r *Recorder) AddFindings(d model.Detector, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.findings.WithLabelValues(string(d)).Add(float64(n))
}

// Rejected counts one dropped candidate, labelled by error kind
func (r *Recorder) Rejected(d model.Detector, err error) {
	if r == nil {
		return
	}
	r.rejected.WithLabelValues(string(d), model.Kind(err)).Inc()
}

// Degraded counts a section emptied by an oracle failure
func (r *Recorder) Degraded(d model.Detector) {
	if r == nil {
		return
	}
	r.degraded.WithLabelValues(string(d)).Inc()
}

// ObserveStage records how long a stage took
func (r *Recorder) ObserveStage(d model.Detector, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(string(d)).Observe(elapsed.Seconds())
}

// RunFinished counts a run and, on success, its quality score
func (r *Recorder) RunFinished(report *model.AnalysisReport, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.runs.WithLabelValues(model.Kind(err)).Inc()
		return
	}
	r.runs.WithLabelValues("ok").Inc()
	if report != nil {
		r.quality.Observe(report.Summary.DocumentQualityScore)
	}
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node_exporter textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
