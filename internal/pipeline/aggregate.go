package pipeline

import (
	"log/slog"
	"time"

	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/score"
)

// aggregate assembles the report from the current stage outputs
func (p *Pipeline) aggregate(r *run) *model.AnalysisReport {
	sec := score.Sections{
		Spelling:       r.spelling.Findings,
		Claims:         r.claims.Findings,
		Terms:          r.terms.Undefined,
		Contradictions: r.contradictions.Findings,
		Jumps:          r.jumps.Findings,
	}
	result := p.scorer.Calculate(sec, r.doc.SentenceCount(), r.lang)
	for _, s := range result.Signals {
		slog.Debug("score signal", "type", s.Type, "severity", s.Severity, "description", s.Description)
	}

	return &model.AnalysisReport{
		Metadata: model.AnalysisMetadata{
			AnalyzedAt:      p.clock().UTC().Format(time.RFC3339),
			WritingType:     r.in.Context.WritingType,
			TotalParagraphs: len(r.doc.Paragraphs),
			TotalSentences:  r.doc.SentenceCount(),
		},
		Contradictions:    model.NewSection(sec.Contradictions),
		UndefinedTerms:    model.NewSection(sec.Terms),
		UnsupportedClaims: model.NewSection(sec.Claims),
		LogicalJumps:      model.NewSection(sec.Jumps),
		SpellingErrors:    model.NewSection(sec.Spelling),
		Summary:           result.Summary,
	}
}
