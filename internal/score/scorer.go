package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/logicguard/internal/model"
)

// densityCeiling is the issues-per-sentence rate at which quality hits 0
const densityCeiling = 3.0

// maxRecommendations caps key_recommendations
const maxRecommendations = 3

// SignalType names a diagnostic signal
type SignalType string

const (
	SignalIssueDensity   SignalType = "issue_density"
	SignalCriticalIssues SignalType = "critical_issues"
	SignalSection        SignalType = "section"
)

// SignalSeverity grades a signal for display
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Signal explains one input to the summary. Data carries the numbers and
// the formula so the score can be checked by hand.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Sections are the validated findings of the five detectors
type Sections struct {
	Spelling       []model.SpellingFinding
	Claims         []model.ClaimFinding
	Terms          []model.TermFinding
	Contradictions []model.ContradictionFinding
	Jumps          []model.JumpFinding
}

// Total returns the number of findings across all sections
func (s Sections) Total() int {
	return len(s.Spelling) + len(s.Claims) + len(s.Terms) + len(s.Contradictions) + len(s.Jumps)
}

// Result is the summary with the signals behind it
type Result struct {
	Summary model.Summary
	Signals []Signal
}

// Scorer builds the report summary
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate derives totals, the critical count, the quality score and the
// key recommendations. lang selects the language of templated advice.
func (s *Scorer) Calculate(sec Sections, sentences int, lang model.Language) Result {
	var signals []Signal

	total := sec.Total()

	// 1. Critical issues
	critical, criticalSignal := s.countCritical(sec)
	signals = append(signals, criticalSignal)

	// 2. Quality from issue density
	quality, densitySignal := s.calculateQuality(total, sentences)
	signals = append(signals, densitySignal)

	// 3. Per-section counts
	signals = append(signals, s.sectionSignals(sec)...)

	return Result{
		Summary: model.Summary{
			TotalIssues:          total,
			CriticalIssues:       critical,
			DocumentQualityScore: quality,
			KeyRecommendations:   s.recommend(sec, lang),
		},
		Signals: signals,
	}
}

// Quality returns the document quality score for a total and sentence count
func Quality(totalIssues, sentences int) float64 {
	q, _ := NewScorer().calculateQuality(totalIssues, sentences)
	return q
}

// calculateQuality maps issue density onto 0-100
func (s *Scorer) calculateQuality(total, sentences int) (float64, Signal) {
	denom := sentences
	if denom < 1 {
		denom = 1
	}
	density := float64(total) / float64(denom)
	score := 100 * (1 - math.Min(density, densityCeiling)/densityCeiling)
	score = math.Max(0, math.Min(100, score))

	severity := SeverityInfo
	if density >= 1 {
		severity = SeverityCritical
	} else if density >= 0.3 {
		severity = SeverityWarning
	}

	return score, Signal{
		Type:        SignalIssueDensity,
		Severity:    severity,
		Description: fmt.Sprintf("%d issues over %d sentences (%.2f per sentence)", total, sentences, density),
		Data: map[string]interface{}{
			"total_issues": total,
			"sentences":    sentences,
			"density":      density,
			"score":        score,
			"formula":      "100 * (1 - min(total_issues / max(sentences, 1), 3) / 3)",
		},
	}
}

// countCritical counts unsupported claims plus high-severity contradictions
// and jumps
func (s *Scorer) countCritical(sec Sections) (int, Signal) {
	unsupported := 0
	for _, c := range sec.Claims {
		if c.Status == model.StatusUnsupported {
			unsupported++
		}
	}
	contradictions := 0
	for _, c := range sec.Contradictions {
		if c.Severity == model.SeverityHigh {
			contradictions++
		}
	}
	jumps := 0
	for _, j := range sec.Jumps {
		if j.Severity == model.SeverityHigh {
			jumps++
		}
	}

	critical := unsupported + contradictions + jumps
	severity := SeverityInfo
	if critical > 0 {
		severity = SeverityCritical
	}

	return critical, Signal{
		Type:        SignalCriticalIssues,
		Severity:    severity,
		Description: fmt.Sprintf("%d critical issues", critical),
		Data: map[string]interface{}{
			"unsupported_claims":  unsupported,
			"high_contradictions": contradictions,
			"high_jumps":          jumps,
			"formula":             "unsupported claims + high contradictions + high jumps",
		},
	}
}

func (s *Scorer) sectionSignals(sec Sections) []Signal {
	counts := []struct {
		detector model.Detector
		n        int
	}{
		{model.DetectorSpelling, len(sec.Spelling)},
		{model.DetectorUnsupportedClaims, len(sec.Claims)},
		{model.DetectorUndefinedTerms, len(sec.Terms)},
		{model.DetectorContradictions, len(sec.Contradictions)},
		{model.DetectorLogicalJumps, len(sec.Jumps)},
	}

	var out []Signal
	for _, c := range counts {
		if c.n == 0 {
			continue
		}
		out = append(out, Signal{
			Type:        SignalSection,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("%s: %d", c.detector, c.n),
			Data:        map[string]interface{}{"detector": string(c.detector), "count": c.n},
		})
	}
	return out
}

// recommend picks up to three recommendations, one per non-empty section,
// most critical section first. The first finding's suggestion is used when
// it has one.
func (s *Scorer) recommend(sec Sections, lang model.Language) []string {
	vi := lang == model.LanguageVI || lang == model.LanguageMixed
	var recs []string
	add := func(suggestion, fallback string) {
		if len(recs) == maxRecommendations {
			return
		}
		r := strings.TrimSpace(suggestion)
		if r == "" {
			r = fallback
		}
		for _, existing := range recs {
			if existing == r {
				r = fallback
				break
			}
		}
		for _, existing := range recs {
			if existing == r {
				return
			}
		}
		recs = append(recs, r)
	}

	if n := len(sec.Claims); n > 0 {
		add(sec.Claims[0].Suggestion, template(vi,
			fmt.Sprintf("Back up %d claim(s) with data, examples or citations.", n),
			fmt.Sprintf("Bổ sung dẫn chứng cho %d luận điểm.", n)))
	}
	if n := len(sec.Contradictions); n > 0 {
		add(sec.Contradictions[0].Suggestion, template(vi,
			fmt.Sprintf("Resolve %d contradiction(s) between statements.", n),
			fmt.Sprintf("Giải quyết %d mâu thuẫn giữa các câu.", n)))
	}
	if n := len(sec.Jumps); n > 0 {
		add(sec.Jumps[0].Suggestion, template(vi,
			fmt.Sprintf("Add transitions at %d abrupt topic shift(s).", n),
			fmt.Sprintf("Thêm câu chuyển ý tại %d chỗ chuyển chủ đề đột ngột.", n)))
	}
	if n := len(sec.Terms); n > 0 {
		add(sec.Terms[0].Suggestion, template(vi,
			fmt.Sprintf("Define %d technical term(s) at first use.", n),
			fmt.Sprintf("Định nghĩa %d thuật ngữ ngay lần đầu xuất hiện.", n)))
	}
	if n := len(sec.Spelling); n > 0 {
		f := sec.Spelling[0]
		add("", template(vi,
			fmt.Sprintf("Fix %d spelling error(s), e.g. %q → %q.", n, f.Original, f.Suggested),
			fmt.Sprintf("Sửa %d lỗi chính tả, ví dụ \"%s\" → \"%s\".", n, f.Original, f.Suggested)))
	}

	if recs == nil {
		recs = []string{}
	}
	return recs
}

func template(vi bool, en, viText string) string {
	if vi {
		return viText
	}
	return en
}
