// Package validate is the final gate on an assembled report. It checks
// every structural and semantic invariant and reports the first violation.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/ledger"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/score"
)

// Invariant names carried by SchemaInvariantError
const (
	InvariantCountConsistency = "count_consistency"
	InvariantTotalIssues      = "total_issues"
	InvariantCriticalIssues   = "critical_issues"
	InvariantQualityScore     = "quality_score"
	InvariantMetadata         = "metadata"
	InvariantEnumDomain       = "enum_domain"
	InvariantFieldRange       = "field_range"
	InvariantSpellingOffsets  = "spelling_offsets"
	InvariantSpellingLedger   = "spelling_ledger"
	InvariantLedgerOverlap    = "ledger_overlap"
	InvariantJumpThreshold    = "jump_threshold"
	InvariantJumpPairing      = "jump_pairing"
	InvariantContradictionIDs = "contradiction_ids"
)

// qualityTolerance absorbs float noise when recomputing the quality score
const qualityTolerance = 1e-6

var itemIndex = regexp.MustCompile(`Items\[(\d+)\]`)

// sectionFields maps report field names to their detectors
var sectionFields = map[string]model.Detector{
	"SpellingErrors":    model.DetectorSpelling,
	"UnsupportedClaims": model.DetectorUnsupportedClaims,
	"UndefinedTerms":    model.DetectorUndefinedTerms,
	"Contradictions":    model.DetectorContradictions,
	"LogicalJumps":      model.DetectorLogicalJumps,
}

// Validator checks reports against a document and its spelling ledger
type Validator struct {
	threshold float64
	tags      *validator.Validate
}

// NewValidator creates a validator. threshold is the coherence score below
// which a jump may be reported; it is capped at model.MaxCoherenceThreshold.
func NewValidator(threshold float64) *Validator {
	return &Validator{
		threshold: model.JumpsConfig{CoherenceThreshold: threshold}.Threshold(),
		tags:      validator.New(),
	}
}

// Validate returns nil or the first violated invariant as a
// *model.SchemaInvariantError
func (v *Validator) Validate(r *model.AnalysisReport, doc *document.Document, view ledger.View) error {
	checks := []func(*model.AnalysisReport, *document.Document, ledger.View) error{
		v.checkCounts,
		v.checkSummary,
		v.checkMetadata,
		v.checkTags,
		v.checkSpelling,
		v.checkLedgerOverlap,
		v.checkJumps,
		v.checkContradictions,
	}
	for _, check := range checks {
		if err := check(r, doc, view); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTerms checks the terms-only report shape
func (v *Validator) ValidateTerms(r *model.TermsReport, view ledger.View) error {
	if r.TotalTermsFound != len(r.UndefinedTerms)+len(r.DefinedTerms) {
		return violation(InvariantCountConsistency, model.DetectorUndefinedTerms, -1,
			"total_terms_found %d, items %d", r.TotalTermsFound, len(r.UndefinedTerms)+len(r.DefinedTerms))
	}
	for i, t := range append(append([]model.TermFinding{}, r.UndefinedTerms...), r.DefinedTerms...) {
		if err := v.tagError(t, model.DetectorUndefinedTerms, i); err != nil {
			return err
		}
		if !t.Span.Empty() && view.Overlaps(t.Span) {
			return violation(InvariantLedgerOverlap, model.DetectorUndefinedTerms, i, "term %q overlaps a spelling finding", t.Term)
		}
	}
	return nil
}

// ValidateClaims checks the claims-only report shape
func (v *Validator) ValidateClaims(r *model.ClaimsReport, view ledger.View) error {
	if r.TotalClaimsFound != len(r.UnsupportedClaims)+len(r.SupportedClaims) {
		return violation(InvariantCountConsistency, model.DetectorUnsupportedClaims, -1,
			"total_claims_found %d, items %d", r.TotalClaimsFound, len(r.UnsupportedClaims)+len(r.SupportedClaims))
	}
	for i, c := range r.UnsupportedClaims {
		if err := v.tagError(c, model.DetectorUnsupportedClaims, i); err != nil {
			return err
		}
		if c.Status == model.StatusSupported {
			return violation(InvariantEnumDomain, model.DetectorUnsupportedClaims, i, "supported claim listed as unsupported")
		}
		if !c.Span.Empty() && view.Overlaps(c.Span) {
			return violation(InvariantLedgerOverlap, model.DetectorUnsupportedClaims, i, "claim overlaps a spelling finding")
		}
	}
	for i, c := range r.SupportedClaims {
		if c.Status != model.StatusSupported {
			return violation(InvariantEnumDomain, model.DetectorUnsupportedClaims, i, "supported_claims item has status %q", c.Status)
		}
	}
	return nil
}

func (v *Validator) checkCounts(r *model.AnalysisReport, _ *document.Document, _ ledger.View) error {
	counts := []struct {
		d     model.Detector
		total int
		items int
	}{
		{model.DetectorSpelling, r.SpellingErrors.TotalFound, len(r.SpellingErrors.Items)},
		{model.DetectorUnsupportedClaims, r.UnsupportedClaims.TotalFound, len(r.UnsupportedClaims.Items)},
		{model.DetectorUndefinedTerms, r.UndefinedTerms.TotalFound, len(r.UndefinedTerms.Items)},
		{model.DetectorContradictions, r.Contradictions.TotalFound, len(r.Contradictions.Items)},
		{model.DetectorLogicalJumps, r.LogicalJumps.TotalFound, len(r.LogicalJumps.Items)},
	}
	for _, c := range counts {
		if c.total != c.items {
			return violation(InvariantCountConsistency, c.d, -1, "total_found %d, items %d", c.total, c.items)
		}
	}
	return nil
}

func (v *Validator) checkSummary(r *model.AnalysisReport, _ *document.Document, _ ledger.View) error {
	sum := 0
	for _, n := range r.SectionTotals() {
		sum += n
	}
	if r.Summary.TotalIssues != sum {
		return violation(InvariantTotalIssues, "", -1, "total_issues %d, sections sum to %d", r.Summary.TotalIssues, sum)
	}

	critical := 0
	for _, c := range r.UnsupportedClaims.Items {
		if c.Status == model.StatusUnsupported {
			critical++
		}
	}
	for _, c := range r.Contradictions.Items {
		if c.Severity == model.SeverityHigh {
			critical++
		}
	}
	for _, j := range r.LogicalJumps.Items {
		if j.Severity == model.SeverityHigh {
			critical++
		}
	}
	if r.Summary.CriticalIssues != critical {
		return violation(InvariantCriticalIssues, "", -1, "critical_issues %d, findings give %d", r.Summary.CriticalIssues, critical)
	}

	q := r.Summary.DocumentQualityScore
	if math.IsNaN(q) || q < 0 || q > 100 {
		return violation(InvariantQualityScore, "", -1, "document_quality_score %v outside [0, 100]", q)
	}
	if want := score.Quality(sum, r.Metadata.TotalSentences); math.Abs(q-want) > qualityTolerance {
		return violation(InvariantQualityScore, "", -1, "document_quality_score %v, formula gives %v", q, want)
	}
	return nil
}

func (v *Validator) checkMetadata(r *model.AnalysisReport, doc *document.Document, _ ledger.View) error {
	if _, err := time.Parse(time.RFC3339, r.Metadata.AnalyzedAt); err != nil {
		return violation(InvariantMetadata, "", -1, "analyzed_at %q is not RFC 3339", r.Metadata.AnalyzedAt)
	}
	if doc == nil {
		return nil
	}
	if r.Metadata.TotalParagraphs != len(doc.Paragraphs) {
		return violation(InvariantMetadata, "", -1, "total_paragraphs %d, document has %d", r.Metadata.TotalParagraphs, len(doc.Paragraphs))
	}
	if r.Metadata.TotalSentences != doc.SentenceCount() {
		return violation(InvariantMetadata, "", -1, "total_sentences %d, document has %d", r.Metadata.TotalSentences, doc.SentenceCount())
	}
	return nil
}

// checkTags runs the struct-tag rules (enum domains, ranges, required fields)
func (v *Validator) checkTags(r *model.AnalysisReport, _ *document.Document, _ ledger.View) error {
	return v.tagError(r, "", -1)
}

func (v *Validator) tagError(s interface{}, stage model.Detector, index int) error {
	err := v.tags.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return violation(InvariantFieldRange, stage, index, "%v", err)
	}

	fe := fieldErrs[0]
	invariant := InvariantFieldRange
	if fe.Tag() == "oneof" {
		invariant = InvariantEnumDomain
	}
	if stage == "" {
		stage, index = locate(fe.Namespace())
	}
	detail := fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
	if fe.Param() != "" {
		detail = fmt.Sprintf("%s fails %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
	return violation(invariant, stage, index, "%s", detail)
}

// locate maps a validator namespace such as
// "AnalysisReport.SpellingErrors.Items[2].Language" to (stage, index)
func locate(namespace string) (model.Detector, int) {
	var stage model.Detector
	for _, part := range strings.Split(namespace, ".") {
		if d, ok := sectionFields[part]; ok {
			stage = d
			break
		}
	}
	index := -1
	if m := itemIndex.FindStringSubmatch(namespace); m != nil {
		index, _ = strconv.Atoi(m[1])
	}
	return stage, index
}

func (v *Validator) checkSpelling(r *model.AnalysisReport, doc *document.Document, view ledger.View) error {
	const d = model.DetectorSpelling
	items := r.SpellingErrors.Items
	for i, f := range items {
		if doc != nil {
			got, ok := doc.Slice(f.StartPos, f.EndPos)
			if !ok || got != f.Original {
				return violation(InvariantSpellingOffsets, d, i, "text[%d:%d] is %q, original is %q", f.StartPos, f.EndPos, got, f.Original)
			}
		}
		if i > 0 && f.StartPos < items[i-1].EndPos {
			return violation(InvariantSpellingOffsets, d, i, "overlaps or precedes item %d", i-1)
		}
		if !view.Contains(f.Span()) {
			return violation(InvariantSpellingLedger, d, i, "span [%d, %d) missing from the ledger", f.StartPos, f.EndPos)
		}
	}
	if view.Len() != len(items) {
		return violation(InvariantSpellingLedger, d, -1, "ledger holds %d spans, report %d findings", view.Len(), len(items))
	}
	return nil
}

func (v *Validator) checkLedgerOverlap(r *model.AnalysisReport, _ *document.Document, view ledger.View) error {
	for i, c := range r.UnsupportedClaims.Items {
		if !c.Span.Empty() && view.Overlaps(c.Span) {
			return violation(InvariantLedgerOverlap, model.DetectorUnsupportedClaims, i, "claim overlaps a spelling finding")
		}
	}
	for i, t := range r.UndefinedTerms.Items {
		if !t.Span.Empty() && view.Overlaps(t.Span) {
			return violation(InvariantLedgerOverlap, model.DetectorUndefinedTerms, i, "term %q overlaps a spelling finding", t.Term)
		}
	}
	return nil
}

func (v *Validator) checkJumps(r *model.AnalysisReport, doc *document.Document, _ ledger.View) error {
	const d = model.DetectorLogicalJumps
	for i, j := range r.LogicalJumps.Items {
		if math.IsNaN(j.CoherenceScore) || j.CoherenceScore < 0 || j.CoherenceScore >= v.threshold {
			return violation(InvariantJumpThreshold, d, i, "coherence_score %v not below %v", j.CoherenceScore, v.threshold)
		}
		if j.ToParagraph != j.FromParagraph+1 {
			return violation(InvariantJumpPairing, d, i, "paragraphs %d→%d are not consecutive", j.FromParagraph, j.ToParagraph)
		}
		if doc != nil && j.ToParagraph > len(doc.Paragraphs) {
			return violation(InvariantJumpPairing, d, i, "paragraph %d does not exist", j.ToParagraph)
		}
	}
	return nil
}

func (v *Validator) checkContradictions(r *model.AnalysisReport, _ *document.Document, _ ledger.View) error {
	for i, c := range r.Contradictions.Items {
		if c.ID != i+1 {
			return violation(InvariantContradictionIDs, model.DetectorContradictions, i, "id %d, want %d", c.ID, i+1)
		}
	}
	return nil
}

func violation(invariant string, stage model.Detector, index int, format string, args ...any) error {
	return &model.SchemaInvariantError{
		Invariant: invariant,
		Stage:     stage,
		Index:     index,
		Detail:    fmt.Sprintf(format, args...),
	}
}
