package model

// AnalysisReport is the complete result of analyzing one document.
// The JSON shape has exactly seven top-level keys.
type AnalysisReport struct {
	Metadata          AnalysisMetadata              `json:"analysis_metadata"`
	Contradictions    Section[ContradictionFinding] `json:"contradictions"`
	UndefinedTerms    Section[TermFinding]          `json:"undefined_terms"`
	UnsupportedClaims Section[ClaimFinding]         `json:"unsupported_claims"`
	LogicalJumps      Section[JumpFinding]          `json:"logical_jumps"`
	SpellingErrors    Section[SpellingFinding]      `json:"spelling_errors"`
	Summary           Summary                       `json:"summary"`
}

// AnalysisMetadata describes the analyzed document
type AnalysisMetadata struct {
	AnalyzedAt      string `json:"analyzed_at" validate:"required"`
	WritingType     string `json:"writing_type"`
	TotalParagraphs int    `json:"total_paragraphs" validate:"gte=0"`
	TotalSentences  int    `json:"total_sentences" validate:"gte=0"`
}

// Section holds the findings of one detector
type Section[T any] struct {
	TotalFound int `json:"total_found" validate:"gte=0"`
	Items      []T `json:"items" validate:"dive"`
}

// NewSection builds a section whose count always matches its items.
// A nil slice becomes empty so it serializes as [].
func NewSection[T any](items []T) Section[T] {
	if items == nil {
		items = []T{}
	}
	return Section[T]{TotalFound: len(items), Items: items}
}

// Summary aggregates the five sections
type Summary struct {
	TotalIssues          int      `json:"total_issues" validate:"gte=0"`
	CriticalIssues       int      `json:"critical_issues" validate:"gte=0,ltefield=TotalIssues"`
	DocumentQualityScore float64  `json:"document_quality_score" validate:"gte=0,lte=100"`
	KeyRecommendations   []string `json:"key_recommendations" validate:"max=3"`
}

// SectionTotals returns the per-detector counts in priority order
func (r *AnalysisReport) SectionTotals() map[Detector]int {
	return map[Detector]int{
		DetectorSpelling:          r.SpellingErrors.TotalFound,
		DetectorUnsupportedClaims: r.UnsupportedClaims.TotalFound,
		DetectorUndefinedTerms:    r.UndefinedTerms.TotalFound,
		DetectorContradictions:    r.Contradictions.TotalFound,
		DetectorLogicalJumps:      r.LogicalJumps.TotalFound,
	}
}

// TermsReport is the result of the terms-only analysis mode
type TermsReport struct {
	TotalTermsFound int           `json:"total_terms_found"`
	UndefinedTerms  []TermFinding `json:"undefined_terms"`
	DefinedTerms    []TermFinding `json:"defined_terms"`
}

// NewTermsReport builds a TermsReport with consistent totals
func NewTermsReport(undefined, defined []TermFinding) *TermsReport {
	if undefined == nil {
		undefined = []TermFinding{}
	}
	if defined == nil {
		defined = []TermFinding{}
	}
	return &TermsReport{
		TotalTermsFound: len(undefined) + len(defined),
		UndefinedTerms:  undefined,
		DefinedTerms:    defined,
	}
}

// ClaimsReport is the result of the claims-only analysis mode
type ClaimsReport struct {
	TotalClaimsFound  int              `json:"total_claims_found"`
	UnsupportedClaims []ClaimFinding   `json:"unsupported_claims"`
	SupportedClaims   []SupportedClaim `json:"supported_claims"`
}

// NewClaimsReport builds a ClaimsReport with consistent totals
func NewClaimsReport(unsupported []ClaimFinding, supported []SupportedClaim) *ClaimsReport {
	if unsupported == nil {
		unsupported = []ClaimFinding{}
	}
	if supported == nil {
		supported = []SupportedClaim{}
	}
	return &ClaimsReport{
		TotalClaimsFound:  len(unsupported) + len(supported),
		UnsupportedClaims: unsupported,
		SupportedClaims:   supported,
	}
}
