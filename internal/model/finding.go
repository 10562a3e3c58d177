package model

// Span is a zero-based, end-exclusive range of character (code point)
// offsets into the original document text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of characters covered
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers nothing
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Overlaps reports whether s and o share at least one character
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely inside s
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Severity grades contradictions and logical jumps
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// ContradictionType classifies a pair of conflicting statements
type ContradictionType string

const (
	ContradictionFactual   ContradictionType = "factual"
	ContradictionNumerical ContradictionType = "numerical"
	ContradictionTemporal  ContradictionType = "temporal"
	ContradictionLogical   ContradictionType = "logical"
)

// Valid reports whether t is a known contradiction type
func (t ContradictionType) Valid() bool {
	switch t {
	case ContradictionFactual, ContradictionNumerical, ContradictionTemporal, ContradictionLogical:
		return true
	}
	return false
}

// SpellingFinding is a misspelled token with its exact position
type SpellingFinding struct {
	Original  string   `json:"original" validate:"required"`
	Suggested string   `json:"suggested" validate:"required,nefield=Original"`
	StartPos  int      `json:"start_pos" validate:"gte=0"`
	EndPos    int      `json:"end_pos" validate:"gtfield=StartPos"`
	Language  Language `json:"language" validate:"oneof=en vi"`
	Reason    string   `json:"reason"`
}

// Span returns the finding's character range
func (f SpellingFinding) Span() Span {
	return Span{Start: f.StartPos, End: f.EndPos}
}

// TermFinding is a technical term and whether the text defines it
type TermFinding struct {
	Term            string `json:"term" validate:"required"`
	FirstAppeared   string `json:"first_appeared" validate:"required"`
	ContextSnippet  string `json:"context_snippet"`
	IsDefined       bool   `json:"is_defined"`
	Reason          string `json:"reason"`
	Suggestion      string `json:"suggestion"`
	DefinitionFound string `json:"definition_found,omitempty"`

	Span Span `json:"-"` // First occurrence of the term
}

// ContradictionFinding is a pair of statements that cannot both hold
type ContradictionFinding struct {
	ID                int               `json:"id" validate:"gte=1"`
	Sentence1         string            `json:"sentence1" validate:"required"`
	Sentence2         string            `json:"sentence2" validate:"required"`
	Sentence1Location string            `json:"sentence1_location" validate:"required"`
	Sentence2Location string            `json:"sentence2_location" validate:"required"`
	ContradictionType ContradictionType `json:"contradiction_type" validate:"oneof=factual numerical temporal logical"`
	Severity          Severity          `json:"severity" validate:"oneof=high medium low"`
	Explanation       string            `json:"explanation"`
	Suggestion        string            `json:"suggestion"`

	First  Span `json:"-"`
	Second Span `json:"-"`
}

// JumpFinding is an abrupt transition between consecutive paragraphs
type JumpFinding struct {
	FromParagraph        int      `json:"from_paragraph" validate:"gte=1"`
	ToParagraph          int      `json:"to_paragraph" validate:"gtfield=FromParagraph"`
	FromParagraphSummary string   `json:"from_paragraph_summary"`
	ToParagraphSummary   string   `json:"to_paragraph_summary"`
	CoherenceScore       float64  `json:"coherence_score" validate:"gte=0,lte=1"`
	Flag                 string   `json:"flag"`
	Severity             Severity `json:"severity" validate:"oneof=high medium low"`
	Explanation          string   `json:"explanation"`
	Suggestion           string   `json:"suggestion"`
}

// Jump flags the oracle uses
const (
	FlagAbruptTopicShift  = "abrupt_topic_shift"
	FlagMissingTransition = "missing_transition"
	FlagUnrelatedContent  = "unrelated_content"
)
