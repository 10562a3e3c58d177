// Package oracle is the seam between the analysis core and whatever makes
// the linguistic judgments: a language model, offline heuristics or a
// recorded replay. Everything an oracle returns is a raw candidate; the
// detect package decides what becomes a finding.
package oracle

import (
	"context"
	"errors"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
)

// Oracle produces raw candidates for one detector task
type Oracle interface {
	// Name identifies the oracle in logs and cache keys
	Name() string

	// Infer returns candidates for req.Task. Only the section for that
	// task is populated.
	Infer(ctx context.Context, req Request) (*Candidates, error)
}

// Request asks for the candidates of one detector
type Request struct {
	Task     model.Detector
	Doc      *document.Document
	Context  model.AnalysisContext
	Language model.Language // Prompt language; auto uses the document hint
}

// language returns the concrete language for prompts and locations
func (r Request) language() model.Language {
	lang := r.Language.Resolve(r.Doc.Language)
	if lang == model.LanguageAuto || lang == "" {
		return model.LanguageEN
	}
	return lang
}

// Func adapts a plain function to the Oracle interface
type Func func(ctx context.Context, req Request) (*Candidates, error)

// Name returns "func"
func (f Func) Name() string { return "func" }

// Infer calls f
func (f Func) Infer(ctx context.Context, req Request) (*Candidates, error) {
	return f(ctx, req)
}

// ErrNoProvider is returned by New when an LLM oracle has no backend
var ErrNoProvider = errors.New("oracle: no LLM provider configured")

// Candidates are raw, unvalidated oracle outputs. Errors holds items the
// decoder could not parse, each a *model.CandidateError.
type Candidates struct {
	Spelling       []SpellingCandidate      `json:"spelling_errors,omitempty" yaml:"spelling_errors,omitempty"`
	Claims         []ClaimCandidate         `json:"unsupported_claims,omitempty" yaml:"unsupported_claims,omitempty"`
	Terms          []TermCandidate          `json:"undefined_terms,omitempty" yaml:"undefined_terms,omitempty"`
	Contradictions []ContradictionCandidate `json:"contradictions,omitempty" yaml:"contradictions,omitempty"`
	Jumps          []JumpCandidate          `json:"logical_jumps,omitempty" yaml:"logical_jumps,omitempty"`

	Errors []error `json:"-" yaml:"-"`
}

// Only returns a copy holding just the section (and decode errors) of task
func (c *Candidates) Only(task model.Detector) *Candidates {
	out := &Candidates{}
	if c == nil {
		return out
	}
	switch task {
	case model.DetectorSpelling:
		out.Spelling = c.Spelling
	case model.DetectorUnsupportedClaims:
		out.Claims = c.Claims
	case model.DetectorUndefinedTerms:
		out.Terms = c.Terms
	case model.DetectorContradictions:
		out.Contradictions = c.Contradictions
	case model.DetectorLogicalJumps:
		out.Jumps = c.Jumps
	}
	for _, err := range c.Errors {
		var ce *model.CandidateError
		if errors.As(err, &ce) && ce.Detector != task {
			continue
		}
		out.Errors = append(out.Errors, err)
	}
	return out
}

// Len returns the number of candidates across all sections
func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Spelling) + len(c.Claims) + len(c.Terms) + len(c.Contradictions) + len(c.Jumps)
}

// SpellingCandidate is a suspected misspelling with oracle-reported offsets
type SpellingCandidate struct {
	Original   string   `json:"original" yaml:"original"`
	Suggested  string   `json:"suggested" yaml:"suggested"`
	StartPos   int      `json:"start_pos" yaml:"start_pos"`
	EndPos     int      `json:"end_pos" yaml:"end_pos"`
	Language   string   `json:"language,omitempty" yaml:"language,omitempty"`
	Reason     string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// ClaimCandidate is an assertion the oracle believes needs evidence
type ClaimCandidate struct {
	Claim              string `json:"claim" yaml:"claim"`
	Location           string `json:"location" yaml:"location"`
	Status             string `json:"status,omitempty" yaml:"status,omitempty"`
	ClaimType          string `json:"claim_type,omitempty" yaml:"claim_type,omitempty"`
	Reason             string `json:"reason,omitempty" yaml:"reason,omitempty"`
	SurroundingContext string `json:"surrounding_context,omitempty" yaml:"surrounding_context,omitempty"`
	Suggestion         string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`

	// Evidence the oracle points at, if any
	EvidenceType     string `json:"evidence_type,omitempty" yaml:"evidence_type,omitempty"`
	Evidence         string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	EvidenceLocation string `json:"evidence_location,omitempty" yaml:"evidence_location,omitempty"`
	EvidenceSpecific *bool  `json:"evidence_specific,omitempty" yaml:"evidence_specific,omitempty"`
	EvidenceLink     bool   `json:"evidence_link,omitempty" yaml:"evidence_link,omitempty"`
}

// TermCandidate is a technical term with the oracle's definition verdict
type TermCandidate struct {
	Term            string `json:"term" yaml:"term"`
	FirstAppeared   string `json:"first_appeared" yaml:"first_appeared"`
	ContextSnippet  string `json:"context_snippet,omitempty" yaml:"context_snippet,omitempty"`
	IsDefined       bool   `json:"is_defined" yaml:"is_defined"`
	Reason          string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Suggestion      string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	DefinitionFound string `json:"definition_found,omitempty" yaml:"definition_found,omitempty"`
}

// ContradictionCandidate is a pair of statements the oracle says conflict
type ContradictionCandidate struct {
	Sentence1         string `json:"sentence1" yaml:"sentence1"`
	Sentence2         string `json:"sentence2" yaml:"sentence2"`
	Sentence1Location string `json:"sentence1_location" yaml:"sentence1_location"`
	Sentence2Location string `json:"sentence2_location" yaml:"sentence2_location"`
	ContradictionType string `json:"contradiction_type" yaml:"contradiction_type"`
	Severity          string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Explanation       string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Suggestion        string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	CentralToGoal     bool   `json:"central_to_goal,omitempty" yaml:"central_to_goal,omitempty"`
	Stylistic         bool   `json:"stylistic,omitempty" yaml:"stylistic,omitempty"`
}

// JumpCandidate scores the transition between two paragraphs
type JumpCandidate struct {
	FromParagraph        int      `json:"from_paragraph" yaml:"from_paragraph"`
	ToParagraph          int      `json:"to_paragraph" yaml:"to_paragraph"`
	FromParagraphSummary string   `json:"from_paragraph_summary,omitempty" yaml:"from_paragraph_summary,omitempty"`
	ToParagraphSummary   string   `json:"to_paragraph_summary,omitempty" yaml:"to_paragraph_summary,omitempty"`
	CoherenceScore       *float64 `json:"coherence_score" yaml:"coherence_score"`
	Flag                 string   `json:"flag,omitempty" yaml:"flag,omitempty"`
	Severity             string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Explanation          string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Suggestion           string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}
