package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/extract"
	"github.com/ppiankov/logicguard/internal/lexicon"
	"github.com/ppiankov/logicguard/internal/model"
)

// Coherence weights for the offline jump scorer
const (
	baseCoherence       = 0.35
	sharedWordBonus     = 0.20 // Per shared content word, up to three
	transitionBonus     = 0.30
	heuristicConfidence = 0.9
)

// Heuristic is an offline oracle built from keyword and lexicon rules.
// It needs no network and is deterministic.
type Heuristic struct {
	lex    *lexicon.Lexicon
	claims *extract.ClaimExtractor
	terms  *extract.TermExtractor
}

// NewHeuristic creates the offline oracle; nil uses the default lexicon
func NewHeuristic(lex *lexicon.Lexicon) *Heuristic {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Heuristic{
		lex:    lex,
		claims: extract.NewClaimExtractor(),
		terms:  extract.NewTermExtractor(lex),
	}
}

// Name returns "heuristic"
func (h *Heuristic) Name() string {
	return "heuristic"
}

// Infer runs the rule set for req.Task
func (h *Heuristic) Infer(ctx context.Context, req Request) (*Candidates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := req.language()
	out := &Candidates{}
	switch req.Task {
	case model.DetectorSpelling:
		out.Spelling = h.spelling(req.Doc)
	case model.DetectorUnsupportedClaims:
		out.Claims = h.claimCandidates(req.Doc, lang)
	case model.DetectorUndefinedTerms:
		out.Terms = h.termCandidates(req.Doc, lang)
	case model.DetectorContradictions:
		out.Contradictions = h.contradictions(ctx, req.Doc, lang)
	case model.DetectorLogicalJumps:
		out.Jumps = h.jumps(req.Doc)
	default:
		return nil, fmt.Errorf("unknown task %q", req.Task)
	}
	return out, ctx.Err()
}

func (h *Heuristic) spelling(doc *document.Document) []SpellingCandidate {
	var out []SpellingCandidate
	for _, w := range doc.Words() {
		fix, lang, ok := h.lex.Correction(w.Text)
		if !ok {
			continue
		}
		conf := heuristicConfidence
		out = append(out, SpellingCandidate{
			Original:   w.Text,
			Suggested:  fix,
			StartPos:   w.Span.Start,
			EndPos:     w.Span.End,
			Language:   string(lang),
			Reason:     fmt.Sprintf("%q is a common misspelling of %q", w.Text, fix),
			Confidence: &conf,
		})
	}
	return out
}

func (h *Heuristic) claimCandidates(doc *document.Document, lang model.Language) []ClaimCandidate {
	var out []ClaimCandidate
	for _, c := range h.claims.Extract(doc) {
		out = append(out, ClaimCandidate{
			Claim:              c.Text,
			Location:           document.Location(c.Sentence, lang),
			ClaimType:          c.Type,
			Reason:             "Assertion detected (" + c.Heuristic + ")",
			SurroundingContext: surrounding(doc, c.Sentence),
			Suggestion:         claimSuggestion(lang),
		})
	}
	return out
}

func (h *Heuristic) termCandidates(doc *document.Document, lang model.Language) []TermCandidate {
	var out []TermCandidate
	for _, t := range h.terms.Extract(doc) {
		if t.Sentence == nil {
			continue
		}
		out = append(out, TermCandidate{
			Term:           t.Text,
			FirstAppeared:  document.Location(t.Sentence, lang),
			ContextSnippet: t.Sentence.RawText,
			Reason:         "Specialized " + t.Kind + " used without an explanation",
			Suggestion:     termSuggestion(lang, t.Text),
		})
	}
	return out
}

func (h *Heuristic) contradictions(ctx context.Context, doc *document.Document, lang model.Language) []ContradictionCandidate {
	sentences := doc.Sentences()
	words := make([]map[string]bool, len(sentences))
	for i, s := range sentences {
		words[i] = extract.ContentWords(s.RawText)
	}

	var out []ContradictionCandidate
	for i := range sentences {
		if ctx.Err() != nil {
			return out
		}
		for j := i + 1; j < len(sentences); j++ {
			if extract.Shared(words[i], words[j]) < 2 {
				continue
			}
			a, b := sentences[i], sentences[j]
			conflict, ok := extract.Conflicting(a.RawText, b.RawText)
			if !ok {
				continue
			}
			out = append(out, ContradictionCandidate{
				Sentence1:         a.RawText,
				Sentence2:         b.RawText,
				Sentence1Location: document.Location(a, lang),
				Sentence2Location: document.Location(b, lang),
				ContradictionType: string(conflict.Type),
				Severity:          string(model.SeverityMedium),
				Explanation:       conflict.Reason,
				Suggestion:        contradictionSuggestion(lang),
			})
		}
	}
	return out
}

func (h *Heuristic) jumps(doc *document.Document) []JumpCandidate {
	var out []JumpCandidate
	for i := 0; i+1 < len(doc.Paragraphs); i++ {
		from, to := &doc.Paragraphs[i], &doc.Paragraphs[i+1]
		shared := extract.Shared(extract.ContentWords(from.RawText), extract.ContentWords(to.RawText))
		transition := extract.StartsWithTransition(to.RawText)

		score := Coherence(shared, transition)
		flag := model.FlagMissingTransition
		if shared == 0 && !transition {
			flag = model.FlagAbruptTopicShift
		}
		out = append(out, JumpCandidate{
			FromParagraph:  from.Index,
			ToParagraph:    to.Index,
			CoherenceScore: &score,
			Flag:           flag,
			Explanation:    fmt.Sprintf("The paragraphs share %d content words", shared),
		})
	}
	return out
}

// Coherence scores a paragraph transition from the number of shared
// content words and whether the second paragraph opens with a transition.
func Coherence(shared int, transition bool) float64 {
	score := baseCoherence + sharedWordBonus*float64(min(shared, 3))
	if transition {
		score += transitionBonus
	}
	return math.Min(score, 1)
}

func surrounding(doc *document.Document, s *document.Sentence) string {
	p := doc.Paragraph(s.ParagraphIndex)
	if p == nil {
		return s.RawText
	}
	return p.RawText
}

func claimSuggestion(lang model.Language) string {
	if lang == model.LanguageVI || lang == model.LanguageMixed {
		return "Bổ sung số liệu, ví dụ hoặc nguồn trích dẫn gần luận điểm."
	}
	return "Add data, an example or a citation near the claim, or soften it."
}

func termSuggestion(lang model.Language, term string) string {
	if lang == model.LanguageVI || lang == model.LanguageMixed {
		return fmt.Sprintf("Thêm một câu định nghĩa ngắn cho %q ở lần xuất hiện đầu.", term)
	}
	return fmt.Sprintf("Define %q the first time it appears.", term)
}

func contradictionSuggestion(lang model.Language) string {
	if lang == model.LanguageVI || lang == model.LanguageMixed {
		return "Thống nhất hai câu hoặc giải thích vì sao chúng khác nhau."
	}
	return "Reconcile the two statements or explain the difference."
}
