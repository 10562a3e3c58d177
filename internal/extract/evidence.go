package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
)

// Evidence is a passage that can back a claim
type Evidence struct {
	Kind      model.EvidenceKind
	Text      string
	Span      model.Span // Character range in the document
	Specific  bool       // Carries a datum or a named, dated source
	Heuristic string
	Citation  *model.Citation
}

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s)\]>"'“”]+`)
	doiPattern        = regexp.MustCompile(`\b10\.\d{4,9}/[^\s)\]]+`)
	bracketRefPattern = regexp.MustCompile(`\[\d+(?:\s*[,–-]\s*\d+)*\]`)
	authorYearPattern = regexp.MustCompile(`\(\p{Lu}[\p{L}'-]+(?: et al\.?)?(?: (?:and|&|và) \p{Lu}[\p{L}'-]+)?,? (?:19|20)\d{2}[a-z]?\)|\p{Lu}[\p{L}'-]+(?: et al\.?)? \((?:19|20)\d{2}[a-z]?\)`)
	attributionPattern = regexp.MustCompile(`(?i)\b(?:according to|as reported by|as shown by|data from|a report by|a study by)\s+[^.,;:!?]+|\btheo\s+[^.,;:!?]+`)
	vaguePattern      = regexp.MustCompile(`(?i)\b(?:studies|research|experts|scientists|analysts|surveys)\s+(?:show|shows|suggest|suggests|say|says|agree|believe|found)\b|\bit is (?:widely )?(?:known|believed|accepted)\b|nhiều nghiên cứu|các chuyên gia (?:cho rằng|nói)`)
	statisticPattern  = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)*\s?(?:%|percent\b|per cent\b|phần trăm)|\b\d+(?:[.,]\d+)*\b`)
	examplePattern    = regexp.MustCompile(`(?i)\b(?:for example|for instance|e\.g\.|case study|in one case)|\bví dụ|chẳng hạn`)
	digitPattern      = regexp.MustCompile(`\d`)
	namedPattern      = regexp.MustCompile(`\p{Lu}\p{Ll}+|\p{Lu}{2,}`)
)

// EvidenceExtractor finds citations, statistics, attributions and
// examples in plain text
type EvidenceExtractor struct {
	authority *AuthorityClassifier
}

// NewEvidenceExtractor creates an extractor that grades URLs with authority
func NewEvidenceExtractor(authority *AuthorityClassifier) *EvidenceExtractor {
	if authority == nil {
		authority = NewAuthorityClassifier(nil)
	}
	return &EvidenceExtractor{authority: authority}
}

// InSentence extracts evidence from one sentence of doc
func (e *EvidenceExtractor) InSentence(s *document.Sentence) []Evidence {
	return e.Extract(s.RawText, s.Start)
}

// Extract scans text, whose first character sits at document offset base.
// Overlapping matches keep the earlier, more specific kind: citations,
// then attributions, then examples, then statistics.
func (e *EvidenceExtractor) Extract(text string, base int) []Evidence {
	var found []Evidence
	taken := func(span model.Span) bool {
		for _, f := range found {
			if f.Span.Overlaps(span) {
				return true
			}
		}
		return false
	}
	add := func(ev Evidence) {
		if !taken(ev.Span) {
			found = append(found, ev)
		}
	}

	for _, m := range urlPattern.FindAllStringIndex(text, -1) {
		raw := strings.TrimRight(text[m[0]:m[1]], ".,;:!?")
		span := runeSpan(text, m[0], m[0]+len(raw), base)
		cite := e.authority.Cite(raw, span)
		add(Evidence{
			Kind:      model.EvidenceKindCitation,
			Text:      raw,
			Span:      span,
			Specific:  cite.Authority != model.TierTertiary,
			Heuristic: "url:" + cite.Authority.String(),
			Citation:  &cite,
		})
	}

	for _, p := range []struct {
		re        *regexp.Regexp
		heuristic string
	}{
		{doiPattern, "doi"},
		{bracketRefPattern, "bracket_ref"},
		{authorYearPattern, "author_year"},
	} {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			add(Evidence{
				Kind:      model.EvidenceKindCitation,
				Text:      text[m[0]:m[1]],
				Span:      runeSpan(text, m[0], m[1], base),
				Specific:  true,
				Heuristic: p.heuristic,
			})
		}
	}

	for _, m := range attributionPattern.FindAllStringIndex(text, -1) {
		phrase := text[m[0]:m[1]]
		source := phrase[strings.IndexAny(phrase, " \t")+1:]
		add(Evidence{
			Kind:      model.EvidenceKindAttribution,
			Text:      phrase,
			Span:      runeSpan(text, m[0], m[1], base),
			Specific:  digitPattern.MatchString(source) || namedPattern.MatchString(source),
			Heuristic: "attribution",
		})
	}

	for _, m := range vaguePattern.FindAllStringIndex(text, -1) {
		add(Evidence{
			Kind:      model.EvidenceKindAttribution,
			Text:      text[m[0]:m[1]],
			Span:      runeSpan(text, m[0], m[1], base),
			Heuristic: "vague_attribution",
		})
	}

	for _, m := range examplePattern.FindAllStringIndex(text, -1) {
		add(Evidence{
			Kind:      model.EvidenceKindExample,
			Text:      text[m[0]:m[1]],
			Span:      runeSpan(text, m[0], m[1], base),
			Specific:  true,
			Heuristic: "example",
		})
	}

	for _, m := range statisticPattern.FindAllStringIndex(text, -1) {
		add(Evidence{
			Kind:      model.EvidenceKindStatistic,
			Text:      text[m[0]:m[1]],
			Span:      runeSpan(text, m[0], m[1], base),
			Specific:  true,
			Heuristic: "number",
		})
	}

	return found
}

// runeSpan converts a byte range of text into document character offsets
func runeSpan(text string, start, end, base int) model.Span {
	s := base + utf8.RuneCountInString(text[:start])
	return model.Span{Start: s, End: s + utf8.RuneCountInString(text[start:end])}
}
