package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/lexicon"
	"github.com/ppiankov/logicguard/internal/model"
)

// Term kinds
const (
	TermAcronym  = "acronym"
	TermCompound = "compound"
)

// Term is the first occurrence of a candidate technical term
type Term struct {
	Text     string
	Span     model.Span
	Sentence *document.Sentence
	Kind     string
}

// leadingFunctionWords are dropped from the front of a capitalized run
var leadingFunctionWords = map[string]bool{
	"the": true, "a": true, "an": true, "our": true, "this": true, "these": true,
	"their": true, "its": true, "we": true, "in": true, "on": true, "for": true,
}

// TermExtractor finds acronyms and capitalized multi-word names
type TermExtractor struct {
	lex *lexicon.Lexicon
}

// NewTermExtractor creates a term extractor; nil uses the default lexicon
func NewTermExtractor(lex *lexicon.Lexicon) *TermExtractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &TermExtractor{lex: lex}
}

// Extract returns the first occurrence of each candidate term
func (e *TermExtractor) Extract(doc *document.Document) []Term {
	words := doc.Words()
	seen := make(map[string]bool)
	var terms []Term

	add := func(t Term) {
		key := strings.ToLower(t.Text)
		if seen[key] {
			return
		}
		seen[key] = true
		t.Sentence = doc.SentenceAt(t.Span.Start)
		terms = append(terms, t)
	}

	for i := 0; i < len(words); i++ {
		w := words[i]

		if isAcronym(w.Text) && !e.lex.IsCommonAcronym(w.Text) {
			add(Term{Text: w.Text, Span: w.Span, Kind: TermAcronym})
			continue
		}

		// Runs of adjacent capitalized words in the same sentence
		j := i
		for j < len(words) && isTitleWord(words[j].Text) && sameRun(doc, words, i, j) {
			j++
		}
		start := i
		for start < j && leadingFunctionWords[strings.ToLower(words[start].Text)] {
			start++
		}
		if j-start >= 2 {
			span := model.Span{Start: words[start].Span.Start, End: words[j-1].Span.End}
			text, _ := doc.SliceSpan(span)
			if !e.lex.AllOrdinary(text) {
				add(Term{Text: text, Span: span, Kind: TermCompound})
			}
		}
		if j > i {
			i = j - 1
		}
	}
	return terms
}

// sameRun reports whether words[j] continues the run started at words[i]:
// same sentence and separated only by spaces or hyphens.
func sameRun(doc *document.Document, words []document.Token, i, j int) bool {
	if j == i {
		return true
	}
	gap, ok := doc.Slice(words[j-1].Span.End, words[j].Span.Start)
	if !ok || strings.Trim(gap, " -") != "" {
		return false
	}
	return doc.SentenceAt(words[i].Span.Start) == doc.SentenceAt(words[j].Span.Start)
}

func isAcronym(w string) bool {
	upper := 0
	for _, r := range w {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return upper >= 2 && utf8.RuneCountInString(w) <= 8
}

func isTitleWord(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r) && !isAcronym(w)
}

// Definition patterns. %s is replaced by the quoted reference.
var definitionTemplates = []string{
	`(?i)%s\s*\(([^)]*\s[^)]*)\)`,
	`(?i)%s,?\s+(?:is|are|was)\s+(?:defined as|an?|the)\s+(.+)`,
	`(?i)%s,?\s+(?:means|refers to|stands for|denotes|is short for)\s+(.+)`,
	`(?i)%s,\s*(?:also known as|also called|i\.e\.|that is|which (?:is|means|refers to))\s+(.+)`,
	`(?i)\bdefines?%s\s+as\s+(.+)`,
	`(?i)%s,?\s+(?:là|nghĩa là|có nghĩa là|được định nghĩa là|được hiểu là|được gọi là)\s+(.+)`,
	`(?i)%s,?\s*(?:tức là|hay còn gọi là|viết tắt của)\s+(.+)`,
}

// genericDefinition matches a definition whose subject is implicit
var genericDefinition = regexp.MustCompile(`(?i)\b(?:is|are|was|were)\s+defined\s+as\s+(.+)|được định nghĩa là\s+(.+)|nghĩa là\s+(.+)`)

var pronounStart = regexp.MustCompile(`(?i)^[^\p{L}\p{N}]*(?:it|this|these|that|such|đây|nó|điều này|chỉ số này|thuật ngữ này|khái niệm này)(?:[^\p{L}]|$)`)

// FindDefinition looks for an explicit definition of term in sentence and
// returns the defining text. The sentence may refer to the term by name,
// by its head noun, or with a leading pronoun.
func FindDefinition(sentence, term string) (string, bool) {
	refs := []string{term}
	if head := headNoun(term); head != "" {
		refs = append(refs, head)
	}
	if acr := initials(term); acr != "" {
		refs = append(refs, acr)
	}

	for _, ref := range refs {
		quoted := regexp.QuoteMeta(ref)
		for _, tmpl := range definitionTemplates {
			re := regexp.MustCompile(strings.Replace(tmpl, "%s", `(?:^|[^\p{L}])`+quoted, 1))
			if m := re.FindStringSubmatch(sentence); m != nil {
				return strings.TrimSpace(m[1]), true
			}
		}
	}

	// An acronym glossed by its expansion: "Quantum Efficiency Score (QES)"
	if isAcronym(term) {
		re := regexp.MustCompile(`((?:\p{Lu}[\p{L}-]*\s+){1,6}\p{Lu}[\p{L}-]*)\s*\(` + regexp.QuoteMeta(term) + `\)`)
		if m := re.FindStringSubmatch(sentence); m != nil {
			return m[1], true
		}
	}

	if mentions(sentence, refs) || pronounStart.MatchString(sentence) {
		if m := genericDefinition.FindStringSubmatch(sentence); m != nil {
			for _, g := range m[1:] {
				if g != "" {
					return strings.TrimSpace(g), true
				}
			}
		}
	}
	return "", false
}

func mentions(sentence string, refs []string) bool {
	lower := strings.ToLower(sentence)
	for _, r := range refs {
		if strings.Contains(lower, strings.ToLower(r)) {
			return true
		}
	}
	return false
}

// headNoun returns the last word of a multi-word term
func headNoun(term string) string {
	words := lexicon.Words(term)
	if len(words) < 2 {
		return ""
	}
	head := words[len(words)-1]
	if utf8.RuneCountInString(head) < 3 {
		return ""
	}
	return head
}

// initials returns the acronym of a multi-word term, e.g. "QES"
func initials(term string) string {
	words := lexicon.Words(term)
	if len(words) < 2 {
		return ""
	}
	var b strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return ""
		}
		b.WriteRune(r)
	}
	return b.String()
}
