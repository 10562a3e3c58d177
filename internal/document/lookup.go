package document

import (
	"sort"
	"unicode"

	"github.com/ppiankov/logicguard/internal/model"
)

// Index returns the character offset of the first occurrence of substr at
// or after from, or -1.
func (d *Document) Index(substr string, from int) int {
	return indexRunes(d.runes, []rune(substr), from)
}

// IndexFold is Index ignoring letter case
func (d *Document) IndexFold(substr string, from int) int {
	return indexRunes(d.lower, lowerRunes([]rune(substr)), from)
}

// Find locates substr preferring an exact match, then a case-insensitive
// one, searching from offset from.
func (d *Document) Find(substr string, from int) (model.Span, bool) {
	n := len([]rune(substr))
	if n == 0 {
		return model.Span{}, false
	}
	if i := d.Index(substr, from); i >= 0 {
		return model.Span{Start: i, End: i + n}, true
	}
	if i := d.IndexFold(substr, from); i >= 0 {
		return model.Span{Start: i, End: i + n}, true
	}
	return model.Span{}, false
}

// FindNear locates substr, trying from hint first and then from the start
// of the document.
func (d *Document) FindNear(substr string, hint int) (model.Span, bool) {
	if hint > 0 {
		if s, ok := d.Find(substr, hint); ok {
			return s, true
		}
	}
	return d.Find(substr, 0)
}

// FindWord is Find restricted to whole-word matches
func (d *Document) FindWord(substr string, from int) (model.Span, bool) {
	for {
		s, ok := d.Find(substr, from)
		if !ok {
			return s, false
		}
		if d.isWordBoundary(s.Start-1) && d.isWordBoundary(s.End) {
			return s, true
		}
		from = s.Start + 1
	}
}

func (d *Document) isWordBoundary(i int) bool {
	if i < 0 || i >= len(d.runes) {
		return true
	}
	r := d.runes[i]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// SentenceAt returns the sentence containing offset, or nil when offset
// falls between sentences.
func (d *Document) SentenceAt(offset int) *Sentence {
	i := sort.Search(len(d.sentences), func(i int) bool {
		return d.sentences[i].End > offset
	})
	if i < len(d.sentences) && d.sentences[i].Start <= offset {
		return d.sentences[i]
	}
	return nil
}

// Sentence returns the 1-based (paragraph, sentence) pair, or nil
func (d *Document) Sentence(paragraph, sentence int) *Sentence {
	if paragraph < 1 || paragraph > len(d.Paragraphs) {
		return nil
	}
	p := &d.Paragraphs[paragraph-1]
	if sentence < 1 || sentence > len(p.Sentences) {
		return nil
	}
	return &p.Sentences[sentence-1]
}

// Paragraph returns the 1-based paragraph, or nil
func (d *Document) Paragraph(index int) *Paragraph {
	if index < 1 || index > len(d.Paragraphs) {
		return nil
	}
	return &d.Paragraphs[index-1]
}

// SentenceByOrdinal returns the sentence at a document-wide position
func (d *Document) SentenceByOrdinal(ordinal int) *Sentence {
	if ordinal < 0 || ordinal >= len(d.sentences) {
		return nil
	}
	return d.sentences[ordinal]
}

// IsSentenceInitial reports whether offset is the first word of its
// sentence, ignoring opening quotes and brackets.
func (d *Document) IsSentenceInitial(offset int) bool {
	s := d.SentenceAt(offset)
	if s == nil {
		return false
	}
	for i := s.Start; i < offset; i++ {
		r := d.runes[i]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Token is one word of the document with its character range
type Token struct {
	Text string
	Span model.Span
}

// Words returns every letter/digit run in document order. Apostrophes
// inside a word ("don't") are kept.
func (d *Document) Words() []Token {
	var out []Token
	start := -1
	for i := 0; i <= len(d.runes); i++ {
		inWord := i < len(d.runes) && d.isWordRune(i)
		switch {
		case inWord && start < 0:
			start = i
		case !inWord && start >= 0:
			out = append(out, Token{Text: string(d.runes[start:i]), Span: model.Span{Start: start, End: i}})
			start = -1
		}
	}
	return out
}

func (d *Document) isWordRune(i int) bool {
	r := d.runes[i]
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
		return true
	}
	if r == '\'' || r == '’' {
		return i > 0 && i+1 < len(d.runes) && unicode.IsLetter(d.runes[i-1]) && unicode.IsLetter(d.runes[i+1])
	}
	return false
}

func indexRunes(hay, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	n := len(needle)
	if n == 0 {
		return -1
	}
outer:
	for i := from; i+n <= len(hay); i++ {
		for j := 0; j < n; j++ {
			if hay[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
