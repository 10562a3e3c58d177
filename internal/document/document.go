// Package document segments raw text into paragraphs and sentences with
// character offsets into the untouched original.
//
// All offsets are zero-based, end-exclusive, and count Unicode code points
// (not bytes), so "Đoạn" has length 4.
package document

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/ppiankov/logicguard/internal/model"
)

// Document is a segmented, immutable view of one input text
type Document struct {
	Text       string
	Paragraphs []Paragraph
	Language   model.Language // Hint from the character mix, never auto

	runes     []rune
	lower     []rune
	sentences []*Sentence // Flattened, in document order
}

// Paragraph is a block of text separated from its neighbours by blank lines
type Paragraph struct {
	Index     int // 1-based
	Start     int
	End       int
	RawText   string
	Sentences []Sentence
}

// Sentence is one sentence of a paragraph
type Sentence struct {
	ParagraphIndex int // 1-based
	SentenceIndex  int // 1-based within the paragraph
	Ordinal        int // 0-based across the document
	Start          int
	End            int
	RawText        string
}

// Span returns the sentence's character range
func (s *Sentence) Span() model.Span {
	return model.Span{Start: s.Start, End: s.End}
}

// Segment splits text into paragraphs and sentences. It fails only when
// the text is empty or whitespace.
func Segment(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &model.MalformedInputError{Reason: "document is empty"}
	}

	runes := []rune(text)
	doc := &Document{
		Text:  text,
		runes: runes,
		lower: lowerRunes(runes),
	}

	for i, pr := range splitParagraphs(runes) {
		para := Paragraph{
			Index:   i + 1,
			Start:   pr.Start,
			End:     pr.End,
			RawText: string(runes[pr.Start:pr.End]),
		}
		for j, sr := range splitSentences(runes, pr) {
			para.Sentences = append(para.Sentences, Sentence{
				ParagraphIndex: i + 1,
				SentenceIndex:  j + 1,
				Start:          sr.Start,
				End:            sr.End,
				RawText:        string(runes[sr.Start:sr.End]),
			})
		}
		doc.Paragraphs = append(doc.Paragraphs, para)
	}

	for i := range doc.Paragraphs {
		for j := range doc.Paragraphs[i].Sentences {
			s := &doc.Paragraphs[i].Sentences[j]
			s.Ordinal = len(doc.sentences)
			doc.sentences = append(doc.sentences, s)
		}
	}

	doc.Language = DetectLanguage(text)
	return doc, nil
}

// Len returns the document length in characters
func (d *Document) Len() int {
	return len(d.runes)
}

// Slice returns text[start:end] in character offsets. ok is false when
// the range is out of bounds or inverted.
func (d *Document) Slice(start, end int) (string, bool) {
	if start < 0 || end > len(d.runes) || start > end {
		return "", false
	}
	return string(d.runes[start:end]), true
}

// SliceSpan is Slice for a model.Span
func (d *Document) SliceSpan(s model.Span) (string, bool) {
	return d.Slice(s.Start, s.End)
}

// Sentences returns every sentence in document order
func (d *Document) Sentences() []*Sentence {
	return d.sentences
}

// SentenceCount returns the total number of sentences
func (d *Document) SentenceCount() int {
	return len(d.sentences)
}

// Fingerprint returns a BLAKE3 digest of the text
func (d *Document) Fingerprint() string {
	sum := blake3.Sum256([]byte(d.Text))
	return hex.EncodeToString(sum[:])
}
