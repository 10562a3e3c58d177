package document

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ppiankov/logicguard/internal/model"
)

var locationPattern = regexp.MustCompile(`(?i)(?:paragraph|para|đoạn|doan)\s*(\d+)(?:\s*[,;/-]?\s*(?:sentence|câu|cau)\s*(\d+))?`)

// Location renders a sentence position as "Paragraph X, Sentence Y", or
// "Đoạn X, Câu Y" for Vietnamese.
func Location(s *Sentence, lang model.Language) string {
	if lang == model.LanguageVI || lang == model.LanguageMixed {
		return fmt.Sprintf("Đoạn %d, Câu %d", s.ParagraphIndex, s.SentenceIndex)
	}
	return fmt.Sprintf("Paragraph %d, Sentence %d", s.ParagraphIndex, s.SentenceIndex)
}

// ParseLocation extracts (paragraph, sentence) from a location string in
// either language. sentence is 0 when only a paragraph is named.
func ParseLocation(loc string) (paragraph, sentence int, ok bool) {
	m := locationPattern.FindStringSubmatch(loc)
	if m == nil {
		return 0, 0, false
	}
	paragraph, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		sentence, _ = strconv.Atoi(m[2])
	}
	return paragraph, sentence, paragraph > 0
}

// Locate resolves a location string to a sentence. A paragraph-only
// location resolves to that paragraph's first sentence.
func (d *Document) Locate(loc string) *Sentence {
	p, s, ok := ParseLocation(loc)
	if !ok {
		return nil
	}
	if s == 0 {
		s = 1
	}
	return d.Sentence(p, s)
}
