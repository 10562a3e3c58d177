package document

import (
	"strings"
	"unicode"

	"github.com/ppiankov/logicguard/internal/model"
)

// abbreviations never end a sentence, compared lowercase without the dot
var abbreviations = map[string]bool{
	"e.g": true, "i.e": true, "etc": true, "vs": true, "cf": true, "al": true,
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true, "st": true,
	"jr": true, "sr": true, "fig": true, "approx": true, "inc": true,
	"ltd": true, "co": true, "jan": true, "feb": true, "mar": true, "apr": true,
	"jun": true, "jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true, "a.m": true, "p.m": true,
	// Vietnamese titles and abbreviations
	"ts": true, "ths": true, "pgs": true, "gs": true, "tp": true, "tr": true,
	"bs": true, "ks": true, "v.v": true,
}

const closers = `"'”’»)]}`

// splitParagraphs finds paragraph ranges, trimmed of surrounding whitespace.
// Blank lines separate paragraphs. Text without any blank line is split
// on single line breaks instead.
func splitParagraphs(runes []rune) []model.Span {
	type line struct {
		start, end int
		blank      bool
	}

	var lines []line
	start := 0
	for i := 0; i <= len(runes); i++ {
		if i == len(runes) || runes[i] == '\n' {
			lines = append(lines, line{start: start, end: i, blank: isBlank(runes[start:i])})
			start = i + 1
		}
	}

	hasBlank := false
	seenText := false
	for _, l := range lines {
		if !l.blank {
			seenText = true
			continue
		}
		if seenText {
			hasBlank = true
			break
		}
	}

	var paras []model.Span
	cur := model.Span{Start: -1}
	flush := func() {
		if cur.Start >= 0 {
			if s, ok := trimSpan(runes, cur); ok {
				paras = append(paras, s)
			}
		}
		cur = model.Span{Start: -1}
	}

	for _, l := range lines {
		if l.blank {
			flush()
			continue
		}
		if !hasBlank {
			flush()
		}
		if cur.Start < 0 {
			cur.Start = l.start
		}
		cur.End = l.end
	}
	flush()

	return paras
}

// splitSentences finds sentence ranges inside one paragraph
func splitSentences(runes []rune, para model.Span) []model.Span {
	var out []model.Span
	start := para.Start

	i := para.Start
	for i < para.End {
		r := runes[i]
		if !isTerminator(r) {
			i++
			continue
		}

		// Consume the full run of terminators and closing punctuation.
		j := i
		for j < para.End && isTerminator(runes[j]) {
			j++
		}
		for j < para.End && strings.ContainsRune(closers, runes[j]) {
			j++
		}

		if j < para.End && !unicode.IsSpace(runes[j]) {
			i = j
			continue
		}
		if r == '.' && j == i+1 && isAbbreviation(runes, start, i) {
			i = j
			continue
		}

		if s, ok := trimSpan(runes, model.Span{Start: start, End: j}); ok {
			out = append(out, s)
		}
		start = j
		i = j
	}

	if s, ok := trimSpan(runes, model.Span{Start: start, End: para.End}); ok {
		out = append(out, s)
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// isAbbreviation reports whether the word ending right before the dot at
// runes[dot] is a known abbreviation or a single-letter initial.
func isAbbreviation(runes []rune, floor, dot int) bool {
	k := dot
	for k > floor && (unicode.IsLetter(runes[k-1]) || runes[k-1] == '.') {
		k--
	}
	word := strings.ToLower(string(runes[k:dot]))
	if word == "" {
		return false
	}
	if abbreviations[word] {
		return true
	}
	letters := []rune(strings.ReplaceAll(word, ".", ""))
	return len(letters) == 1 && unicode.IsUpper(runes[k])
}

func isBlank(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func trimSpan(runes []rune, s model.Span) (model.Span, bool) {
	for s.Start < s.End && unicode.IsSpace(runes[s.Start]) {
		s.Start++
	}
	for s.End > s.Start && unicode.IsSpace(runes[s.End-1]) {
		s.End--
	}
	return s, s.End > s.Start
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}
