// Package lexicon provides small embedded English and Vietnamese word
// lists used to judge whether a token is ordinary vocabulary.
package lexicon

import (
	"bufio"
	"embed"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/logicguard/internal/model"
)

//go:embed data/*.txt
var data embed.FS

// Lexicon answers vocabulary questions for both supported languages
type Lexicon struct {
	en       map[string]bool
	vi       map[string]bool
	fixes    map[string]correction
	acronyms map[string]bool
}

type correction struct {
	word string
	lang model.Language
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the shared embedded lexicon
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLex = &Lexicon{
			en:       loadSet("data/en_words.txt", true),
			vi:       loadSet("data/vi_words.txt", true),
			acronyms: loadSet("data/acronyms.txt", false),
			fixes:    make(map[string]correction),
		}
		for k, v := range loadPairs("data/en_misspellings.txt") {
			defaultLex.fixes[k] = correction{word: v, lang: model.LanguageEN}
		}
		for k, v := range loadPairs("data/vi_misspellings.txt") {
			defaultLex.fixes[k] = correction{word: v, lang: model.LanguageVI}
		}
	})
	return defaultLex
}

// Known reports whether word is ordinary vocabulary in either language
func (l *Lexicon) Known(word string) bool {
	w := strings.ToLower(word)
	return l.en[w] || l.vi[w]
}

// KnownIn reports whether word is ordinary vocabulary in lang
func (l *Lexicon) KnownIn(lang model.Language, word string) bool {
	w := strings.ToLower(word)
	switch lang {
	case model.LanguageEN:
		return l.en[w]
	case model.LanguageVI:
		return l.vi[w]
	default:
		return l.en[w] || l.vi[w]
	}
}

// Correction returns the usual fix for a common misspelling, preserving
// the capitalization of the first letter.
func (l *Lexicon) Correction(word string) (string, model.Language, bool) {
	c, ok := l.fixes[strings.ToLower(word)]
	if !ok {
		return "", "", false
	}
	r, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(r) {
		return capitalize(c.word), c.lang, true
	}
	return c.word, c.lang, true
}

// IsCommonAcronym reports whether s is an acronym a general reader knows
func (l *Lexicon) IsCommonAcronym(s string) bool {
	return l.acronyms[s]
}

// AllOrdinary reports whether every word of phrase is ordinary vocabulary
func (l *Lexicon) AllOrdinary(phrase string) bool {
	words := Words(phrase)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !l.Known(w) {
			return false
		}
	}
	return true
}

// Words splits s into letter/digit runs
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func loadSet(name string, lower bool) map[string]bool {
	set := make(map[string]bool)
	eachLine(name, func(line string) {
		if lower {
			line = strings.ToLower(line)
		}
		set[line] = true
	})
	return set
}

func loadPairs(name string) map[string]string {
	pairs := make(map[string]string)
	eachLine(name, func(line string) {
		k, v, ok := strings.Cut(line, "\t")
		if ok {
			pairs[strings.ToLower(k)] = v
		}
	})
	return pairs
}

func eachLine(name string, fn func(string)) {
	f, err := data.Open(name)
	if err != nil {
		panic("lexicon: missing embedded " + name)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
}
