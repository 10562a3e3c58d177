package model

import (
	"fmt"
	"strings"
)

// Language identifies the language of a document or finding
type Language string

const (
	LanguageAuto  Language = "auto"  // Detect from the text
	LanguageEN    Language = "en"    // English
	LanguageVI    Language = "vi"    // Vietnamese
	LanguageMixed Language = "mixed" // Both, interleaved
)

// ParseLanguage normalizes a user-supplied language name
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LanguageAuto, nil
	case "en", "english":
		return LanguageEN, nil
	case "vi", "vn", "vietnamese", "tiếng việt":
		return LanguageVI, nil
	case "mixed", "mix":
		return LanguageMixed, nil
	default:
		return "", fmt.Errorf("unknown language %q (want auto, en, vi or mixed)", s)
	}
}

// Resolve picks the concrete language to use for a document when l is auto
func (l Language) Resolve(hint Language) Language {
	if l == "" || l == LanguageAuto {
		return hint
	}
	return l
}
