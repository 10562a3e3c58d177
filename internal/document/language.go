package document

import (
	"strings"
	"unicode"

	"github.com/ppiankov/logicguard/internal/model"
)

// vietnameseLetters are lowercase letters that only occur in Vietnamese
// text (tone marks and the modified vowels).
const vietnameseLetters = "ăâđêôơư" +
	"àáảãạằắẳẵặầấẩẫậ" +
	"èéẻẽẹềếểễệ" +
	"ìíỉĩị" +
	"òóỏõọồốổỗộờớởỡợ" +
	"ùúủũụừứửữự" +
	"ỳýỷỹỵ"

// DetectLanguage guesses the document language from the share of words
// carrying Vietnamese letters.
func DetectLanguage(text string) model.Language {
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	if len(words) == 0 {
		return model.LanguageEN
	}

	vi := 0
	for _, w := range words {
		if IsVietnameseWord(w) {
			vi++
		}
	}

	share := float64(vi) / float64(len(words))
	switch {
	case share < 0.05:
		return model.LanguageEN
	case share > 0.40:
		return model.LanguageVI
	default:
		return model.LanguageMixed
	}
}

// IsVietnameseWord reports whether w contains a Vietnamese-only letter
func IsVietnameseWord(w string) bool {
	for _, r := range w {
		if strings.ContainsRune(vietnameseLetters, unicode.ToLower(r)) {
			return true
		}
	}
	return false
}
