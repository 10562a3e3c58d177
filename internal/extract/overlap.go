package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/logicguard/internal/lexicon"
)

// stopwords are function words ignored when comparing topics
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true, "were": true,
	"this": true, "that": true, "these": true, "those": true, "with": true,
	"from": true, "have": true, "has": true, "had": true, "not": true, "but": true,
	"its": true, "their": true, "they": true, "them": true, "then": true, "than": true,
	"into": true, "onto": true, "over": true, "also": true, "such": true, "very": true,
	"more": true, "most": true, "some": true, "any": true, "all": true, "can": true,
	"will": true, "would": true, "should": true, "could": true, "may": true, "might": true,
	"our": true, "your": true, "his": true, "her": true, "she": true, "him": true,
	"you": true, "who": true, "what": true, "which": true, "when": true, "where": true,
	"how": true, "why": true, "there": true, "here": true, "been": true, "being": true,
	"about": true, "after": true, "before": true, "each": true, "other": true,
	"only": true, "just": true, "because": true, "while": true, "does": true, "did": true,
	"của": true, "và": true, "các": true, "những": true, "được": true, "trong": true,
	"cho": true, "với": true, "này": true, "đó": true, "một": true, "không": true,
	"có": true, "là": true, "để": true, "khi": true, "thì": true, "cũng": true,
	"người": true, "từ": true, "đến": true, "như": true, "nhưng": true, "rất": true,
}

// ContentWords returns the lowercase, lightly stemmed content words of text
func ContentWords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range lexicon.Words(strings.ToLower(text)) {
		if utf8.RuneCountInString(w) < 3 || stopwords[w] || isNumber(w) {
			continue
		}
		out[stem(w)] = true
	}
	return out
}

// Overlap returns the Jaccard similarity of two word sets
func Overlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := Shared(a, b)
	return float64(shared) / float64(len(a)+len(b)-shared)
}

// Shared counts the words present in both sets
func Shared(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func stem(w string) string {
	if utf8.RuneCountInString(w) <= 4 {
		return w
	}
	for _, suffix := range []string{"ies", "es", "s"} {
		if strings.HasSuffix(w, suffix) && !strings.HasSuffix(w, "ss") {
			if suffix == "ies" {
				return strings.TrimSuffix(w, suffix) + "y"
			}
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}

func isNumber(w string) bool {
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var connectivePattern = regexp.MustCompile(`(?i)\b(?:therefore|thus|hence|so|because|since|as a result|consequently|this (?:shows|means|suggests|proves|demonstrates)|which (?:shows|means|explains)|due to|based on|however|moreover|furthermore|in addition|similarly|in contrast|for this reason|accordingly)\b|do đó|vì vậy|vì thế|bởi vì|nhờ đó|kết quả là|điều này cho thấy|tuy nhiên|ngoài ra|hơn nữa|dựa trên`)

var leadingConnective = regexp.MustCompile(`(?i)^[^\p{L}\p{N}]*(?:therefore|thus|hence|so|because|as a result|consequently|however|moreover|furthermore|in addition|similarly|in contrast|for this reason|accordingly|meanwhile|next|finally|first|second|then|also|this|these|that|do đó|vì vậy|vì thế|tuy nhiên|ngoài ra|hơn nữa|bên cạnh đó|tiếp theo|cuối cùng|điều này)(?:[^\p{L}]|$)`)

// HasConnective reports whether text contains a causal or referential link
func HasConnective(text string) bool {
	return connectivePattern.MatchString(text)
}

// StartsWithTransition reports whether text opens with a bridging word
func StartsWithTransition(text string) bool {
	return leadingConnective.MatchString(text)
}
