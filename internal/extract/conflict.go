package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/logicguard/internal/model"
)

// Conflict describes why two sentences cannot both hold
type Conflict struct {
	Type   model.ContradictionType
	Reason string
}

type polarPair struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
}

func phrases(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`(?i)(?:^|[^\p{L}])` + regexp.QuoteMeta(w) + `(?:[^\p{L}]|$)`)
	}
	return out
}

var polarPairs = []polarPair{
	{phrases("success", "successful", "succeeded", "thành công"), phrases("fail", "failed", "failure", "thất bại")},
	{phrases("increase", "increased", "rose", "grew", "growth", "tăng"), phrases("decrease", "decreased", "fell", "dropped", "declined", "giảm")},
	{phrases("effective", "hiệu quả"), phrases("ineffective", "không hiệu quả", "kém hiệu quả")},
	{phrases("safe", "an toàn"), phrases("unsafe", "dangerous", "nguy hiểm", "không an toàn")},
	{phrases("profitable", "profit", "lãi"), phrases("unprofitable", "loss", "lỗ")},
	{phrases("approved", "accepted", "chấp thuận"), phrases("rejected", "denied", "từ chối")},
}

var quantityPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(%|percent|[\p{L}]+)?`)

// minSharedWords is how many content words two sentences must share
// before they are considered to talk about the same thing
const minSharedWords = 2

// Conflicting reports whether sentences a and b state incompatible facts,
// numbers or dates about a shared subject.
func Conflicting(a, b string) (Conflict, bool) {
	if Shared(ContentWords(a), ContentWords(b)) < minSharedWords {
		return Conflict{}, false
	}

	qa, qb := quantities(a), quantities(b)
	for unit, va := range qa {
		vb, ok := qb[unit]
		if !ok || va == vb {
			continue
		}
		if unit == "year" {
			return Conflict{Type: model.ContradictionTemporal, Reason: "different years for the same event: " + va + " vs " + vb}, true
		}
		return Conflict{Type: model.ContradictionNumerical, Reason: "different values for " + unit + ": " + va + " vs " + vb}, true
	}

	for _, pp := range polarPairs {
		pa, pb := polarity(a, pp), polarity(b, pp)
		if pa != 0 && pa == -pb {
			return Conflict{Type: model.ContradictionFactual, Reason: "opposite outcomes asserted for the same subject"}, true
		}
	}
	return Conflict{}, false
}

func polarity(text string, pp polarPair) int {
	neg := anyMatch(pp.negative, text)
	switch {
	case neg:
		return -1
	case anyMatch(pp.positive, text):
		return 1
	default:
		return 0
	}
}

func anyMatch(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// quantities maps a unit word to the first value given for it. Whole
// numbers between 1900 and 2099 count as years.
func quantities(text string) map[string]string {
	out := make(map[string]string)
	for _, m := range quantityPattern.FindAllStringSubmatch(text, -1) {
		value, unit := strings.ReplaceAll(m[1], ",", "."), strings.ToLower(m[2])
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1900 && n <= 2099 && unit != "%" && unit != "percent" {
			unit = "year"
		}
		switch unit {
		case "":
			continue
		case "percent":
			unit = "%"
		default:
			if unit != "%" && unit != "year" {
				if stopwords[unit] {
					continue
				}
				unit = stem(unit)
			}
		}
		if _, ok := out[unit]; !ok {
			out[unit] = value
		}
	}
	return out
}
