package extract

import (
	"regexp"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
)

// Claim is a sentence that asserts something needing support
type Claim struct {
	Text      string
	Sentence  *document.Sentence
	Type      string
	Heuristic string
}

type claimMarker struct {
	pattern   *regexp.Regexp
	claimType string
}

// ClaimExtractor finds claim sentences by marker phrases
type ClaimExtractor struct {
	markers []claimMarker
}

// NewClaimExtractor creates a claim extractor with the built-in markers.
// Earlier markers win when a sentence matches several.
func NewClaimExtractor() *ClaimExtractor {
	m := func(expr, claimType string) claimMarker {
		return claimMarker{pattern: regexp.MustCompile(expr), claimType: claimType}
	}
	return &ClaimExtractor{
		markers: []claimMarker{
			m(`(?i)\b(?:always|never|everyone|everybody|no one|nobody|guaranteed?|perfectly|without exception|undeniabl[ey]|proven to)\b|luôn luôn|không bao giờ|mọi người đều|tất cả mọi|tuyệt đối|chắc chắn`, model.ClaimTypeAbsolute),
			m(`(?i)\d+(?:[.,]\d+)?\s?(?:%|percent\b|phần trăm)`, model.ClaimTypeStatistical),
			m(`(?i)\b(?:causes?|caused by|leads? to|results? in|will (?:double|triple|halve)|because of)\b|dẫn đến|gây ra|khiến cho`, model.ClaimTypeCausal),
			m(`(?i)\b(?:better|faster|cheaper|safer|more effective|superior|inferior) (?:than|to)\b|\bthe (?:best|worst|most effective)\b|tốt hơn|nhanh hơn|hiệu quả hơn|tốt nhất`, "comparative"),
			m(`(?i)\bwill (?:revolutionize|replace|transform|dominate|become)\b|\bin the (?:near )?future\b|trong tương lai|sẽ thay thế`, "predictive"),
			m(`(?i)\b(?:experts|studies|research|scientists) (?:say|says|show|shows|agree|believe)\b|các chuyên gia`, model.ClaimTypeAttribution),
			m(`(?i)\b(?:originated|invented|discovered|founded|was the first)\b`, model.ClaimTypeGeneral),
		},
	}
}

// Classify returns the claim type of text, or "" if no marker matches
func (e *ClaimExtractor) Classify(text string) string {
	for _, mk := range e.markers {
		if mk.pattern.MatchString(text) {
			return mk.claimType
		}
	}
	return ""
}

// Extract returns one claim per matching sentence, in document order
func (e *ClaimExtractor) Extract(doc *document.Document) []Claim {
	var claims []Claim
	for _, s := range doc.Sentences() {
		for _, mk := range e.markers {
			loc := mk.pattern.FindStringIndex(s.RawText)
			if loc == nil {
				continue
			}
			claims = append(claims, Claim{
				Text:      s.RawText,
				Sentence:  s,
				Type:      mk.claimType,
				Heuristic: "keyword:" + s.RawText[loc[0]:loc[1]],
			})
			break
		}
	}
	return claims
}
