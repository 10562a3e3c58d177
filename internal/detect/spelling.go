package detect

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/ledger"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
)

// SpellingResult is the output of the spelling stage
type SpellingResult struct {
	Findings []model.SpellingFinding // Ordered by StartPos
	Rejected []error
}

// Spelling validates spelling candidates and claims each accepted span in
// l. It must run before any other adapter; the caller freezes l afterwards.
func (a *Adapter) Spelling(env Env, raw []oracle.SpellingCandidate, l *ledger.Ledger) SpellingResult {
	const d = model.DetectorSpelling
	var res SpellingResult

	type accepted struct {
		index   int
		finding model.SpellingFinding
	}
	var ok []accepted

	for i, c := range raw {
		conf := a.opts.Spelling.DefaultConfidence
		if c.Confidence != nil {
			conf = *c.Confidence
		}
		switch {
		case c.Original == "":
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "empty original"))
			continue
		case conf < a.opts.Spelling.MinConfidence:
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "confidence %.2f below %.2f", conf, a.opts.Spelling.MinConfidence))
			continue
		case strings.TrimSpace(c.Suggested) == "" || c.Suggested == c.Original:
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "suggestion %q does not change %q", c.Suggested, c.Original))
			continue
		}

		got, inRange := env.Doc.Slice(c.StartPos, c.EndPos)
		if !inRange || c.StartPos >= c.EndPos || got != c.Original {
			res.Rejected = append(res.Rejected, &model.CandidateError{
				Detector: d,
				Index:    i,
				Err:      &model.OffsetMismatchError{Original: c.Original, Start: c.StartPos, End: c.EndPos, Actual: got},
			})
			continue
		}

		if a.isProperNoun(env.Doc, c.Original, c.StartPos) {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "%q looks like a proper noun", c.Original))
			continue
		}

		ok = append(ok, accepted{index: i, finding: model.SpellingFinding{
			Original:  c.Original,
			Suggested: strings.TrimSpace(c.Suggested),
			StartPos:  c.StartPos,
			EndPos:    c.EndPos,
			Language:  spellingLanguage(c.Language, c.Original),
			Reason:    pick(c.Reason, fmt.Sprintf("%q should be %q", c.Original, c.Suggested)),
		}})
	}

	// Larger spans claim first; equal lengths keep candidate order
	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].finding.Span().Len() > ok[j].finding.Span().Len()
	})
	for _, acc := range ok {
		claimed, err := l.Claim(acc.finding.Span())
		if err != nil {
			res.Rejected = append(res.Rejected, &model.CandidateError{Detector: d, Index: acc.index, Err: err})
			continue
		}
		if !claimed {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, acc.index, "overlaps a larger spelling finding"))
			continue
		}
		res.Findings = append(res.Findings, acc.finding)
	}

	sort.Slice(res.Findings, func(i, j int) bool {
		return res.Findings[i].StartPos < res.Findings[j].StartPos
	})
	return res
}

// isProperNoun applies the brand/name rules: configured names, CamelCase,
// tokens with digits or hyphens, and capitalized multi-syllable words in
// mid-sentence that neither lexicon knows.
func (a *Adapter) isProperNoun(doc *document.Document, token string, start int) bool {
	if a.properNouns[strings.ToLower(token)] {
		return true
	}
	if _, _, known := a.lex.Correction(token); known {
		return false
	}

	runes := []rune(token)
	for i, r := range runes {
		if unicode.IsDigit(r) || r == '-' {
			return true
		}
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			return true
		}
	}

	if !unicode.IsUpper(runes[0]) || doc.IsSentenceInitial(start) {
		return false
	}
	for _, w := range strings.Fields(token) {
		if a.lex.Known(w) {
			return false
		}
	}
	return vowelGroups(token) >= 2
}

func vowelGroups(s string) int {
	n := 0
	inVowel := false
	for _, r := range strings.ToLower(s) {
		v := isVowel(r)
		if v && !inVowel {
			n++
		}
		inVowel = v
	}
	return n
}

func isVowel(r rune) bool {
	if strings.ContainsRune("aeiouy", r) {
		return true
	}
	// Vietnamese vowels with tone marks
	return r > unicode.MaxASCII && strings.ContainsRune("àáảãạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵ", r)
}

func spellingLanguage(reported, token string) model.Language {
	switch strings.ToLower(strings.TrimSpace(reported)) {
	case "en", "english":
		return model.LanguageEN
	case "vi", "vn", "vietnamese":
		return model.LanguageVI
	}
	if document.IsVietnameseWord(token) {
		return model.LanguageVI
	}
	return model.LanguageEN
}
