package detect

import (
	"sort"
	"strings"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/extract"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
)

// ContradictionsResult is the output of the contradictions stage
type ContradictionsResult struct {
	Findings []model.ContradictionFinding // Ordered by first sentence, IDs 1..n
	Rejected []error
}

// Contradictions validates contradiction candidates, fixes pair order and
// assigns severity and IDs
func (a *Adapter) Contradictions(env Env, raw []oracle.ContradictionCandidate) ContradictionsResult {
	const d = model.DetectorContradictions
	var res ContradictionsResult
	seen := make(map[[2]int]bool)
	goal := extract.ContentWords(env.Context.MainGoal)

	for i, c := range raw {
		s1, t1 := locateStatement(env.Doc, c.Sentence1, c.Sentence1Location)
		s2, t2 := locateStatement(env.Doc, c.Sentence2, c.Sentence2Location)
		if s1 == nil || s2 == nil {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "cannot locate both statements (%q, %q)", c.Sentence1Location, c.Sentence2Location))
			continue
		}
		if s1.Ordinal == s2.Ordinal || strings.EqualFold(strings.TrimSpace(t1), strings.TrimSpace(t2)) {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "a statement cannot contradict itself"))
			continue
		}

		ctype := model.ContradictionType(strings.ToLower(strings.TrimSpace(c.ContradictionType)))
		if !ctype.Valid() {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "unknown contradiction type %q", c.ContradictionType))
			continue
		}

		if s2.Ordinal < s1.Ordinal {
			s1, s2 = s2, s1
			t1, t2 = t2, t1
		}
		key := [2]int{s1.Ordinal, s2.Ordinal}
		if seen[key] {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "duplicate pair %s / %s", env.location(s1), env.location(s2)))
			continue
		}
		seen[key] = true

		central := c.CentralToGoal
		if !central && len(goal) > 0 {
			central = extract.Shared(goal, extract.ContentWords(t1+" "+t2)) > 0
		}

		res.Findings = append(res.Findings, model.ContradictionFinding{
			Sentence1:         t1,
			Sentence2:         t2,
			Sentence1Location: env.location(s1),
			Sentence2Location: env.location(s2),
			ContradictionType: ctype,
			Severity:          contradictionSeverity(ctype, c, central),
			Explanation:       pick(c.Explanation, contradictionExplanation(env.vietnamese())),
			Suggestion:        pick(c.Suggestion, contradictionSuggestion(env.vietnamese())),
			First:             s1.Span(),
			Second:            s2.Span(),
		})
	}

	sort.SliceStable(res.Findings, func(i, j int) bool {
		fi, fj := res.Findings[i], res.Findings[j]
		if fi.First.Start != fj.First.Start {
			return fi.First.Start < fj.First.Start
		}
		return fi.Second.Start < fj.Second.Start
	})
	for i := range res.Findings {
		res.Findings[i].ID = i + 1
	}
	return res
}

// locateStatement resolves a quoted statement to its sentence. The quote is
// searched near the reported location; failing that the location alone is
// used. The returned text is the quote as it appears in the document, or
// the whole sentence.
func locateStatement(doc *document.Document, quote, location string) (*document.Sentence, string) {
	quote = strings.TrimSpace(quote)
	loc := doc.Locate(location)

	if quote != "" {
		hint := 0
		if loc != nil {
			hint = loc.Start
		}
		if span, ok := doc.FindNear(quote, hint); ok {
			if s := doc.SentenceAt(span.Start); s != nil {
				text, _ := doc.SliceSpan(span)
				return s, text
			}
		}
	}
	if loc != nil {
		return loc, loc.RawText
	}
	return nil, ""
}

// contradictionSeverity: stylistic tension is low; factual or numerical
// conflicts on the main goal are high; otherwise the oracle's grade stands,
// defaulting to medium.
func contradictionSeverity(t model.ContradictionType, c oracle.ContradictionCandidate, central bool) model.Severity {
	if c.Stylistic {
		return model.SeverityLow
	}
	if central && (t == model.ContradictionFactual || t == model.ContradictionNumerical) {
		return model.SeverityHigh
	}
	if s := model.Severity(strings.ToLower(strings.TrimSpace(c.Severity))); s.Valid() {
		return s
	}
	return model.SeverityMedium
}

func contradictionExplanation(vi bool) string {
	if vi {
		return "Hai câu đưa ra những khẳng định không thể cùng đúng."
	}
	return "The two statements cannot both be true."
}

func contradictionSuggestion(vi bool) string {
	if vi {
		return "Thống nhất hai câu hoặc giải thích vì sao chúng khác nhau."
	}
	return "Reconcile the statements or explain why they differ."
}
