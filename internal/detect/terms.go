package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/extract"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
)

// TermsResult is the output of the undefined-terms stage
type TermsResult struct {
	Undefined []model.TermFinding
	Defined   []model.TermFinding // Only surfaced by the terms-only mode
	Rejected  []error
}

// Terms validates term candidates. A term counts as defined only when a
// definition sits in its first sentence or within the definition window
// after it.
func (a *Adapter) Terms(env Env, raw []oracle.TermCandidate) TermsResult {
	const d = model.DetectorUndefinedTerms
	var res TermsResult
	seen := make(map[string]bool)

	for i, c := range raw {
		term := strings.TrimSpace(c.Term)
		if term == "" {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "empty term"))
			continue
		}
		key := strings.ToLower(term)
		if seen[key] {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "duplicate term %q", term))
			continue
		}

		span, ok := env.Doc.FindWord(term, 0)
		if !ok {
			span, ok = env.Doc.Find(term, 0)
		}
		if !ok {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "term %q not in text", term))
			continue
		}
		first := env.Doc.SentenceAt(span.Start)
		if first == nil {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "term %q outside any sentence", term))
			continue
		}
		if env.View.Overlaps(span) {
			res.Rejected = append(res.Rejected, suppressed(d, i))
			continue
		}
		if a.lex.AllOrdinary(term) {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "%q is ordinary vocabulary", term))
			continue
		}
		seen[key] = true

		text, _ := env.Doc.SliceSpan(span)
		f := model.TermFinding{
			Term:           text,
			FirstAppeared:  env.location(first),
			ContextSnippet: pick(c.ContextSnippet, snippet(first.RawText, snippetLen)),
			Span:           span,
		}

		definition, defined, late := a.definition(env.Doc, c, text, first)
		if defined {
			f.IsDefined = true
			f.DefinitionFound = definition
			f.Reason = termDefinedReason(env.vietnamese())
			if c.IsDefined {
				f.Reason = pick(c.Reason, f.Reason)
			}
			res.Defined = append(res.Defined, f)
			continue
		}

		reason := termUndefinedReason(env.vietnamese())
		if late != nil {
			reason = termLateReason(env.location(late), env.vietnamese())
		}
		// An oracle that called it defined was overruled; its reason no longer fits
		if !c.IsDefined {
			reason = pick(c.Reason, reason)
		}
		f.Reason = reason
		f.Suggestion = pick(c.Suggestion, termSuggestion(text, env.vietnamese()))
		res.Undefined = append(res.Undefined, f)
	}

	byPosition := func(items []model.TermFinding) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Span.Start < items[j].Span.Start })
	}
	byPosition(res.Undefined)
	byPosition(res.Defined)
	return res
}

// definition decides whether term is defined near its first use. When the
// oracle points at a definition outside the window, late is that sentence.
func (a *Adapter) definition(doc *document.Document, c oracle.TermCandidate, term string, first *document.Sentence) (text string, defined bool, late *document.Sentence) {
	if a.lex.IsCommonAcronym(term) {
		return "", true, nil
	}

	window := a.opts.Terms.DefinitionWindow
	for o := first.Ordinal; o <= first.Ordinal+window; o++ {
		s := doc.SentenceByOrdinal(o)
		if s == nil {
			break
		}
		if def, ok := extract.FindDefinition(s.RawText, term); ok {
			return def, true, nil
		}
	}

	claimed := strings.TrimSpace(c.DefinitionFound)
	if claimed != "" {
		span, ok := doc.FindNear(claimed, first.Start)
		if !ok {
			return "", false, nil
		}
		s := doc.SentenceAt(span.Start)
		if s == nil {
			return "", false, nil
		}
		if s.Ordinal >= first.Ordinal && s.Ordinal <= first.Ordinal+window {
			return claimed, true, nil
		}
		return "", false, s
	}
	if c.IsDefined {
		return "", true, nil
	}
	return "", false, nil
}

func termDefinedReason(vi bool) string {
	if vi {
		return "Thuật ngữ được định nghĩa ngay khi xuất hiện."
	}
	return "Defined at or just after first use."
}

func termUndefinedReason(vi bool) string {
	if vi {
		return "Thuật ngữ chuyên môn được dùng mà không có định nghĩa."
	}
	return "Technical term used without a definition."
}

func termLateReason(where string, vi bool) string {
	if vi {
		return fmt.Sprintf("Chỉ được định nghĩa muộn hơn, tại %s.", where)
	}
	return fmt.Sprintf("Defined only later, at %s.", where)
}

func termSuggestion(term string, vi bool) string {
	if vi {
		return fmt.Sprintf("Định nghĩa \"%s\" ngay lần xuất hiện đầu tiên.", term)
	}
	return fmt.Sprintf("Define %q where it first appears.", term)
}
