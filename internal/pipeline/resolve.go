package pipeline

import (
	"sort"

	"github.com/ppiankov/logicguard/internal/ledger"
	"github.com/ppiankov/logicguard/internal/model"
)

// resolve applies cross-detector suppression after the middle stages
// join. Spelling is the only detector that consumes spans, so claims and
// terms are re-checked against the frozen ledger; within one detector
// overlapping spans keep the larger.
func (p *Pipeline) resolve(r *run) {
	var dropped []int

	claimSpan := func(f model.ClaimFinding) model.Span { return f.Span }
	r.claims.Findings, dropped = resolveSpans(r.claims.Findings, claimSpan, r.view, nil)
	p.dropResolved(r, model.DetectorUnsupportedClaims, dropped)

	taken := make([]model.Span, 0, len(r.claims.Findings))
	for _, f := range r.claims.Findings {
		taken = append(taken, f.Span)
	}
	supportedSpan := func(s model.SupportedClaim) model.Span { return s.Span }
	r.claims.Supported, dropped = resolveSpans(r.claims.Supported, supportedSpan, r.view, taken)
	p.dropResolved(r, model.DetectorUnsupportedClaims, dropped)

	termSpan := func(f model.TermFinding) model.Span { return f.Span }
	r.terms.Undefined, dropped = resolveSpans(r.terms.Undefined, termSpan, r.view, nil)
	p.dropResolved(r, model.DetectorUndefinedTerms, dropped)

	taken = taken[:0]
	for _, f := range r.terms.Undefined {
		taken = append(taken, f.Span)
	}
	r.terms.Defined, dropped = resolveSpans(r.terms.Defined, termSpan, r.view, taken)
	p.dropResolved(r, model.DetectorUndefinedTerms, dropped)
}

func (p *Pipeline) dropResolved(r *run, d model.Detector, dropped []int) {
	for _, i := range dropped {
		err := model.RejectCandidate(d, i, "span overlaps a higher-priority span")
		r.rejected[d.Rank()] = append(r.rejected[d.Rank()], err)
		p.recorder.Rejected(d, err)
	}
}

// resolveSpans keeps the items whose spans overlap neither the ledger, a
// taken span nor a larger accepted item. Ties go to the earlier item.
// Kept items stay in their original order; dropped holds their indices.
func resolveSpans[T any](items []T, span func(T) model.Span, view ledger.View, taken []model.Span) (kept []T, dropped []int) {
	if len(items) == 0 {
		return items, nil
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return span(items[order[a]]).Len() > span(items[order[b]]).Len()
	})

	accepted := append([]model.Span(nil), taken...)
	keep := make([]bool, len(items))
	for _, i := range order {
		s := span(items[i])
		if view.Overlaps(s) || overlapsAny(s, accepted) {
			continue
		}
		keep[i] = true
		accepted = append(accepted, s)
	}

	kept = make([]T, 0, len(items))
	for i, item := range items {
		if keep[i] {
			kept = append(kept, item)
		} else {
			dropped = append(dropped, i)
		}
	}
	return kept, dropped
}

func overlapsAny(s model.Span, spans []model.Span) bool {
	for _, o := range spans {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}
