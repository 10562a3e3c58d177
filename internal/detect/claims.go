package detect

import (
	"strings"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/extract"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
)

// ClaimsResult is the output of the unsupported-claims stage
type ClaimsResult struct {
	Findings  []model.ClaimFinding   // unsupported, weak or partially_supported
	Supported []model.SupportedClaim // Only surfaced by the claims-only mode
	Rejected  []error
}

// support is one piece of evidence considered for a claim
type support struct {
	kind     string
	text     string
	sentence *document.Sentence
	specific bool
	linked   bool // Oracle says the text links it to the claim
}

// Claims validates claim candidates and grades their evidence
func (a *Adapter) Claims(env Env, raw []oracle.ClaimCandidate) ClaimsResult {
	const d = model.DetectorUnsupportedClaims
	var res ClaimsResult

	for i, c := range raw {
		span, sent, ok := locateClaim(env.Doc, c)
		if !ok {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "cannot locate claim %q at %q", snippet(c.Claim, 60), c.Location))
			continue
		}
		if env.View.Overlaps(span) {
			res.Rejected = append(res.Rejected, suppressed(d, i))
			continue
		}

		text, _ := env.Doc.SliceSpan(span)
		evidence := a.gatherEvidence(env.Doc, c, span, sent)
		status, best := a.grade(c, sent, evidence)

		claimType := strings.ToLower(strings.TrimSpace(c.ClaimType))
		if claimType == "" {
			claimType = a.classifier.Classify(text)
		}
		if claimType == "" {
			claimType = model.ClaimTypeGeneral
		}

		if status == model.StatusSupported {
			res.Supported = append(res.Supported, model.SupportedClaim{
				Claim:        text,
				Location:     env.location(sent),
				Status:       status,
				EvidenceType: pick(c.EvidenceType, best.kind),
				Evidence:     pick(c.Evidence, best.text),
				Span:         span,
			})
			continue
		}

		res.Findings = append(res.Findings, model.ClaimFinding{
			Claim:              text,
			Location:           env.location(sent),
			Status:             status,
			ClaimType:          claimType,
			Reason:             pick(c.Reason, claimReason(status, env.vietnamese())),
			SurroundingContext: pick(c.SurroundingContext, surroundingText(env.Doc, sent)),
			Suggestion:         pick(c.Suggestion, claimSuggestion(status, env.vietnamese())),
			Span:               span,
		})
	}
	return res
}

// locateClaim finds the claim text at or after its reported sentence. A
// claim whose text cannot be found falls back to the located sentence.
func locateClaim(doc *document.Document, c oracle.ClaimCandidate) (model.Span, *document.Sentence, bool) {
	text := strings.TrimSpace(c.Claim)
	loc := doc.Locate(c.Location)

	from := 0
	if loc != nil {
		from = loc.Start
	}
	if text != "" {
		if span, ok := doc.Find(text, from); ok {
			if s := doc.SentenceAt(span.Start); s != nil {
				return span, s, true
			}
		}
	}
	if loc != nil {
		return loc.Span(), loc, true
	}
	return model.Span{}, nil, false
}

// gatherEvidence collects evidence from the oracle's pointer and from a
// scan of the sentences around the claim
func (a *Adapter) gatherEvidence(doc *document.Document, c oracle.ClaimCandidate, claim model.Span, sent *document.Sentence) []support {
	var out []support

	if ev := a.oracleEvidence(doc, c, sent); ev != nil {
		out = append(out, *ev)
	}

	window := a.opts.Claims.ProximityWindow
	seen := make(map[int]bool)
	scan := func(s *document.Sentence) {
		if s == nil || seen[s.Ordinal] {
			return
		}
		seen[s.Ordinal] = true
		for _, ev := range a.evidence.InSentence(s) {
			// The claim's own figure is what needs support
			if ev.Kind == model.EvidenceKindStatistic && claim.Contains(ev.Span) {
				continue
			}
			out = append(out, support{kind: string(ev.Kind), text: ev.Text, sentence: s, specific: ev.Specific})
		}
	}
	for o := sent.Ordinal - window; o <= sent.Ordinal+window; o++ {
		scan(doc.SentenceByOrdinal(o))
	}
	if p := doc.Paragraph(sent.ParagraphIndex); p != nil {
		for i := range p.Sentences {
			scan(&p.Sentences[i])
		}
	}
	return out
}

// oracleEvidence resolves the evidence the oracle pointed at, if it can be
// found in the text
func (a *Adapter) oracleEvidence(doc *document.Document, c oracle.ClaimCandidate, sent *document.Sentence) *support {
	text := strings.TrimSpace(c.Evidence)
	if text == "" && c.EvidenceLocation == "" {
		return nil
	}

	var es *document.Sentence
	if text != "" {
		hint := sent.Start
		if loc := doc.Locate(c.EvidenceLocation); loc != nil {
			hint = loc.Start
		}
		if span, ok := doc.FindNear(text, hint); ok {
			es = doc.SentenceAt(span.Start)
		}
	}
	if es == nil {
		es = doc.Locate(c.EvidenceLocation)
	}
	if es == nil {
		return nil
	}

	ev := &support{kind: c.EvidenceType, text: pick(text, es.RawText), sentence: es, linked: c.EvidenceLink}
	if c.EvidenceSpecific != nil {
		ev.specific = *c.EvidenceSpecific
	} else {
		for _, found := range a.evidence.Extract(ev.text, 0) {
			if found.Specific {
				ev.specific = true
				break
			}
		}
	}
	if ev.kind == "" {
		ev.kind = "oracle"
	}
	return ev
}

// grade applies the proximity rule and returns the status with the best
// piece of proximate evidence
func (a *Adapter) grade(c oracle.ClaimCandidate, sent *document.Sentence, evidence []support) (model.ClaimStatus, support) {
	var (
		best      support
		proximate bool
		specific  bool
	)
	for _, ev := range evidence {
		if !a.proximate(sent, ev) {
			continue
		}
		if !proximate || (ev.specific && !specific) {
			best = ev
		}
		proximate = true
		specific = specific || ev.specific
	}

	switch {
	case !proximate:
		return model.StatusUnsupported, best
	case !specific:
		return model.StatusWeak, best
	case strings.EqualFold(strings.TrimSpace(c.Status), string(model.StatusPartiallySupported)):
		return model.StatusPartiallySupported, best
	default:
		return model.StatusSupported, best
	}
}

// proximate reports whether ev is close enough to the claim sentence: the
// same sentence, within the window, or the same paragraph with an explicit
// link
func (a *Adapter) proximate(claim *document.Sentence, ev support) bool {
	dist := ev.sentence.Ordinal - claim.Ordinal
	if dist < 0 {
		dist = -dist
	}
	if dist <= a.opts.Claims.ProximityWindow {
		return true
	}
	if ev.sentence.ParagraphIndex != claim.ParagraphIndex {
		return false
	}
	return ev.linked || extract.HasConnective(ev.sentence.RawText) || extract.HasConnective(claim.RawText)
}

func surroundingText(doc *document.Document, s *document.Sentence) string {
	var parts []string
	for o := s.Ordinal - 1; o <= s.Ordinal+1; o++ {
		if n := doc.SentenceByOrdinal(o); n != nil && n.ParagraphIndex == s.ParagraphIndex {
			parts = append(parts, n.RawText)
		}
	}
	return snippet(strings.Join(parts, " "), 2*snippetLen)
}

func claimReason(status model.ClaimStatus, vi bool) string {
	switch {
	case status == model.StatusWeak && vi:
		return "Bằng chứng gần đó chung chung, không có số liệu hoặc nguồn cụ thể."
	case status == model.StatusWeak:
		return "Nearby support is vague: no datum or named source."
	case status == model.StatusPartiallySupported && vi:
		return "Bằng chứng chỉ hỗ trợ một phần luận điểm."
	case status == model.StatusPartiallySupported:
		return "The evidence covers only part of the claim."
	case vi:
		return "Không có số liệu, ví dụ hoặc trích dẫn trong phạm vi ±2 câu."
	default:
		return "No data, example or citation within two sentences of the claim."
	}
}

func claimSuggestion(status model.ClaimStatus, vi bool) string {
	if vi {
		if status == model.StatusUnsupported {
			return "Bổ sung số liệu hoặc dẫn chứng, hoặc viết lại cho bớt tuyệt đối."
		}
		return "Nêu rõ nguồn hoặc số liệu cụ thể."
	}
	if status == model.StatusUnsupported {
		return "Add data or a citation, or soften the claim."
	}
	return "Name the source or give the specific figure."
}
