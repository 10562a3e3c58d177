package detect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/oracle"
)

// JumpsResult is the output of the logical-jumps stage
type JumpsResult struct {
	Findings []model.JumpFinding // Ordered by FromParagraph
	Rejected []error
}

// Jumps validates transition scores between consecutive paragraphs. Only
// pairs scoring below the coherence threshold become findings.
func (a *Adapter) Jumps(env Env, raw []oracle.JumpCandidate) JumpsResult {
	const d = model.DetectorLogicalJumps
	var res JumpsResult
	threshold := a.opts.Jumps.CoherenceThreshold
	paragraphs := len(env.Doc.Paragraphs)
	byFrom := make(map[int]model.JumpFinding)

	for i, c := range raw {
		to := c.ToParagraph
		if to == 0 {
			to = c.FromParagraph + 1
		}
		if c.FromParagraph < 1 || to != c.FromParagraph+1 || to > paragraphs {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "paragraphs %d→%d are not a consecutive pair of %d", c.FromParagraph, c.ToParagraph, paragraphs))
			continue
		}
		if c.CoherenceScore == nil || math.IsNaN(*c.CoherenceScore) || math.IsInf(*c.CoherenceScore, 0) {
			res.Rejected = append(res.Rejected, model.RejectCandidate(d, i, "missing or non-finite coherence score"))
			continue
		}
		score := math.Min(1, math.Max(0, *c.CoherenceScore))
		if score >= threshold {
			continue
		}
		if prev, ok := byFrom[c.FromParagraph]; ok && prev.CoherenceScore <= score {
			continue
		}

		from, next := env.Doc.Paragraph(c.FromParagraph), env.Doc.Paragraph(to)
		byFrom[c.FromParagraph] = model.JumpFinding{
			FromParagraph:        c.FromParagraph,
			ToParagraph:          to,
			FromParagraphSummary: pick(c.FromParagraphSummary, paragraphSummary(from)),
			ToParagraphSummary:   pick(c.ToParagraphSummary, paragraphSummary(next)),
			CoherenceScore:       score,
			Flag:                 pick(strings.ToLower(c.Flag), model.FlagAbruptTopicShift),
			Severity:             jumpSeverity(c.Severity, score),
			Explanation:          pick(c.Explanation, jumpExplanation(score, env.vietnamese())),
			Suggestion:           pick(c.Suggestion, jumpSuggestion(c.FromParagraph, to, env.vietnamese())),
		}
	}

	for _, f := range byFrom {
		res.Findings = append(res.Findings, f)
	}
	sort.Slice(res.Findings, func(i, j int) bool {
		return res.Findings[i].FromParagraph < res.Findings[j].FromParagraph
	})
	return res
}

func paragraphSummary(p *document.Paragraph) string {
	if p == nil || len(p.Sentences) == 0 {
		return ""
	}
	return snippet(p.Sentences[0].RawText, snippetLen)
}

func jumpSeverity(reported string, score float64) model.Severity {
	if s := model.Severity(strings.ToLower(strings.TrimSpace(reported))); s.Valid() {
		return s
	}
	switch {
	case score < 0.3:
		return model.SeverityHigh
	case score < 0.5:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func jumpExplanation(score float64, vi bool) string {
	if vi {
		return fmt.Sprintf("Hai đoạn liền kề ít liên quan (điểm mạch lạc %.2f).", score)
	}
	return fmt.Sprintf("Adjacent paragraphs share little context (coherence %.2f).", score)
}

func jumpSuggestion(from, to int, vi bool) string {
	if vi {
		return fmt.Sprintf("Thêm câu chuyển ý giữa đoạn %d và đoạn %d.", from, to)
	}
	return fmt.Sprintf("Add a transition between paragraphs %d and %d.", from, to)
}
