package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/logicguard/internal/model"
)

// wire is the answer shape of both the per-task and the unified prompts.
// Sections may be a bare list or an object with an "items" list.
type wire struct {
	Spelling        section[SpellingCandidate]      `json:"spelling_errors" yaml:"spelling_errors"`
	Claims          section[ClaimCandidate]         `json:"unsupported_claims" yaml:"unsupported_claims"`
	SupportedClaims section[ClaimCandidate]         `json:"supported_claims" yaml:"supported_claims"`
	Terms           section[TermCandidate]          `json:"undefined_terms" yaml:"undefined_terms"`
	DefinedTerms    section[TermCandidate]          `json:"defined_terms" yaml:"defined_terms"`
	Contradictions  section[ContradictionCandidate] `json:"contradictions" yaml:"contradictions"`
	Jumps           section[JumpCandidate]          `json:"logical_jumps" yaml:"logical_jumps"`
}

type itemError struct {
	index int
	err   error
}

// section decodes item by item so one malformed item does not lose the rest
type section[T any] struct {
	items []T
	errs  []itemError
}

func (s *section[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var raw []json.RawMessage
	if b[0] == '{' {
		var wrapped struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		raw = wrapped.Items
	} else if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			s.errs = append(s.errs, itemError{index: i, err: err})
			continue
		}
		s.items = append(s.items, v)
	}
	return nil
}

func (s *section[T]) UnmarshalYAML(node *yaml.Node) error {
	var list *yaml.Node
	switch node.Kind {
	case yaml.SequenceNode:
		list = node
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "items" {
				list = node.Content[i+1]
			}
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("line %d: section must be a list", node.Line)
	}
	if list == nil {
		return nil
	}

	for i, item := range list.Content {
		var v T
		if err := item.Decode(&v); err != nil {
			s.errs = append(s.errs, itemError{index: i, err: err})
			continue
		}
		s.items = append(s.items, v)
	}
	return nil
}

// candidates flattens the wire shape. Supported claims and defined terms
// are folded into the main lists; the detect adapters re-derive status.
func (w *wire) candidates() *Candidates {
	c := &Candidates{
		Spelling:       w.Spelling.items,
		Contradictions: w.Contradictions.items,
		Jumps:          w.Jumps.items,
	}

	c.Claims = append(c.Claims, w.Claims.items...)
	for _, sc := range w.SupportedClaims.items {
		if sc.Status == "" {
			sc.Status = string(model.StatusSupported)
		}
		c.Claims = append(c.Claims, sc)
	}

	c.Terms = append(c.Terms, w.Terms.items...)
	for _, dt := range w.DefinedTerms.items {
		dt.IsDefined = true
		c.Terms = append(c.Terms, dt)
	}

	collect := func(d model.Detector, errs []itemError) {
		for _, e := range errs {
			c.Errors = append(c.Errors, &model.CandidateError{Detector: d, Index: e.index, Err: e.err})
		}
	}
	collect(model.DetectorSpelling, w.Spelling.errs)
	collect(model.DetectorUnsupportedClaims, w.Claims.errs)
	collect(model.DetectorUnsupportedClaims, w.SupportedClaims.errs)
	collect(model.DetectorUndefinedTerms, w.Terms.errs)
	collect(model.DetectorUndefinedTerms, w.DefinedTerms.errs)
	collect(model.DetectorContradictions, w.Contradictions.errs)
	collect(model.DetectorLogicalJumps, w.Jumps.errs)
	return c
}

// Decode parses a model answer. It tolerates markdown fences and prose
// around the outermost JSON object.
func Decode(text string) (*Candidates, error) {
	body := extractObject(text)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in oracle answer")
	}
	var w wire
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return nil, fmt.Errorf("decode oracle answer: %w", err)
	}
	return w.candidates(), nil
}

// DecodeYAML parses a YAML replay file in the same shape as Decode
func DecodeYAML(data []byte) (*Candidates, error) {
	var w wire
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode yaml candidates: %w", err)
	}
	return w.candidates(), nil
}

// extractObject strips code fences and returns the span from the first
// '{' to its matching '}', honouring JSON strings.
func extractObject(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
