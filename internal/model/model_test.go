package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{&OffsetMismatchError{Original: "teh", Start: 0, End: 3, Actual: "The"}, "offset_mismatch"},
		{fmt.Errorf("stage: %w", &OracleTimeoutError{Detector: DetectorContradictions, Timeout: time.Second}), "oracle_timeout"},
		{&SchemaInvariantError{Invariant: "count_consistency", Index: -1}, "schema_invariant"},
		{&MalformedInputError{Reason: "document is empty"}, "malformed_input"},
		{RejectCandidate(DetectorUndefinedTerms, 2, "term %q not found", "QES"), "rejected"},
		{errors.New("boom"), "error"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Kind(c.err), "%v", c.err)
	}
}

func TestCandidateError_WrapsOffsetMismatch(t *testing.T) {
	err := &CandidateError{Detector: DetectorSpelling, Index: 0, Err: &OffsetMismatchError{Original: "x", Start: 1, End: 2}}
	assert.ErrorIs(t, err, ErrCandidateRejected)
	assert.ErrorIs(t, err, ErrOffsetMismatch)

	// Offset mismatch is the more specific label
	assert.Equal(t, "offset_mismatch", Kind(err))
	assert.Equal(t, "spelling candidate 0: offset mismatch: text[1:2] is \"\", candidate says \"x\"", err.Error())
}

func TestOracleTimeoutError_Unwrap(t *testing.T) {
	err := &OracleTimeoutError{Detector: DetectorLogicalJumps, Timeout: 90 * time.Second, Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, ErrOracleTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "oracle timeout: logical_jumps after 1m30s", err.Error())
}

func TestSchemaInvariantError_Message(t *testing.T) {
	err := &SchemaInvariantError{Invariant: "span_disjoint", Stage: DetectorUndefinedTerms, Index: 3, Detail: "overlaps spelling"}
	assert.Equal(t, "schema invariant span_disjoint in undefined_terms at item 3: overlaps spelling", err.Error())

	summary := &SchemaInvariantError{Invariant: "total_issues", Index: -1}
	assert.Equal(t, "schema invariant total_issues", summary.Error())
}

func TestPriority(t *testing.T) {
	require.Len(t, Priority, 5)
	assert.Equal(t, 0, DetectorSpelling.Rank())
	assert.Equal(t, 4, DetectorLogicalJumps.Rank())
	assert.Equal(t, -1, Detector("style").Rank())
	assert.False(t, Detector("").Valid())

	d, ok := ParseDetector("terms")
	assert.True(t, ok)
	assert.Equal(t, DetectorUndefinedTerms, d)
	_, ok = ParseDetector("grammar")
	assert.False(t, ok)
}

func TestParseLanguage(t *testing.T) {
	for in, want := range map[string]Language{
		"":           LanguageAuto,
		"EN":         LanguageEN,
		"Tiếng Việt": LanguageVI,
		"mix":        LanguageMixed,
	} {
		got, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLanguage("fr")
	assert.Error(t, err)

	assert.Equal(t, LanguageVI, LanguageAuto.Resolve(LanguageVI))
	assert.Equal(t, LanguageEN, LanguageEN.Resolve(LanguageVI))
}

func TestNewSection(t *testing.T) {
	s := NewSection[TermFinding](nil)
	assert.Equal(t, 0, s.TotalFound)
	assert.NotNil(t, s.Items)

	terms := NewTermsReport(nil, []TermFinding{{Term: "ZKR"}})
	assert.Equal(t, 1, terms.TotalTermsFound)
	assert.Empty(t, terms.UndefinedTerms)
}
