package model

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Every typed error below unwraps to one of these so
// callers can classify with errors.Is.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrOffsetMismatch    = errors.New("offset mismatch")
	ErrOracleTimeout     = errors.New("oracle timeout")
	ErrSchemaInvariant   = errors.New("schema invariant violated")
	ErrCandidateRejected = errors.New("candidate rejected")
)

// MalformedInputError reports a document that cannot be segmented
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// OffsetMismatchError reports a spelling candidate whose offsets do not
// slice to its original token.
type OffsetMismatchError struct {
	Original string
	Start    int
	End      int
	Actual   string // What the text holds at [Start, End), empty if out of range
}

func (e *OffsetMismatchError) Error() string {
	return fmt.Sprintf("offset mismatch: text[%d:%d] is %q, candidate says %q", e.Start, e.End, e.Actual, e.Original)
}

func (e *OffsetMismatchError) Unwrap() error { return ErrOffsetMismatch }

// OracleTimeoutError reports an oracle call that exceeded its stage budget
type OracleTimeoutError struct {
	Detector Detector
	Timeout  time.Duration
	Err      error
}

func (e *OracleTimeoutError) Error() string {
	return fmt.Sprintf("oracle timeout: %s after %v", e.Detector, e.Timeout)
}

// Unwrap exposes both the sentinel and the underlying context error
func (e *OracleTimeoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrOracleTimeout}
	}
	return []error{ErrOracleTimeout, e.Err}
}

// SchemaInvariantError reports an assembled report that failed validation
type SchemaInvariantError struct {
	Invariant string   // Short rule name, e.g. "count_consistency"
	Stage     Detector // Stage whose output broke the rule, empty for summary-level rules
	Index     int      // Offending item index, -1 when not item-specific
	Detail    string
}

func (e *SchemaInvariantError) Error() string {
	msg := "schema invariant " + e.Invariant
	if e.Stage != "" {
		msg += " in " + string(e.Stage)
	}
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at item %d", e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SchemaInvariantError) Unwrap() error { return ErrSchemaInvariant }

// CandidateError reports one raw oracle candidate that was dropped
type CandidateError struct {
	Detector Detector
	Index    int
	Err      error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("%s candidate %d: %v", e.Detector, e.Index, e.Err)
}

func (e *CandidateError) Unwrap() []error {
	return []error{ErrCandidateRejected, e.Err}
}

// RejectCandidate wraps err (or a formatted reason) as a CandidateError
func RejectCandidate(d Detector, index int, format string, args ...any) error {
	return &CandidateError{Detector: d, Index: index, Err: fmt.Errorf(format, args...)}
}

// Kind returns a short, stable label for err, used in logs and metrics
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrOffsetMismatch):
		return "offset_mismatch"
	case errors.Is(err, ErrOracleTimeout):
		return "oracle_timeout"
	case errors.Is(err, ErrSchemaInvariant):
		return "schema_invariant"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrCandidateRejected):
		return "rejected"
	default:
		return "error"
	}
}
