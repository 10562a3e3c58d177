// Package ledger records the character spans claimed by accepted spelling
// findings so later detectors can stay off them.
package ledger

import (
	"errors"
	"sort"

	"github.com/ppiankov/logicguard/internal/model"
)

// ErrFrozen is returned when Claim is called after Freeze
var ErrFrozen = errors.New("ledger is frozen")

// Ledger is written by exactly one stage and then frozen. It is not safe
// for concurrent writes; once frozen, any number of goroutines may read it
// through a View.
type Ledger struct {
	spans  []model.Span
	frozen bool
}

// New returns an empty, writable ledger
func New() *Ledger {
	return &Ledger{}
}

// Claim registers a span. It reports false without recording anything when
// the span overlaps one already claimed.
func (l *Ledger) Claim(s model.Span) (bool, error) {
	if l.frozen {
		return false, ErrFrozen
	}
	if s.Empty() {
		return false, nil
	}
	if l.overlaps(s) {
		return false, nil
	}

	i := sort.Search(len(l.spans), func(i int) bool { return l.spans[i].Start >= s.Start })
	l.spans = append(l.spans, model.Span{})
	copy(l.spans[i+1:], l.spans[i:])
	l.spans[i] = s
	return true, nil
}

// Freeze makes the ledger read-only and returns its view
func (l *Ledger) Freeze() View {
	l.frozen = true
	return View{spans: l.spans}
}

// Frozen reports whether Freeze has been called
func (l *Ledger) Frozen() bool {
	return l.frozen
}

func (l *Ledger) overlaps(s model.Span) bool {
	return View{spans: l.spans}.Overlaps(s)
}

// View is a read-only snapshot of a frozen ledger. The zero View is empty.
type View struct {
	spans []model.Span
}

// Overlaps reports whether s shares any character with a claimed span
func (v View) Overlaps(s model.Span) bool {
	// Spans are sorted and disjoint, so only the last span starting before
	// s.End can reach into s.
	i := sort.Search(len(v.spans), func(i int) bool { return v.spans[i].Start >= s.End })
	return i > 0 && v.spans[i-1].End > s.Start
}

// Contains reports whether s was claimed exactly
func (v View) Contains(s model.Span) bool {
	i := sort.Search(len(v.spans), func(i int) bool { return v.spans[i].Start >= s.Start })
	return i < len(v.spans) && v.spans[i] == s
}

// Spans returns a copy of the claimed spans ordered by start
func (v View) Spans() []model.Span {
	out := make([]model.Span, len(v.spans))
	copy(out, v.spans)
	return out
}

// Len returns the number of claimed spans
func (v View) Len() int {
	return len(v.spans)
}
