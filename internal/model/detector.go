package model

// Detector names one of the five analysis dimensions
type Detector string

const (
	DetectorSpelling          Detector = "spelling"
	DetectorUnsupportedClaims Detector = "unsupported_claims"
	DetectorUndefinedTerms    Detector = "undefined_terms"
	DetectorContradictions    Detector = "contradictions"
	DetectorLogicalJumps      Detector = "logical_jumps"
)

// Priority is the fixed processing order. A detector earlier in the list
// consumes spans before any later detector sees them.
var Priority = []Detector{
	DetectorSpelling,
	DetectorUnsupportedClaims,
	DetectorUndefinedTerms,
	DetectorContradictions,
	DetectorLogicalJumps,
}

// Rank returns the position of d in Priority, or -1 for an unknown detector
func (d Detector) Rank() int {
	for i, p := range Priority {
		if p == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the five known detectors
func (d Detector) Valid() bool {
	return d.Rank() >= 0
}

// ParseDetector maps a name to a Detector
func ParseDetector(s string) (Detector, bool) {
	switch s {
	case "terms":
		return DetectorUndefinedTerms, true
	case "claims":
		return DetectorUnsupportedClaims, true
	case "jumps":
		return DetectorLogicalJumps, true
	}
	d := Detector(s)
	return d, d.Valid()
}
