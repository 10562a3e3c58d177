package model

// ClaimStatus grades how well an assertion is backed by nearby evidence
type ClaimStatus string

const (
	StatusUnsupported        ClaimStatus = "unsupported"         // No proximate evidence
	StatusWeak               ClaimStatus = "weak"                // Proximate but non-specific evidence
	StatusPartiallySupported ClaimStatus = "partially_supported" // Evidence covers part of the claim
	StatusSupported          ClaimStatus = "supported"           // Specific, proximate evidence
)

// Valid reports whether s is a known status
func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusUnsupported, StatusWeak, StatusPartiallySupported, StatusSupported:
		return true
	}
	return false
}

// ClaimType values the oracle commonly returns. The field is open-ended.
const (
	ClaimTypeGeneral     = "general"
	ClaimTypeAbsolute    = "absolute"    // "always", "never", "everyone"
	ClaimTypeStatistical = "statistical" // Numbers without a source
	ClaimTypeCausal      = "causal"      // "X causes Y"
	ClaimTypeAttribution = "attribution" // "experts say"
)

// ClaimFinding is an assertion reported under unsupported_claims
type ClaimFinding struct {
	Claim              string      `json:"claim" validate:"required"`
	Location           string      `json:"location" validate:"required"`
	Status             ClaimStatus `json:"status" validate:"oneof=unsupported weak partially_supported supported"`
	ClaimType          string      `json:"claim_type"`
	Reason             string      `json:"reason"`
	SurroundingContext string      `json:"surrounding_context"`
	Suggestion         string      `json:"suggestion"`

	Span Span `json:"-"` // Character range of the claim in the source text
}

// SupportedClaim is reported only by the claims-only analysis mode
type SupportedClaim struct {
	Claim        string      `json:"claim"`
	Location     string      `json:"location"`
	Status       ClaimStatus `json:"status"`
	EvidenceType string      `json:"evidence_type"`
	Evidence     string      `json:"evidence"`

	Span Span `json:"-"`
}
