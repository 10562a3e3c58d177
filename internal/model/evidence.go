package model

// Citation is a source reference found in the document text
type Citation struct {
	URL       string        `json:"url"`
	Host      string        `json:"host,omitempty"`
	Authority AuthorityTier `json:"authority"`
	Span      Span          `json:"-"`
}

// EvidenceKind classifies what makes a passage count as evidence
type EvidenceKind string

const (
	EvidenceKindCitation    EvidenceKind = "citation"    // URL, DOI or bracketed reference
	EvidenceKindStatistic   EvidenceKind = "statistic"   // Number, percentage or year
	EvidenceKindAttribution EvidenceKind = "attribution" // Named source ("according to ...")
	EvidenceKindExample     EvidenceKind = "example"     // Concrete illustration
)

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Statutes, academic papers, official statistics
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, forums
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}
