package extract

import (
	"testing"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
)

func TestClaimExtractor_Extract(t *testing.T) {
	doc, err := document.Segment("Ths is a smple test. It always works for everyone.")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	claims := NewClaimExtractor().Extract(doc)
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if claim.Text != "It always works for everyone." {
		t.Errorf("Unexpected claim text %q", claim.Text)
	}
	if claim.Type != model.ClaimTypeAbsolute {
		t.Errorf("Expected absolute, got %s", claim.Type)
	}
	if claim.Heuristic != "keyword:always" {
		t.Errorf("Unexpected heuristic %s", claim.Heuristic)
	}
	if claim.Sentence == nil || claim.Sentence.Ordinal != 1 {
		t.Errorf("Expected second sentence, got %+v", claim.Sentence)
	}
}

func TestClaimExtractor_Classify(t *testing.T) {
	extractor := NewClaimExtractor()

	tests := []struct {
		text     string
		expected string
	}{
		{"97% of users prefer this tool.", model.ClaimTypeStatistical},
		{"Smoking causes cancer.", model.ClaimTypeCausal},
		{"Our app is faster than theirs.", "comparative"},
		{"AI will replace teachers.", "predictive"},
		{"Experts say the market is stable.", model.ClaimTypeAttribution},
		{"Phương pháp này luôn luôn hiệu quả.", model.ClaimTypeAbsolute},
		{"Laksa originated in Malaysia.", model.ClaimTypeGeneral},
		{"The sky is blue today.", ""},
	}

	for _, tt := range tests {
		if got := extractor.Classify(tt.text); got != tt.expected {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.expected)
		}
	}
}
