package extract

import (
	"testing"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/model"
)

func TestTermExtractor_Extract(t *testing.T) {
	doc, err := document.Segment("Our Quantum Efficiency Score beat the RLHF baseline. The CPU was fast.")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	terms := NewTermExtractor(nil).Extract(doc)
	if len(terms) != 2 {
		t.Fatalf("Expected 2 terms, got %+v", terms)
	}

	if terms[0].Text != "Quantum Efficiency Score" || terms[0].Kind != TermCompound {
		t.Errorf("Unexpected first term %+v", terms[0])
	}
	if terms[0].Span != (model.Span{Start: 4, End: 28}) {
		t.Errorf("Unexpected span %+v", terms[0].Span)
	}
	if terms[1].Text != "RLHF" || terms[1].Kind != TermAcronym {
		t.Errorf("Unexpected second term %+v", terms[1])
	}
	if terms[1].Span.Start != 38 {
		t.Errorf("Unexpected acronym offset %d", terms[1].Span.Start)
	}
	for _, term := range terms {
		if term.Sentence == nil || term.Sentence.Ordinal != 0 {
			t.Errorf("Term %q should belong to the first sentence", term.Text)
		}
	}
}

func TestFindDefinition(t *testing.T) {
	tests := []struct {
		sentence string
		term     string
		want     bool
	}{
		{"The score, which is defined as the ratio of output to input, rose.", "Quantum Efficiency Score", true},
		{"QES means the share of photons converted.", "QES", true},
		{"We measured the Quantum Efficiency Score (QES) daily.", "QES", true},
		{"Thuật ngữ QES là tỷ lệ chuyển đổi photon.", "QES", true},
		{"We define drift as the change in accuracy over time.", "drift", true},
		{"It is defined as the mean of the daily values.", "Quantum Efficiency Score", true},
		{"The panels were tested in three labs.", "Quantum Efficiency Score", false},
		{"Quantum Efficiency Score (QES) rose sharply.", "Quantum Efficiency Score", false},
	}

	for _, tt := range tests {
		_, got := FindDefinition(tt.sentence, tt.term)
		if got != tt.want {
			t.Errorf("FindDefinition(%q, %q) = %v, want %v", tt.sentence, tt.term, got, tt.want)
		}
	}
}

func TestFindDefinition_ReturnsText(t *testing.T) {
	def, ok := FindDefinition("QES means the share of photons converted.", "QES")
	if !ok {
		t.Fatal("Expected a definition")
	}
	if def != "the share of photons converted." {
		t.Errorf("Unexpected definition %q", def)
	}

	def, ok = FindDefinition("We measured the Quantum Efficiency Score (QES) daily.", "QES")
	if !ok || def != "Quantum Efficiency Score" {
		t.Errorf("Expected expansion, got %q", def)
	}
}
