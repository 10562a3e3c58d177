package model

import "strings"

// AnalysisContext is optional author-supplied framing for a document.
// All fields may be empty.
type AnalysisContext struct {
	WritingType string   `json:"writing_type,omitempty" yaml:"writing_type"`
	MainGoal    string   `json:"main_goal,omitempty" yaml:"main_goal"`
	Criteria    []string `json:"criteria,omitempty" yaml:"criteria"`
	Constraints []string `json:"constraints,omitempty" yaml:"constraints"`
}

// IsZero reports whether no context was supplied
func (c AnalysisContext) IsZero() bool {
	return c.WritingType == "" && c.MainGoal == "" && len(c.Criteria) == 0 && len(c.Constraints) == 0
}

// Block renders the context as the labelled block used in oracle prompts
func (c AnalysisContext) Block(lang Language) string {
	labels := [4]string{"Writing type", "Main goal", "Criteria", "Constraints"}
	none := "not specified"
	if lang == LanguageVI || lang == LanguageMixed {
		labels = [4]string{"Loại văn bản", "Mục tiêu chính", "Tiêu chí", "Ràng buộc"}
		none = "không xác định"
	}

	orNone := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return none
		}
		return s
	}

	var b strings.Builder
	b.WriteString("- " + labels[0] + ": " + orNone(c.WritingType) + "\n")
	b.WriteString("- " + labels[1] + ": " + orNone(c.MainGoal) + "\n")
	b.WriteString("- " + labels[2] + ": " + orNone(strings.Join(c.Criteria, "; ")) + "\n")
	b.WriteString("- " + labels[3] + ": " + orNone(strings.Join(c.Constraints, "; ")) + "\n")
	return b.String()
}
