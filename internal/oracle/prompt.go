package oracle

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logicguard/internal/model"
)

// promptSet holds the wording of every prompt in one language
type promptSet struct {
	defaultType string
	role        string // %s: writing type
	priority    string
	jsonRules   string
	offsetRules string
	contextHead string
	docHead     string
	docBegin    string
	docEnd      string
	steps       map[model.Detector]string
	formats     map[model.Detector]string
	unified     string // %s: writing type
	closing     string
}

var promptsEN = promptSet{
	defaultType: "Document",
	role:        "You are LogicGuard, an expert analyst of the logic and structure of %s documents.",
	priority: `Analyze the document along 5 dimensions, in this PRIORITY ORDER:
1) Spelling Errors (English + Vietnamese)
2) Unsupported Claims
3) Undefined Terms
4) Contradictions
5) Logical Jumps
A substring flagged as a spelling error must not be reported again under any later dimension.`,
	jsonRules: `JSON RULES:
- Return EXACTLY ONE valid JSON object (no trailing commas, no comments).
- Do NOT wrap the JSON in markdown fences and do NOT add text outside it.
- If a section has no issues, return it with "items": [].`,
	offsetRules: `INDEXING RULES:
- start_pos and end_pos are 0-based CHARACTER indices into the ORIGINAL CONTENT.
- end_pos is exclusive: content[start_pos:end_pos] must equal "original" exactly.`,
	contextHead: "CONTEXT",
	docHead:     "DOCUMENT CONTENT",
	docBegin:    "<<<BEGIN DOCUMENT>>>",
	docEnd:      "<<<END DOCUMENT>>>",
	steps: map[model.Detector]string{
		model.DetectorSpelling: `SPELLING ERRORS
- Scan the whole content for obvious spelling mistakes in English AND Vietnamese.
- Only flag a token if you are at least 70% confident it is wrong in context; read 1-3 words either side.
- Never flag proper nouns, brand, product or model names (e.g. "iPhone", "YouTube", "NeuroLearn-X").
- In mixed EN + VI text, flag a token only if it is wrong in its own language.
Each item: original (exact substring), suggested (the final corrected form), start_pos, end_pos,
language ("en" or "vi"), reason (short), confidence (0-1).`,
		model.DetectorUnsupportedClaims: `UNSUPPORTED CLAIMS
- A claim asserts facts, trends, comparisons, predictions or causal relations
  (absolute: "X always works"; comparative: "X is faster than Y"; causal: "X causes Y";
  quantitative: "97% of users prefer this tool").
- Evidence is data, statistics, concrete examples, citations to credible sources or explicit reasoning.
- Evidence proximity rule: evidence counts only in the same sentence, within ±2 sentences,
  or in the same paragraph with an explicit connection.
Each item: claim (verbatim sentence or clause), location ("Paragraph X, Sentence Y"),
status ("unsupported" | "weak" | "partially_supported" | "supported"), claim_type
("absolute" | "comparative" | "causal" | "predictive" | "statistical" | ...), reason,
surrounding_context, suggestion (short). When you rely on evidence, also give evidence (verbatim),
evidence_location, evidence_specific (true if it contains a concrete datum or named source) and
evidence_link (true if the text explicitly links evidence and claim).`,
		model.DetectorUndefinedTerms: `UNDEFINED TERMS
- Candidate terms: model, framework, product or system names, domain-specific metrics,
  technical acronyms and specialized concepts that matter for understanding the document.
- A term is DEFINED if the text explains it near its first occurrence ("X is...", "X means...",
  "X (short for ...)", "X, also known as ...") or if the expected audience obviously knows it.
- Never return plain typos ("algoritm", "databaes") or common English words used naturally
  inside Vietnamese sentences ("system", "model", "accuracy").
Each item: term (exact substring), first_appeared ("Paragraph X, Sentence Y"), context_snippet,
is_defined, reason, suggestion, definition_found (the defining text, when defined).`,
		model.DetectorContradictions: `CONTRADICTIONS
- Two statements contradict when they cannot both be true in the same context: they disagree
  on facts, numbers, dates, outcomes or strong evaluations.
Each item: sentence1, sentence2 (full sentences from the content), sentence1_location,
sentence2_location, contradiction_type ("factual" | "numerical" | "temporal" | "logical"),
severity ("high" | "medium" | "low"), explanation, suggestion, central_to_goal (true if the
conflict undermines the main goal), stylistic (true if it is only a wording inconsistency).`,
		model.DetectorLogicalJumps: `LOGICAL JUMPS
- Score every transition between consecutive paragraphs: the topic or reasoning must not change
  abruptly without a bridge, explanation or justification.
Each item: from_paragraph (1-based), to_paragraph (from_paragraph + 1), from_paragraph_summary,
to_paragraph_summary, coherence_score (0-1, 1 = very coherent), flag ("abrupt_topic_shift" |
"missing_transition" | "unrelated_content"), severity, explanation, suggestion.
Only include items with coherence_score < 0.7.`,
	},
	formats: map[model.Detector]string{
		model.DetectorSpelling: `{"spelling_errors": {"items": [{"original": "speling", "suggested": "spelling", "start_pos": 32, "end_pos": 39, "language": "en", "reason": "Common misspelling.", "confidence": 0.95}]}}`,
		model.DetectorUnsupportedClaims: `{"unsupported_claims": [{"claim": "...", "location": "Paragraph 2, Sentence 1", "status": "unsupported", "claim_type": "absolute", "reason": "...", "surrounding_context": "...", "suggestion": "..."}],
 "supported_claims": [{"claim": "...", "location": "Paragraph 1, Sentence 2", "status": "supported", "evidence_type": "citation_with_data", "evidence": "...", "evidence_location": "Paragraph 1, Sentence 2", "evidence_specific": true}]}`,
		model.DetectorUndefinedTerms: `{"undefined_terms": [{"term": "Quantum Efficiency Score", "first_appeared": "Paragraph 2, Sentence 1", "context_snippet": "...", "is_defined": false, "reason": "...", "suggestion": "..."}],
 "defined_terms": [{"term": "gradient clipping", "first_appeared": "Paragraph 3, Sentence 2", "context_snippet": "...", "is_defined": true, "definition_found": "limiting the gradient norm"}]}`,
		model.DetectorContradictions: `{"contradictions": {"items": [{"sentence1": "...", "sentence2": "...", "sentence1_location": "Paragraph 1, Sentence 2", "sentence2_location": "Paragraph 3, Sentence 1", "contradiction_type": "numerical", "severity": "high", "explanation": "...", "suggestion": "...", "central_to_goal": true, "stylistic": false}]}}`,
		model.DetectorLogicalJumps: `{"logical_jumps": {"items": [{"from_paragraph": 1, "to_paragraph": 2, "from_paragraph_summary": "...", "to_paragraph_summary": "...", "coherence_score": 0.32, "flag": "abrupt_topic_shift", "severity": "high", "explanation": "...", "suggestion": "..."}]}}`,
	},
	unified: `{
  "analysis_metadata": {"analyzed_at": "ISO timestamp", "writing_type": "%s", "total_paragraphs": 0, "total_sentences": 0},
  "contradictions": {"total_found": 0, "items": []},
  "undefined_terms": {"total_found": 0, "items": []},
  "unsupported_claims": {"total_found": 0, "items": []},
  "logical_jumps": {"total_found": 0, "items": []},
  "spelling_errors": {"total_found": 0, "items": []},
  "summary": {"total_issues": 0, "critical_issues": 0, "document_quality_score": 0, "key_recommendations": []}
}`,
	closing: "Return ONLY the JSON object.",
}

var promptsVI = promptSet{
	defaultType: "Văn bản",
	role:        "Bạn là LogicGuard, chuyên gia phân tích logic và cấu trúc cho tài liệu %s (tiếng Việt, có thể xen tiếng Anh).",
	priority: `Phân tích văn bản theo 5 loại vấn đề, theo THỨ TỰ ƯU TIÊN:
1) Lỗi chính tả (tiếng Việt + tiếng Anh)
2) Luận điểm thiếu chứng cứ
3) Thuật ngữ chưa định nghĩa
4) Mâu thuẫn logic
5) Nhảy logic
Chuỗi đã gắn cờ lỗi chính tả KHÔNG được báo lại ở các loại sau.`,
	jsonRules: `QUY TẮC JSON:
- Chỉ trả về DUY NHẤT một object JSON hợp lệ.
- Không dùng markdown, không giải thích ngoài JSON.
- Nếu một loại không có lỗi, trả về "items": [].`,
	offsetRules: `QUY TẮC VỊ TRÍ:
- start_pos, end_pos là index KÝ TỰ 0-based trên chuỗi CONTENT gốc.
- end_pos là exclusive: content[start_pos:end_pos] phải đúng bằng "original".`,
	contextHead: "NGỮ CẢNH",
	docHead:     "VĂN BẢN GỐC (CONTENT)",
	docBegin:    "<<<BẮT ĐẦU VĂN BẢN>>>",
	docEnd:      "<<<KẾT THÚC VĂN BẢN>>>",
	steps: map[model.Detector]string{
		model.DetectorSpelling: `LỖI CHÍNH TẢ
- Tìm lỗi chính tả rõ ràng trong cả tiếng Việt và tiếng Anh, xét 1-3 từ trước và sau.
- Ví dụ: "nghien cúu" → "nghiên cứu", "cơ thễ" → "cơ thể", "compaeny" → "company".
- KHÔNG sửa tên thương hiệu, tên riêng, tên sản phẩm/mô hình ("Zindra", "Tâm Linh Omega").
- Nếu không chắc ≥ 70% rằng từ đó sai thì BỎ QUA.
Mỗi item: original, suggested (đáp án cuối), start_pos, end_pos, language ("vi" hoặc "en"),
reason (ngắn), confidence (0-1).`,
		model.DetectorUnsupportedClaims: `LUẬN ĐIỂM THIẾU CHỨNG CỨ
- Luận điểm: câu/mệnh đề khẳng định sự thật, xu hướng, hiệu quả, dự đoán, so sánh hoặc nhân quả.
- Chỉ xem là CÓ CHỨNG CỨ nếu bằng chứng nằm trong cùng câu, trong khoảng ±2 câu,
  hoặc trong cùng đoạn với liên kết rõ ràng.
Mỗi item: claim (nguyên văn), location ("Đoạn X, Câu Y"), status ("unsupported" | "weak" |
"partially_supported" | "supported"), claim_type, reason, surrounding_context, suggestion.
Nếu dựa vào bằng chứng, thêm evidence, evidence_location, evidence_specific, evidence_link.`,
		model.DetectorUndefinedTerms: `THUẬT NGỮ CHƯA ĐỊNH NGHĨA
- Thuật ngữ kỹ thuật, tên mô hình/hệ thống, metric lạ, từ viết tắt quan trọng
  nhưng không được giải thích ở lần xuất hiện đầu ("X là...", "X nghĩa là...", "X (viết tắt của ...)").
- KHÔNG coi lỗi chính tả là thuật ngữ; KHÔNG đánh dấu từ tiếng Anh phổ thông dùng tự nhiên trong câu tiếng Việt.
Mỗi item: term (đúng chuỗi trong CONTENT), first_appeared ("Đoạn X, Câu Y"), context_snippet,
is_defined, reason, suggestion, definition_found (nếu có định nghĩa).`,
		model.DetectorContradictions: `MÂU THUẪN LOGIC
- Hai câu không thể cùng đúng: khác nhau về sự thật, số liệu, thời gian, kết quả hoặc đánh giá.
- Ví dụ: "thử nghiệm thất bại hoàn toàn" và "thử nghiệm là một thành công vang dội".
Mỗi item: sentence1, sentence2 (nguyên văn), sentence1_location, sentence2_location,
contradiction_type ("factual" | "numerical" | "temporal" | "logical"), severity ("high" | "medium" | "low"),
explanation, suggestion, central_to_goal, stylistic.`,
		model.DetectorLogicalJumps: `NHẢY LOGIC
- Xét mạch nối giữa hai đoạn liên tiếp: chủ đề đổi hướng đột ngột, thiếu câu chuyển ý.
Mỗi item: from_paragraph (từ 1), to_paragraph (= from_paragraph + 1), from_paragraph_summary,
to_paragraph_summary, coherence_score (0-1), flag, severity, explanation, suggestion.
Chỉ đưa vào các item có coherence_score < 0.7.`,
	},
	formats: promptsEN.formats,
	unified: promptsEN.unified,
	closing: "Trả về DUY NHẤT object JSON này.",
}

func promptsFor(lang model.Language) *promptSet {
	if lang == model.LanguageVI || lang == model.LanguageMixed {
		return &promptsVI
	}
	return &promptsEN
}

// BuildPrompt renders the per-task prompt for task. An empty task renders
// the unified prompt covering all five detectors.
func BuildPrompt(task model.Detector, lang model.Language, actx model.AnalysisContext, content string) (system, prompt string) {
	ps := promptsFor(lang)
	writingType := actx.WritingType
	if strings.TrimSpace(writingType) == "" {
		writingType = ps.defaultType
	}

	var b strings.Builder
	section := func(s string) {
		b.WriteString("\n---------------------------\n")
		b.WriteString(s)
		b.WriteString("\n")
	}

	if task == "" {
		b.WriteString(ps.priority + "\n")
	}
	section(ps.contextHead + "\n" + actx.Block(lang))
	section(ps.docHead + "\n" + ps.docBegin + "\n" + content + "\n" + ps.docEnd)

	if task == "" {
		for i, d := range model.Priority {
			section(fmt.Sprintf("%d. %s", i+1, ps.steps[d]))
		}
		section(ps.offsetRules)
		section(fmt.Sprintf(ps.unified, writingType))
	} else {
		section(ps.steps[task])
		if task == model.DetectorSpelling {
			section(ps.offsetRules)
		}
		section(ps.formats[task])
	}
	b.WriteString("\n" + ps.closing + "\n")

	system = fmt.Sprintf(ps.role, writingType) + "\n\n" + ps.jsonRules
	return system, b.String()
}
