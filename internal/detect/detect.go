// Package detect turns raw oracle candidates into validated findings.
// Each adapter re-checks every candidate against the document and the
// spelling ledger; nothing the oracle says is taken on trust.
package detect

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/extract"
	"github.com/ppiankov/logicguard/internal/ledger"
	"github.com/ppiankov/logicguard/internal/lexicon"
	"github.com/ppiankov/logicguard/internal/model"
)

// ErrSuppressed marks a candidate whose span was consumed by a spelling
// finding
var ErrSuppressed = errors.New("span consumed by a spelling finding")

// snippetLen caps fallback summaries and context snippets, in characters
const snippetLen = 160

// Options configures the adapters
type Options struct {
	Spelling  model.SpellingConfig
	Claims    model.ClaimsConfig
	Terms     model.TermsConfig
	Jumps     model.JumpsConfig
	Authority *model.AuthorityConfig
	Lexicon   *lexicon.Lexicon // nil uses the embedded default
}

// OptionsFromConfig picks the detector settings out of cfg
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		Spelling:  cfg.Spelling,
		Claims:    cfg.Claims,
		Terms:     cfg.Terms,
		Jumps:     cfg.Jumps,
		Authority: &cfg.Authority,
	}
}

// Env is the per-run input every adapter shares
type Env struct {
	Doc      *document.Document
	Language model.Language // Language of rendered locations
	Context  model.AnalysisContext
	View     ledger.View // Frozen spelling ledger
}

// Adapter holds the five detector adapters' shared state. It is safe for
// concurrent use once built.
type Adapter struct {
	opts        Options
	lex         *lexicon.Lexicon
	evidence    *extract.EvidenceExtractor
	classifier  *extract.ClaimExtractor
	properNouns map[string]bool
}

// New creates an Adapter, filling zero options with the defaults
func New(opts Options) *Adapter {
	def := model.DefaultConfig()
	if opts.Spelling.MinConfidence <= 0 {
		opts.Spelling.MinConfidence = def.Spelling.MinConfidence
	}
	if opts.Spelling.DefaultConfidence <= 0 {
		opts.Spelling.DefaultConfidence = def.Spelling.DefaultConfidence
	}
	if opts.Claims.ProximityWindow <= 0 {
		opts.Claims.ProximityWindow = def.Claims.ProximityWindow
	}
	if opts.Terms.DefinitionWindow <= 0 {
		opts.Terms.DefinitionWindow = def.Terms.DefinitionWindow
	}
	opts.Jumps.CoherenceThreshold = opts.Jumps.Threshold()
	if opts.Authority == nil {
		opts.Authority = &def.Authority
	}

	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}

	proper := make(map[string]bool, len(opts.Spelling.ProperNouns))
	for _, p := range opts.Spelling.ProperNouns {
		proper[strings.ToLower(strings.TrimSpace(p))] = true
	}

	return &Adapter{
		opts:        opts,
		lex:         lex,
		evidence:    extract.NewEvidenceExtractor(extract.NewAuthorityClassifier(opts.Authority)),
		classifier:  extract.NewClaimExtractor(),
		properNouns: proper,
	}
}

// CoherenceThreshold is the score below which a transition is a jump
func (a *Adapter) CoherenceThreshold() float64 {
	return a.opts.Jumps.CoherenceThreshold
}

func (e Env) location(s *document.Sentence) string {
	lang := e.Language
	if lang == "" || lang == model.LanguageAuto {
		lang = e.Doc.Language
	}
	return document.Location(s, lang)
}

func (e Env) vietnamese() bool {
	lang := e.Language
	if lang == "" || lang == model.LanguageAuto {
		lang = e.Doc.Language
	}
	return lang == model.LanguageVI || lang == model.LanguageMixed
}

// pick returns the first non-empty, trimmed value
func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// snippet shortens s to at most n characters, cutting at a word boundary
func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	cut := strings.LastIndex(string(runes), " ")
	if cut <= 0 {
		return string(runes) + "…"
	}
	return strings.TrimRight(string(runes)[:cut], " ,;:") + "…"
}

func suppressed(d model.Detector, i int) error {
	return &model.CandidateError{Detector: d, Index: i, Err: ErrSuppressed}
}
