package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/logicguard/internal/cache"
	"github.com/ppiankov/logicguard/internal/document"
	"github.com/ppiankov/logicguard/internal/llm"
	"github.com/ppiankov/logicguard/internal/model"
)

// LLM asks a language model for candidates
type LLM struct {
	provider llm.Provider
	mode     string
	locate   bool

	group singleflight.Group
	memo  *cache.MemoryCache // Unified answers by document and context
}

// NewLLM wraps provider. In unified mode one model call answers all five
// detectors for a document; later requests reuse the memoized answer.
func NewLLM(provider llm.Provider, cfg model.OracleConfig) *LLM {
	mode := cfg.Mode
	if mode != model.OracleModeUnified {
		mode = model.OracleModePerTask
	}
	return &LLM{
		provider: provider,
		mode:     mode,
		locate:   cfg.LocateOffsets,
		memo:     cache.NewMemoryCache(10*time.Minute, time.Minute),
	}
}

// Name returns the provider name
func (o *LLM) Name() string {
	return "llm:" + o.provider.Name() + ":" + o.mode
}

// Infer runs one task prompt, or the shared unified prompt
func (o *LLM) Infer(ctx context.Context, req Request) (*Candidates, error) {
	var (
		all *Candidates
		err error
	)
	if o.mode == model.OracleModeUnified {
		all, err = o.unified(ctx, req)
	} else {
		all, err = o.complete(ctx, req, req.Task)
	}
	if err != nil {
		return nil, err
	}

	out := all.Only(req.Task)
	if o.locate && req.Task == model.DetectorSpelling {
		relocate(req.Doc, out.Spelling)
	}
	return out, nil
}

func (o *LLM) unified(ctx context.Context, req Request) (*Candidates, error) {
	actx, _ := json.Marshal(req.Context)
	key := cache.CacheKey(req.Doc.Fingerprint(), string(req.language()), string(actx))

	if c, ok := o.memoized(key); ok {
		return c, nil
	}

	v, err, shared := o.group.Do(key, func() (any, error) {
		// A flight that finished between the check above and Do already
		// stored the answer
		if c, ok := o.memoized(key); ok {
			return c, nil
		}
		c, err := o.complete(ctx, req, "")
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(c); err == nil {
			_ = o.memo.Set(key, data, 0)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("unified oracle answer shared", "task", req.Task)
	}
	return v.(*Candidates), nil
}

func (o *LLM) memoized(key string) (*Candidates, bool) {
	data, ok := o.memo.Get(key)
	if !ok {
		return nil, false
	}
	var c Candidates
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false
	}
	return &c, true
}

func (o *LLM) complete(ctx context.Context, req Request, task model.Detector) (*Candidates, error) {
	system, prompt := BuildPrompt(task, req.language(), req.Context, req.Doc.Text)

	resp, err := o.provider.Complete(ctx, llm.CompletionRequest{
		System: system,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", o.provider.Name(), err)
	}

	c, err := Decode(resp.Text)
	if err != nil {
		return nil, err
	}
	slog.Debug("oracle answer decoded",
		"provider", o.provider.Name(),
		"task", task,
		"candidates", c.Len(),
		"rejected", len(c.Errors),
		"tokens", resp.TokensUsed)
	return c, nil
}

// relocate moves spelling candidates whose offsets do not slice to their
// original token onto the nearest exact occurrence. Candidates with no
// occurrence are left alone for the core to reject.
func relocate(doc *document.Document, cands []SpellingCandidate) {
	for i := range cands {
		c := &cands[i]
		if got, ok := doc.Slice(c.StartPos, c.EndPos); ok && got == c.Original {
			continue
		}
		start := nearest(doc, c.Original, c.StartPos)
		if start < 0 {
			continue
		}
		c.StartPos = start
		c.EndPos = start + len([]rune(c.Original))
	}
}

func nearest(doc *document.Document, s string, hint int) int {
	best, bestDist := -1, 0
	for i := doc.Index(s, 0); i >= 0; i = doc.Index(s, i+1) {
		dist := i - hint
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}
