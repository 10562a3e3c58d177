package oracle

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logicguard/internal/cache"
	"github.com/ppiankov/logicguard/internal/llm"
	"github.com/ppiankov/logicguard/internal/model"
)

// New builds the oracle chain described by cfg: the heuristic oracle, or
// an LLM provider behind a rate limiter and the response cache. c may be
// nil to disable caching.
func New(cfg *model.Config, c cache.Cache) (Oracle, error) {
	switch strings.ToLower(cfg.Oracle.Provider) {
	case "heuristic", "offline":
		return NewHeuristic(nil), nil
	case "", "none":
		return nil, ErrNoProvider
	}

	provider, err := llm.NewProvider(llm.APIKeyFromEnv(llm.ConfigFromModel(cfg)))
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	if provider == nil {
		return nil, ErrNoProvider
	}

	var o Oracle = NewLLM(provider, cfg.Oracle)
	o = NewLimited(o, cfg.Oracle.RateLimit, cfg.Oracle.Burst)
	return NewCached(o, c, cfg.Cache.DiskTTL, "model="+cfg.Oracle.Model), nil
}
