package oracle

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ppiankov/logicguard/internal/cache"
)

// Cached memoizes another oracle's answers by oracle name, scope, document
// fingerprint, task, language and context
type Cached struct {
	next  Oracle
	cache cache.Cache
	ttl   time.Duration
	scope []string
}

// NewCached wraps next. A nil cache returns next unchanged. scope adds
// settings that change answers but not the oracle name, such as the model.
func NewCached(next Oracle, c cache.Cache, ttl time.Duration, scope ...string) Oracle {
	if c == nil {
		return next
	}
	return &Cached{next: next, cache: c, ttl: ttl, scope: scope}
}

// Name returns the wrapped oracle's name
func (o *Cached) Name() string {
	return o.next.Name()
}

// Infer serves from the cache or asks the wrapped oracle
func (o *Cached) Infer(ctx context.Context, req Request) (*Candidates, error) {
	actx, _ := json.Marshal(req.Context)
	parts := append([]string{o.next.Name()}, o.scope...)
	parts = append(parts, string(req.Task), string(req.language()), req.Doc.Fingerprint(), string(actx))
	key := cache.CacheKey(parts...)

	if data, ok := o.cache.Get(key); ok {
		var c Candidates
		if err := json.Unmarshal(data, &c); err == nil {
			slog.Debug("oracle cache hit", "task", req.Task)
			return &c, nil
		}
		_ = o.cache.Delete(key)
	}

	c, err := o.next.Infer(ctx, req)
	if err != nil {
		return nil, err
	}

	// Answers with undecodable items are not cached so a retry can do better
	if len(c.Errors) == 0 {
		if data, err := json.Marshal(c); err == nil {
			if err := o.cache.Set(key, data, o.ttl); err != nil {
				slog.Warn("oracle cache write failed", "error", err)
			}
		}
	}
	return c, nil
}
