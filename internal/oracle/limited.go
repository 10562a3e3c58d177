package oracle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited throttles calls to another oracle
type Limited struct {
	next    Oracle
	limiter *rate.Limiter
}

// NewLimited wraps next with a token bucket of rps requests per second.
// rps <= 0 disables limiting.
func NewLimited(next Oracle, rps float64, burst int) Oracle {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Name returns the wrapped oracle's name
func (o *Limited) Name() string {
	return o.next.Name()
}

// Infer waits for a token, then calls the wrapped oracle
func (o *Limited) Infer(ctx context.Context, req Request) (*Candidates, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		// The next token would arrive after the deadline
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			return nil, fmt.Errorf("rate limit: %w (%v)", context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return o.next.Infer(ctx, req)
}
