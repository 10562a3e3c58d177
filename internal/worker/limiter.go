package worker

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces out requests to the same host. Sources that are not
// http(s) URLs pass through untouched.
type Limiter struct {
	perHost rate.Limit
	burst   int
	hosts   sync.Map // lowercased host -> *rate.Limiter
}

// NewLimiter allows rps requests per second to each host. burst <= 0
// means 2.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 2
	}
	return &Limiter{perHost: rate.Limit(rps), burst: burst}
}

// Wait blocks until source may be fetched or ctx ends
func (l *Limiter) Wait(ctx context.Context, source string) error {
	host, ok := sourceHost(source)
	if !ok {
		return ctx.Err()
	}

	r := l.bucket(host).Reserve()
	if !r.OK() {
		return l.bucket(host).Wait(ctx)
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	slog.Debug("Throttling request", "host", host, "delay", delay.Round(time.Millisecond))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Allow takes a token for source if one is free
func (l *Limiter) Allow(source string) bool {
	if host, ok := sourceHost(source); ok {
		return l.bucket(host).Allow()
	}
	return true
}

// SetHostRate gives host its own rate. burst <= 0 keeps the default burst.
func (l *Limiter) SetHostRate(host string, rps float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.hosts.Store(strings.ToLower(host), rate.NewLimiter(rate.Limit(rps), burst))
}

func (l *Limiter) bucket(host string) *rate.Limiter {
	if b, ok := l.hosts.Load(host); ok {
		return b.(*rate.Limiter)
	}
	b, _ := l.hosts.LoadOrStore(host, rate.NewLimiter(l.perHost, l.burst))
	return b.(*rate.Limiter)
}

func (l *Limiter) hostCount() int {
	n := 0
	l.hosts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// sourceHost returns the lowercased host of an http or https source
func sourceHost(source string) (string, bool) {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch u.Scheme {
	case "http", "https":
		return strings.ToLower(u.Host), true
	}
	return "", false
}
