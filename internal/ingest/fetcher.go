package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/util"
)

// ErrDisallowed is returned when robots.txt forbids fetching a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

const (
	fetchAttempts = 3
	maxRedirects  = 3
)

// StatusError is a non-2xx HTTP response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Fetcher downloads documents over HTTP
type Fetcher struct {
	httpClient *http.Client
	robots     *RobotsChecker // nil skips robots.txt
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a Fetcher from the ingest settings
func NewFetcher(cfg model.IngestConfig) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(cfg.UserAgent, cfg.Timeout, transport)
	}
	return f
}

// FetchResult is a downloaded body with its response metadata
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// Fetch downloads rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry fetches rawURL, retrying transient failures with a
// linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || attempt == fetchAttempts || ctx.Err() != nil {
			break
		}
		fetchSleepFunc(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

// isRetryableFetchError reports whether err is worth another attempt:
// 429, 5xx and network failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset")
}

// URLLoader loads http and https sources
type URLLoader struct {
	fetcher *Fetcher
}

// NewURLLoader creates a loader backed by a Fetcher
func NewURLLoader(cfg model.IngestConfig) *URLLoader {
	return &URLLoader{fetcher: NewFetcher(cfg)}
}

// CanHandle accepts http and https URLs
func (l *URLLoader) CanHandle(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load fetches the URL and extracts text according to its content type
func (l *URLLoader) Load(ctx context.Context, rawURL string) (*Source, error) {
	result, err := l.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rawURL, err)
	}

	src := &Source{Name: result.FinalURL, FinalURL: result.FinalURL, Title: extractSubject(result.FinalURL)}
	ct := strings.ToLower(result.ContentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		src.Kind = KindPDF
		src.Text, err = PDFText(result.Body)
	case strings.Contains(ct, "wordprocessingml"):
		src.Kind = KindDOCX
		src.Text, err = DOCXText(result.Body)
	case strings.HasPrefix(ct, "text/plain"):
		src.Kind = KindText
		src.Text = string(result.Body)
	default:
		src.Kind = KindHTML
		var page *Page
		page, err = HTMLText(string(result.Body), result.FinalURL)
		if page != nil {
			src.Text = page.Text
			if page.Title != "" {
				src.Title = page.Title
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return src, nil
}

// extractSubject derives a readable title from the last path segment
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.NewReplacer("_", " ", "-", " ").Replace(last)
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	if s, err := url.PathUnescape(last); err == nil {
		last = s
	}
	return last
}
