package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/logicguard/internal/util"
)

// jsonClient posts JSON to a provider REST API and decodes the answer.
// Non-200 answers become *APIError with the message errMessage extracts.
type jsonClient struct {
	provider   string
	baseURL    string
	headers    map[string]string
	http       *http.Client
	errMessage func(body []byte) string
}

func newJSONClient(provider, baseURL string, timeout time.Duration, config Config, headers map[string]string, errMessage func([]byte) string) *jsonClient {
	return &jsonClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		headers:  headers,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy)},
		},
		errMessage: errMessage,
	}
}

func (c *jsonClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := ""
		if c.errMessage != nil {
			msg = c.errMessage(raw)
		}
		if msg == "" {
			msg = string(raw)
		}
		return &APIError{Provider: c.provider, Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// ping reports whether GET path answers 200
func (c *jsonClient) ping(ctx context.Context, path string) bool {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("Provider check failed", "provider", c.provider, "base_url", c.baseURL, "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Provider check failed", "provider", c.provider, "status", resp.StatusCode)
		return false
	}
	return true
}

func (c *jsonClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
