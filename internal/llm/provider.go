package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/logicguard/internal/model"
)

const defaultTimeout = 60 * time.Second

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the model's text answer
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one completion
type CompletionRequest struct {
	// System is the system instruction, if the backend supports one
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured temperature when > 0
	Temperature float32

	// JSON asks the backend for a JSON-only response where supported
	JSON bool
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	// Text is the raw answer text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, proxies)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60 * time.Second,
		MaxTokens:   4096,
		Temperature: 0.1,
	}
}

// ConfigFromModel converts the oracle and ingest settings to llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:    cfg.Oracle.Provider,
		Model:       cfg.Oracle.Model,
		APIKey:      cfg.Oracle.APIKey,
		BaseURL:     cfg.Oracle.BaseURL,
		Timeout:     cfg.Oracle.Timeout,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Temperature: cfg.Oracle.Temperature,
		HTTPProxy:   cfg.Ingest.HTTPProxy,
		HTTPSProxy:  cfg.Ingest.HTTPSProxy,
		NoProxy:     cfg.Ingest.NoProxy,
	}
}

// APIError is a non-success HTTP answer from a provider
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Message)
}

// Temporary reports whether retrying the request may succeed
func (e *APIError) Temporary() bool {
	return e.Status == 408 || e.Status == 429 || e.Status/100 == 5
}

// IsTemporary reports whether err is a provider error worth retrying
func IsTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// resolve fills request defaults from the provider config
func (c Config) resolve(req CompletionRequest, fallbackModel string) CompletionRequest {
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.Model == "" {
		req.Model = fallbackModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}
	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}
	return req
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}
