package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicModel   = "claude-3-5-sonnet-20241022"
)

// AnthropicProvider talks to the Anthropic Messages API
type AnthropicProvider struct {
	client *jsonClient
	config Config
}

type anthropicRequest struct {
	Model       string     `json:"model"`
	MaxTokens   int        `json:"max_tokens"`
	System      string     `json:"system,omitempty"`
	Messages    []chatTurn `json:"messages"`
	Temperature float32    `json:"temperature,omitempty"`
}

// chatTurn is one role/content message, shared with the Ollama chat API
type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicReply struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewAnthropicProvider needs an API key; BaseURL defaults to the public API
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	headers := map[string]string{
		"x-api-key":         config.APIKey,
		"anthropic-version": "2023-06-01",
	}
	client := newJSONClient("anthropic", baseURL, config.timeout(defaultTimeout), config, headers, func(body []byte) string {
		var e struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
			return ""
		}
		return e.Error.Type + " - " + e.Error.Message
	})
	return &AnthropicProvider{client: client, config: config}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// IsAvailable lists models, which costs no tokens
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	return p.client.ping(ctx, "/v1/models")
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	req = p.config.resolve(req, anthropicModel)

	// The Messages API has no JSON mode
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\nRespond with a single JSON object and nothing else.")
	}

	var reply anthropicReply
	err := p.client.post(ctx, "/v1/messages", anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		System:      system,
		Messages:    []chatTurn{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}, &reply)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic returned no text (stop reason %q)", reply.StopReason)
	}

	return &CompletionResponse{
		Text:       strings.TrimSpace(text.String()),
		Model:      reply.Model,
		TokensUsed: reply.Usage.InputTokens + reply.Usage.OutputTokens,
	}, nil
}
