package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const ollamaBaseURL = "http://localhost:11434"

// OllamaProvider runs prompts on a local Ollama server through /api/chat
type OllamaProvider struct {
	client *jsonClient
	config Config
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatTurn     `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatReply struct {
	Model           string   `json:"model"`
	Message         chatTurn `json:"message"`
	Done            bool     `json:"done"`
	PromptEvalCount int      `json:"prompt_eval_count"`
	EvalCount       int      `json:"eval_count"`
}

// NewOllamaProvider never fails; the server is checked lazily
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = ollamaBaseURL
	}

	// Cold model loads take minutes
	client := newJSONClient("ollama", baseURL, config.timeout(3*time.Minute), config, nil, func(body []byte) string {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return e.Error
	})
	return &OllamaProvider{client: client, config: config}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	return p.client.ping(ctx, "/api/tags")
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	req = p.config.resolve(req, "")
	if req.Model == "" {
		return nil, fmt.Errorf("ollama needs a model name, e.g. llama3.1:8b or qwen2.5")
	}

	chat := ollamaChatRequest{
		Model: req.Model,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, chatTurn{Role: "system", Content: req.System})
	}
	chat.Messages = append(chat.Messages, chatTurn{Role: "user", Content: req.Prompt})
	if req.JSON {
		chat.Format = "json"
	}

	var reply ollamaChatReply
	if err := p.client.post(ctx, "/api/chat", chat, &reply); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(reply.Message.Content)
	used := reply.PromptEvalCount + reply.EvalCount
	if used == 0 {
		// rough estimate, ~4 bytes per token
		used = (len(req.System) + len(req.Prompt) + len(text)) / 4
	}
	return &CompletionResponse{Text: text, Model: reply.Model, TokensUsed: used}, nil
}
