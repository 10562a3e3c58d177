package llm

import (
	"fmt"
	"os"
	"strings"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(config)

	case "", "none":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// APIKeyFromEnv fills an empty API key from the provider's usual
// environment variable.
func APIKeyFromEnv(config Config) Config {
	if config.APIKey != "" {
		return config
	}

	switch strings.ToLower(config.Provider) {
	case "openai":
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "gemini", "google":
		config.APIKey = os.Getenv("GEMINI_API_KEY")
		if config.APIKey == "" {
			config.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
	return config
}
