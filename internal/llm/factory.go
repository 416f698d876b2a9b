package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/config"
)

const defaultOllamaURL = "http://localhost:11434"

// NewClient builds the client for cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg)

	case "claude", "anthropic":
		return NewClaudeClient(cfg), nil

	case "ollama":
		cfg.BaseURL = OllamaBaseURL(cfg.BaseURL)
		logger.Info("using Ollama through its OpenAI-compatible API", zap.String("base_url", cfg.BaseURL))

		// Ollama ignores the key but the client requires one.
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return NewOpenAIClient(cfg), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// OllamaBaseURL points base at Ollama's /v1 endpoint.
func OllamaBaseURL(base string) string {
	if base == "" {
		base = defaultOllamaURL
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}
