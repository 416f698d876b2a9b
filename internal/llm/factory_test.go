package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/config"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient(ctx, config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: " Ollama ", Model: "llama3"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "claude", Model: "claude-3-haiku", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, c)

	_, err = NewClient(ctx, config.LLMConfig{Provider: "bard"}, nil)
	assert.ErrorContains(t, err, "unsupported llm provider")
}

func TestOllamaBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                         "http://localhost:11434/v1",
		"http://localhost:11434":   "http://localhost:11434/v1",
		"http://localhost:11434/":  "http://localhost:11434/v1",
		"http://gpu-box:11434/v1":  "http://gpu-box:11434/v1",
		"http://gpu-box:11434/v1/": "http://gpu-box:11434/v1",
	}
	for in, want := range tests {
		assert.Equal(t, want, OllamaBaseURL(in), in)
	}
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"name\": \"Yeast\"}"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), config.LLMConfig{Provider: "ollama", Model: "llama3", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "name this")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Yeast"}`, out)

	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "name this", got.Messages[1].Content)
}

func TestOpenAIClient_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{Model: "m", APIKey: "k", BaseURL: srv.URL + "/v1"})
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, errEmptyResponse)
}
