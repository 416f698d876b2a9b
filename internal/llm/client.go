package llm

import (
	"context"
	"errors"
)

// LLMClient turns a prompt into a completion. It is only used to label
// communities that were already computed.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// systemPrompt is sent with every request.
const systemPrompt = "You label clusters of academic papers for a research librarian. Answer with the JSON requested and nothing else."

const defaultMaxTokens = 1000

var errEmptyResponse = errors.New("empty completion")

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
