package summary

import (
	"context"
	"sync"
)

// MockLLMClient returns Response (or the result of Respond when set) and
// records every prompt it receives.
type MockLLMClient struct {
	Response string
	Err      error
	Respond  func(prompt string) (string, error)

	mu      sync.Mutex
	Prompts []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.Respond != nil {
		return m.Respond(prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
