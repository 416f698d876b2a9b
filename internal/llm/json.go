package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON decodes the first JSON object in a model response. Markdown code
// fences and chatter around the object are ignored.
func ParseJSON[T any](response string) (T, error) {
	var out T
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return out, fmt.Errorf("no JSON object in response %q", truncate(response, 80))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return out, fmt.Errorf("failed to decode response JSON: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
