package curator

import "strings"

// cleanResponse strips common LLM artifacts from output.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)

	// Strip thinking tags (Qwen 3 thinking mode leakage)
	if idx := strings.Index(s, "</think>"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("</think>"):])
	}

	// Strip markdown fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	return strings.TrimSpace(s)
}
