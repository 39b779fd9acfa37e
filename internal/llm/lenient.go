package llm

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// StripCodeFence removes a surrounding ```json ... ``` fence that chat models
// sometimes wrap around JSON content.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// SanitizeSummary accepts a bare string or an object using a synonym key and
// rewrites it as {"summary": "..."}.
func SanitizeSummary(doc []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, err
	}
	var text string
	switch t := v.(type) {
	case string:
		text = t
	case map[string]any:
		for _, k := range []string{"summary", "summary_text", "narrative", "text"} {
			if s, ok := t[k].(string); ok {
				text = s
				break
			}
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no summary text in response")
	}
	return json.Marshal(map[string]string{"summary": text})
}
