package oai

import "strings"

// ExtractContent normalizes a message's content into a single string.
//
// Shapes handled:
//   - string: returned verbatim (no trimming)
//   - []any: entries that are raw strings or {type:"text", text:...} maps are
//     collected, joined with a single space, and the result trimmed
//   - anything else (nil, numbers, objects): empty string
//
// Never fails. Other part types (image_url etc.) are ignored.
func ExtractContent(msg ChatMessage) string {
	switch content := msg.Content.(type) {
	case string:
		return content
	case []any:
		parts := make([]string, 0, len(content))
		for _, item := range content {
			switch v := item.(type) {
			case string:
				parts = append(parts, v)
			case map[string]any:
				typ, _ := v["type"].(string)
				if typ != "text" {
					continue
				}
				if text, ok := v["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	default:
		return ""
	}
}

// SplitBySystem partitions messages into system messages and the rest,
// preserving relative order within each group.
func SplitBySystem(messages []ChatMessage) (system, conversation []ChatMessage) {
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg)
		} else {
			conversation = append(conversation, msg)
		}
	}
	return system, conversation
}
