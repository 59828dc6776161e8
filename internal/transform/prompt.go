// Prompt assembly: flattening chat messages into Cortensor's prompt text.
package transform

import (
	"regexp"
	"strings"
	"time"

	"github.com/cortensor/openai-gateway/internal/oai"
)

// Prompt section markers.
const (
	systemHeader       = "### SYSTEM INSTRUCTIONS ###"
	conversationHeader = "### CONVERSATION ###"
	dateTimeHeader     = "--- CURRENT DATE AND TIME ---"
	assistantCue       = "Assistant:"
)

// PromptOptions controls optional prompt decoration.
type PromptOptions struct {
	// IncludeDateTime appends a current date/time block after the
	// conversation. Formatting decoration, not a correctness requirement.
	IncludeDateTime bool

	// Now overrides the clock for the date/time block. Nil means time.Now.
	Now func() time.Time
}

// FormatPrompt assembles system and conversation messages into a single
// flat prompt.
//
// Layout:
//
//	### SYSTEM INSTRUCTIONS ###   (only when system messages exist)
//	<system contents, blank-line joined>
//
//	### CONVERSATION ###
//	Human: ...       (role=user)
//	Assistant: ...   (role=assistant)
//	<raw text>       (other roles)
//
// A trailing "Assistant:" cue is appended when the final message is from the
// user, so the downstream model continues as assistant.
func FormatPrompt(system, conversation []oai.ChatMessage, opts PromptOptions) string {
	var sections []string

	if len(system) > 0 {
		contents := make([]string, 0, len(system))
		for _, msg := range system {
			if text := oai.ExtractContent(msg); text != "" {
				contents = append(contents, text)
			}
		}
		sections = append(sections, systemHeader+"\n"+strings.Join(contents, "\n\n"))
		sections = append(sections, conversationHeader)
	}

	entries := make([]string, 0, len(conversation))
	for _, msg := range conversation {
		text := oai.ExtractContent(msg)
		switch msg.Role {
		case oai.RoleUser:
			entries = append(entries, "Human: "+text)
		case oai.RoleAssistant:
			entries = append(entries, "Assistant: "+text)
		default:
			entries = append(entries, text)
		}
	}
	if len(entries) > 0 {
		sections = append(sections, strings.Join(entries, "\n\n"))
	}

	if opts.IncludeDateTime {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		sections = append(sections, dateTimeHeader+"\n"+now().Format("Monday, January 2, 2006 15:04:05 MST"))
	}

	prompt := strings.Join(sections, "\n\n")

	if len(conversation) > 0 && conversation[len(conversation)-1].Role == oai.RoleUser {
		prompt += "\n\n" + assistantCue
	}

	return prompt
}

// Control and instruction tokens some models leak into generated text.
var controlTokenRe = regexp.MustCompile(`</?s>|\[/?INST\]|<\|[a-zA-Z_]+\|>`)

// SanitizePrompt strips leftover stop/instruction tokens from prompt text
// and trims the result. Interior text is left untouched.
func SanitizePrompt(s string) string {
	return strings.TrimSpace(controlTokenRe.ReplaceAllString(s, ""))
}
