package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cortensor/openai-gateway/internal/oai"
)

// TestFormatPromptRoleTags verifies the Human/Assistant rendering and
// blank-line joining.
func TestFormatPromptRoleTags(t *testing.T) {
	conversation := []oai.ChatMessage{
		{Role: oai.RoleUser, Content: "hello"},
		{Role: oai.RoleAssistant, Content: "hi there"},
		{Role: oai.RoleTool, Content: "raw tool text"},
	}

	prompt := FormatPrompt(nil, conversation, PromptOptions{})

	assert.Contains(t, prompt, "Human: hello")
	assert.Contains(t, prompt, "Assistant: hi there")
	assert.Contains(t, prompt, "raw tool text")
	assert.NotContains(t, prompt, "### SYSTEM INSTRUCTIONS ###")
}

// TestFormatPromptSystemBlock verifies system messages get their own
// delimited block followed by the conversation marker.
func TestFormatPromptSystemBlock(t *testing.T) {
	system := []oai.ChatMessage{
		{Role: oai.RoleSystem, Content: "be helpful"},
		{Role: oai.RoleSystem, Content: "be brief"},
	}
	conversation := []oai.ChatMessage{{Role: oai.RoleUser, Content: "hi"}}

	prompt := FormatPrompt(system, conversation, PromptOptions{})

	assert.Contains(t, prompt, "### SYSTEM INSTRUCTIONS ###\nbe helpful\n\nbe brief")
	assert.Contains(t, prompt, "### CONVERSATION ###")
	sysIdx := strings.Index(prompt, "### SYSTEM INSTRUCTIONS ###")
	convIdx := strings.Index(prompt, "### CONVERSATION ###")
	assert.Less(t, sysIdx, convIdx)
}

// TestFormatPromptTrailingCue verifies the Assistant: cue appears exactly
// when the conversation ends on a user message.
func TestFormatPromptTrailingCue(t *testing.T) {
	t.Run("user_last", func(t *testing.T) {
		prompt := FormatPrompt(nil, []oai.ChatMessage{{Role: oai.RoleUser, Content: "question"}}, PromptOptions{})
		assert.True(t, strings.HasSuffix(prompt, "Assistant:"))
	})

	t.Run("assistant_last", func(t *testing.T) {
		conversation := []oai.ChatMessage{
			{Role: oai.RoleUser, Content: "question"},
			{Role: oai.RoleAssistant, Content: "answer"},
		}
		prompt := FormatPrompt(nil, conversation, PromptOptions{})
		assert.False(t, strings.HasSuffix(prompt, "Assistant:"))
	})

	t.Run("empty_conversation", func(t *testing.T) {
		prompt := FormatPrompt(nil, nil, PromptOptions{})
		assert.False(t, strings.HasSuffix(prompt, "Assistant:"))
	})
}

// TestFormatPromptDateTime verifies the optional date block uses the
// injected clock.
func TestFormatPromptDateTime(t *testing.T) {
	fixed := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	opts := PromptOptions{IncludeDateTime: true, Now: func() time.Time { return fixed }}

	prompt := FormatPrompt(nil, []oai.ChatMessage{{Role: oai.RoleUser, Content: "hi"}}, opts)

	assert.Contains(t, prompt, "--- CURRENT DATE AND TIME ---")
	assert.Contains(t, prompt, "Friday, March 14, 2025")
}

// TestSanitizePrompt verifies control tokens are stripped and interior
// text preserved.
func TestSanitizePrompt(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"stop_tokens", "hello</s> world<s>", "hello world"},
		{"instruction_brackets", "[INST]do it[/INST]", "do it"},
		{"chat_markers", "<|endoftext|>answer<|im_end|>", "answer"},
		{"clean_input", "nothing to strip", "nothing to strip"},
		{"whitespace_trimmed", "  padded  ", "padded"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizePrompt(tc.input))
		})
	}
}
