package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortensor/openai-gateway/internal/oai"
)

// TestTransformResponseSuccess verifies the straight reshape of a healthy
// downstream reply.
func TestTransformResponseSuccess(t *testing.T) {
	body := []byte(`{
		"choices": [{"text": "Paris is the capital.", "index": 0, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 6, "total_tokens": 11}
	}`)

	resp, status := TransformResponse(body, nil)
	require.Equal(t, 200, status)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Paris is the capital.", resp.Choices[0].Message.Content)
	assert.Equal(t, oai.RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, 11, resp.Usage.TotalTokens)
	assert.Equal(t, 5, resp.Usage.PromptTokens)
	assert.Equal(t, "chat.completion", resp.Object)
	assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))
	assert.NotZero(t, resp.Created)
	assert.Equal(t, "cortensor", resp.Model)
}

// TestTransformResponseNeverFails covers the unusable-body cases: the
// caller always gets a well-formed completion with non-empty content.
func TestTransformResponseNeverFails(t *testing.T) {
	testCases := []struct {
		name string
		body []byte
	}{
		{"empty_body", nil},
		{"garbage", []byte("<html>502 Bad Gateway</html>")},
		{"missing_choices", []byte(`{"usage": {"total_tokens": 3}}`)},
		{"empty_choices", []byte(`{"choices": []}`)},
		{"choices_not_array", []byte(`{"choices": "oops"}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, status := TransformResponse(tc.body, nil)

			assert.Equal(t, 500, status)
			require.Len(t, resp.Choices, 1)
			content, ok := resp.Choices[0].Message.Content.(string)
			require.True(t, ok)
			assert.NotEmpty(t, content)
			assert.Equal(t, "chat.completion", resp.Object)
			assert.NotEmpty(t, resp.ID)
			assert.NotZero(t, resp.Created)
		})
	}
}

// TestTransformResponseCitations verifies search results append a Sources
// block to the content.
func TestTransformResponseCitations(t *testing.T) {
	body := []byte(`{"choices": [{"text": "Sunny, 22C.", "finish_reason": "stop"}]}`)
	results := []WebSearchResult{
		{Title: "Tokyo Weather", URL: "https://weather.example/tokyo"},
	}

	resp, status := TransformResponse(body, results)
	require.Equal(t, 200, status)

	content := resp.Choices[0].Message.Content.(string)
	assert.True(t, strings.HasPrefix(content, "Sunny, 22C."))
	assert.Contains(t, content, "Sources:")
	assert.Contains(t, content, "[1] [Tokyo Weather](https://weather.example/tokyo)")
}

// TestTransformResponseDefaults verifies missing optional fields get sane
// values: zero usage, "stop" finish reason, synthesized identity.
func TestTransformResponseDefaults(t *testing.T) {
	body := []byte(`{"choices": [{"text": "hi"}]}`)

	resp, status := TransformResponse(body, nil)
	require.Equal(t, 200, status)

	assert.Equal(t, oai.Usage{}, resp.Usage)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))
	assert.Equal(t, "cortensor", resp.Model)
}

// TestTransformResponseSanitizesControlTokens verifies leaked stop tokens
// never reach the client.
func TestTransformResponseSanitizesControlTokens(t *testing.T) {
	body := []byte(`{"choices": [{"text": "the answer</s><|im_end|>"}]}`)

	resp, status := TransformResponse(body, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "the answer", resp.Choices[0].Message.Content)
}

// TestTransformResponsePreservesIdentity verifies downstream id/model pass
// through untouched when present.
func TestTransformResponsePreservesIdentity(t *testing.T) {
	body := []byte(`{"id": "cmpl-abc", "created": 1700000000, "model": "llava-v1.6", "choices": [{"text": "ok"}]}`)

	resp, status := TransformResponse(body, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "cmpl-abc", resp.ID)
	assert.Equal(t, int64(1700000000), resp.Created)
	assert.Equal(t, "llava-v1.6", resp.Model)
}

// TestTransformResponseMultipleChoices verifies indexes are re-stamped in
// order.
func TestTransformResponseMultipleChoices(t *testing.T) {
	body := []byte(`{"choices": [{"text": "a"}, {"text": "b"}]}`)

	resp, status := TransformResponse(body, nil)
	require.Equal(t, 200, status)
	require.Len(t, resp.Choices, 2)
	assert.Equal(t, 0, resp.Choices[0].Index)
	assert.Equal(t, 1, resp.Choices[1].Index)
	assert.Equal(t, "b", resp.Choices[1].Message.Content)
}
