package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortensor/openai-gateway/internal/config"
	"github.com/cortensor/openai-gateway/internal/oai"
)

type stubCompleter struct {
	text       string
	err        error
	lastPrompt string
}

func (s *stubCompleter) CompleteText(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	s.lastPrompt = prompt
	return s.text, s.err
}

// TestGenerateQueryEmptyInput verifies the fixed fallback for an empty
// conversation.
func TestGenerateQueryEmptyInput(t *testing.T) {
	query, err := GenerateQuery(context.Background(), nil, &stubCompleter{text: "anything"})
	require.NoError(t, err)
	assert.Equal(t, FallbackQuery, query)
}

// TestGenerateQuerySuccess verifies the generated query is cleaned and the
// prompt carried recent context.
func TestGenerateQuerySuccess(t *testing.T) {
	completer := &stubCompleter{text: `  "Tokyo weather forecast today"  `}
	messages := []oai.ChatMessage{
		{Role: oai.RoleUser, Content: "What is the weather in Tokyo?"},
	}

	query, err := GenerateQuery(context.Background(), messages, completer)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo weather forecast today", query)
	assert.Contains(t, completer.lastPrompt, "user: What is the weather in Tokyo?")
}

// TestGenerateQueryContextWindow verifies only the trailing messages feed
// the prompt.
func TestGenerateQueryContextWindow(t *testing.T) {
	completer := &stubCompleter{text: "q"}
	messages := []oai.ChatMessage{
		{Role: oai.RoleUser, Content: "ancient history"},
		{Role: oai.RoleUser, Content: "one"},
		{Role: oai.RoleAssistant, Content: "two"},
		{Role: oai.RoleUser, Content: "three"},
	}

	_, err := GenerateQuery(context.Background(), messages, completer)
	require.NoError(t, err)
	assert.NotContains(t, completer.lastPrompt, "ancient history")
	assert.Contains(t, completer.lastPrompt, "user: three")
}

// TestGenerateQueryDegradesOnFailure verifies a network-style failure falls
// back to the context text instead of failing the request.
func TestGenerateQueryDegradesOnFailure(t *testing.T) {
	completer := &stubCompleter{err: errors.New("connection refused")}
	messages := []oai.ChatMessage{{Role: oai.RoleUser, Content: "capital of France"}}

	query, err := GenerateQuery(context.Background(), messages, completer)
	require.NoError(t, err)
	assert.Contains(t, query, "capital of France")
}

// TestGenerateQueryConfigErrorPropagates verifies missing-credential
// failures are NOT swallowed.
func TestGenerateQueryConfigErrorPropagates(t *testing.T) {
	completer := &stubCompleter{err: &config.ConfigError{Message: "CORTENSOR_API_KEY is required"}}
	messages := []oai.ChatMessage{{Role: oai.RoleUser, Content: "anything"}}

	_, err := GenerateQuery(context.Background(), messages, completer)
	require.Error(t, err)
	assert.True(t, config.IsConfigError(err))
}

// TestGenerateQueryEmptyCleanedFallsBack verifies a reply that cleans down
// to nothing yields the context text.
func TestGenerateQueryEmptyCleanedFallsBack(t *testing.T) {
	completer := &stubCompleter{text: `""</s>`}
	messages := []oai.ChatMessage{{Role: oai.RoleUser, Content: "rust borrow checker"}}

	query, err := GenerateQuery(context.Background(), messages, completer)
	require.NoError(t, err)
	assert.Contains(t, query, "rust borrow checker")
}

// TestGenerateQueryNilCompleter verifies the generator works without a
// completion backend at all.
func TestGenerateQueryNilCompleter(t *testing.T) {
	messages := []oai.ChatMessage{{Role: oai.RoleUser, Content: "go generics"}}

	query, err := GenerateQuery(context.Background(), messages, nil)
	require.NoError(t, err)
	assert.Contains(t, query, "go generics")
}
