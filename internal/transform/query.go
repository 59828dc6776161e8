// Search query generation.
//
// A small, low-temperature completion call turns recent conversation context
// into a concise web search query. The generator degrades gracefully: any
// non-configuration failure falls back to the raw context text so the
// overall request never dies here.
package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cortensor/openai-gateway/internal/config"
	"github.com/cortensor/openai-gateway/internal/oai"
)

const (
	// FallbackQuery is returned when there is no conversation context at all.
	FallbackQuery = "general information"

	// queryContextMessages is how many trailing messages feed the query.
	queryContextMessages = 3

	// queryMaxTokens caps the generated query length.
	queryMaxTokens = 50

	// queryTemperature keeps generation near-deterministic.
	queryTemperature = 0.1

	// maxQueryContextChars truncates oversized fallback context.
	maxQueryContextChars = 200
)

const queryPromptTemplate = `Generate a concise web search query (15 words or fewer) that would find current information to answer the conversation below. Reply with the query only, no quotes or explanation.

%s

Search query:`

// GenerateQuery derives a web search query from recent conversation context.
//
// Failure semantics: a *config.ConfigError from the completer propagates
// unchanged; any other completer failure degrades to returning the context
// text. Never returns an empty query.
func GenerateQuery(ctx context.Context, messages []oai.ChatMessage, completer QueryCompleter) (string, error) {
	if len(messages) == 0 {
		return FallbackQuery, nil
	}

	queryContext := buildQueryContext(messages)
	if queryContext == "" {
		queryContext = oai.ExtractContent(messages[len(messages)-1])
	}
	if queryContext == "" {
		return FallbackQuery, nil
	}

	fallback := truncate(queryContext, maxQueryContextChars)
	if completer == nil {
		return fallback, nil
	}

	prompt := fmt.Sprintf(queryPromptTemplate, queryContext)
	raw, err := completer.CompleteText(ctx, prompt, queryMaxTokens, queryTemperature)
	if err != nil {
		if config.IsConfigError(err) {
			return "", err
		}
		log.Warn().Err(err).Msg("query generation failed, falling back to context text")
		return fallback, nil
	}

	query := cleanQuery(raw)
	if query == "" {
		return fallback, nil
	}
	return query, nil
}

// buildQueryContext renders the last few messages as "role: content" lines.
func buildQueryContext(messages []oai.ChatMessage) string {
	start := len(messages) - queryContextMessages
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, msg := range messages[start:] {
		content := oai.ExtractContent(msg)
		if content == "" {
			continue
		}
		lines = append(lines, msg.Role+": "+content)
	}
	return strings.Join(lines, "\n")
}

// cleanQuery strips control tokens, instruction brackets and surrounding
// quotes from generated text.
func cleanQuery(s string) string {
	s = SanitizePrompt(s)
	// Models sometimes echo the "Search query:" label back.
	s = strings.TrimPrefix(s, "Search query:")
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max])
}
