// Package transform converts OpenAI-shaped chat completion requests into
// Cortensor completion requests and back, with optional web-search
// augmentation of the prompt.
//
// FLOW (one direction per call, no shared state across calls):
//  1. TransformRequest parses the inbound body and scans the last message
//     for search directives
//  2. If a search should run, a query is generated (small completion call)
//     and the configured Searcher invoked; failures here degrade to the
//     plain prompt path
//  3. The conversation is flattened into Cortensor's prompt text, search
//     results injected under a token budget
//  4. TransformResponse reshapes the downstream reply into an OpenAI
//     chat.completion object, citing search results when present
package transform

import (
	"context"

	"github.com/cortensor/openai-gateway/internal/oai"
)

// SearchMode controls when web search augmentation runs.
type SearchMode string

const (
	// SearchModePrompt searches only when the user opts in with a [search]
	// marker in the last message.
	SearchModePrompt SearchMode = "prompt"
	// SearchModeForce always searches, markers ignored.
	SearchModeForce SearchMode = "force"
	// SearchModeDisable never searches, markers ignored.
	SearchModeDisable SearchMode = "disable"
)

// Searcher is the pluggable web search capability.
//
// Callers holding a bare function adapt it once with SearcherFunc instead of
// branching on provider shape at every call site.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebSearchResult, error)
}

// SearcherFunc adapts a plain function into a Searcher.
type SearcherFunc func(ctx context.Context, query string, maxResults int) ([]WebSearchResult, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string, maxResults int) ([]WebSearchResult, error) {
	return f(ctx, query, maxResults)
}

// WebSearchResult is one normalized search hit. Provider order is preserved;
// no uniqueness is enforced.
type WebSearchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// WebSearchConfig is the per-call search configuration.
type WebSearchConfig struct {
	Mode       SearchMode
	Provider   Searcher // nil disables search regardless of mode
	MaxResults int      // <=0 means DefaultMaxResults
}

// DefaultMaxResults is used when WebSearchConfig.MaxResults is unset.
const DefaultMaxResults = 5

// SearchDirectives is the outcome of scanning the last message for inline
// markers. Cleaned is the input message list with directive markers stripped
// from the last message; the input is never mutated.
type SearchDirectives struct {
	ShouldSearch bool
	Cleaned      []oai.ChatMessage
}

// QueryCompleter is the completion capability the query generator delegates
// to. Implemented by the Cortensor client.
type QueryCompleter interface {
	CompleteText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}
