// Request transformation: OpenAI chat completion request → Cortensor
// completion request.
package transform

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/cortensor/openai-gateway/internal/config"
	"github.com/cortensor/openai-gateway/internal/cortensor"
	"github.com/cortensor/openai-gateway/internal/oai"
)

// RequestOptions is the per-call model configuration decoded from a
// synthetic model name (or injected directly). Nil fields fall through the
// default cascade.
type RequestOptions struct {
	SessionID        *int64           `json:"session_id,omitempty"`
	Temperature      *float64         `json:"temperature,omitempty"`
	MaxTokens        *int             `json:"max_tokens,omitempty"`
	TopP             *float64         `json:"top_p,omitempty"`
	TopK             *int             `json:"top_k,omitempty"`
	PresencePenalty  *float64         `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64         `json:"frequency_penalty,omitempty"`
	Timeout          *int             `json:"timeout,omitempty"`
	PromptType       *int             `json:"prompt_type,omitempty"`
	PromptTemplate   *string          `json:"prompt_template,omitempty"`
	ClientReference  *string          `json:"client_reference,omitempty"`
	SearchMode       *SearchMode      `json:"web_search_mode,omitempty"`
	SearchMaxResults *int             `json:"web_search_max_results,omitempty"`
	WebSearch        *WebSearchConfig `json:"-"` // live provider, injected by the caller
}

// Result bundles the transformed request with the search artifacts the
// response stage needs for citations. SearchResults and SearchQuery are
// unset when no search ran or the search branch degraded.
type Result struct {
	Request       *cortensor.Request
	SearchResults []WebSearchResult
	SearchQuery   string
}

// Transformer converts inbound request bodies. Stateless across calls;
// safe for concurrent use.
type Transformer struct {
	defaults  config.Defaults
	sessionID int64
	webSearch config.WebSearchConfig
	completer QueryCompleter
	prompt    PromptOptions
}

// NewTransformer builds a Transformer from the gateway configuration.
// completer may be nil; query generation then falls back to context text.
func NewTransformer(cfg *config.Config, completer QueryCompleter) *Transformer {
	return &Transformer{
		defaults:  cfg.Defaults,
		sessionID: cfg.Cortensor.SessionID,
		webSearch: cfg.WebSearch,
		completer: completer,
		prompt:    PromptOptions{IncludeDateTime: cfg.WebSearch.IncludeDateTime},
	}
}

// TransformRequest runs the linear pipeline:
//
//	parse → directives → (optional) query-gen + search → prompt build →
//	sanitize → parameter defaulting
//
// Failures inside the optional search branch are contained: the prompt is
// built without results and the request still succeeds. Two exceptions are
// fatal: a malformed body (*TransformError) and a configuration error
// surfaced during query generation.
func (t *Transformer) TransformRequest(ctx context.Context, body []byte, opts *RequestOptions) (*Result, error) {
	var req oai.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &TransformError{Op: "parse", Cause: err}
	}

	searchCfg := t.effectiveSearchConfig(opts)
	directives := ParseDirectives(req.Messages, searchCfg)

	var (
		results   []WebSearchResult
		query     string
		searchRan bool
	)
	if directives.ShouldSearch && searchCfg != nil && searchCfg.Provider != nil {
		var err error
		results, query, err = t.runSearch(ctx, directives.Cleaned, searchCfg)
		switch {
		case err == nil:
			searchRan = true
		case isFatalSearchErr(err):
			return nil, err
		default:
			log.Warn().Err(err).Msg("search augmentation failed, continuing without results")
		}
	}

	system, conversation := oai.SplitBySystem(directives.Cleaned)
	prompt := FormatPrompt(system, conversation, t.prompt)
	if searchRan {
		budget := Budget{Ceiling: t.webSearch.TokenBudget, HeaderReserve: t.webSearch.HeaderReserve}
		prompt = InjectResults(prompt, query, results, budget)
	}
	prompt = SanitizePrompt(prompt)

	out := &Result{Request: t.buildRequest(prompt, &req, opts)}
	if searchRan {
		out.SearchResults = results
		out.SearchQuery = query
	}
	return out, nil
}

// runSearch generates a query and invokes the provider. Returned errors are
// either fatal configuration errors or recoverable *WebSearchError values.
func (t *Transformer) runSearch(ctx context.Context, messages []oai.ChatMessage, cfg *WebSearchConfig) ([]WebSearchResult, string, error) {
	query, err := GenerateQuery(ctx, messages, t.completer)
	if err != nil {
		return nil, "", err // config error, fatal by contract
	}

	results, err := InvokeSearch(ctx, cfg.Provider, query, cfg.MaxResults)
	if err != nil {
		return nil, "", err
	}
	return results, query, nil
}

// isFatalSearchErr reports whether a search-branch error must abort the
// request: bare configuration errors and WebSearchErrors wrapping one.
func isFatalSearchErr(err error) bool {
	var wse *WebSearchError
	if errors.As(err, &wse) {
		return wse.Fatal()
	}
	return config.IsConfigError(err)
}

// effectiveSearchConfig merges the global search settings with per-call
// overrides. Returns nil when no search configuration applies at all.
func (t *Transformer) effectiveSearchConfig(opts *RequestOptions) *WebSearchConfig {
	cfg := &WebSearchConfig{
		Mode:       SearchMode(t.webSearch.Mode),
		MaxResults: t.webSearch.MaxResults,
	}
	if opts == nil {
		return cfg
	}
	if opts.WebSearch != nil {
		merged := *opts.WebSearch
		if merged.Mode == "" {
			merged.Mode = cfg.Mode
		}
		if merged.MaxResults <= 0 {
			merged.MaxResults = cfg.MaxResults
		}
		cfg = &merged
	}
	if opts.SearchMode != nil {
		cfg.Mode = *opts.SearchMode
	}
	if opts.SearchMaxResults != nil {
		cfg.MaxResults = *opts.SearchMaxResults
	}
	return cfg
}

// buildRequest applies the default cascade: per-call options, then (for
// temperature and max_tokens) the inbound request's own fields, then the
// global defaults.
func (t *Transformer) buildRequest(prompt string, req *oai.ChatCompletionRequest, opts *RequestOptions) *cortensor.Request {
	d := t.defaults
	out := &cortensor.Request{
		SessionID:        t.sessionID,
		Prompt:           prompt,
		PromptType:       d.PromptType,
		PromptTemplate:   d.PromptTemplate,
		Stream:           false,
		Timeout:          d.Timeout,
		ClientReference:  d.ClientReference,
		MaxTokens:        d.MaxTokens,
		Temperature:      d.Temperature,
		TopP:             d.TopP,
		TopK:             d.TopK,
		PresencePenalty:  d.PresencePenalty,
		FrequencyPenalty: d.FrequencyPenalty,
	}

	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}

	if opts == nil {
		return out
	}
	if opts.SessionID != nil {
		out.SessionID = *opts.SessionID
	}
	if opts.Temperature != nil {
		out.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		out.MaxTokens = *opts.MaxTokens
	}
	if opts.TopP != nil {
		out.TopP = *opts.TopP
	}
	if opts.TopK != nil {
		out.TopK = *opts.TopK
	}
	if opts.PresencePenalty != nil {
		out.PresencePenalty = *opts.PresencePenalty
	}
	if opts.FrequencyPenalty != nil {
		out.FrequencyPenalty = *opts.FrequencyPenalty
	}
	if opts.Timeout != nil {
		out.Timeout = *opts.Timeout
	}
	if opts.PromptType != nil {
		out.PromptType = *opts.PromptType
	}
	if opts.PromptTemplate != nil {
		out.PromptTemplate = *opts.PromptTemplate
	}
	if opts.ClientReference != nil {
		out.ClientReference = *opts.ClientReference
	}
	return out
}
