// Package cortensor implements the downstream Cortensor completion API
// client and its wire types.
package cortensor

// Request is the Cortensor /completions request body.
//
// Sampling parameters carry a three-level default cascade applied by the
// request transformer: per-call model config, then (for temperature and
// max_tokens only) the inbound OpenAI request fields, then global defaults.
type Request struct {
	SessionID        int64   `json:"session_id"`
	Prompt           string  `json:"prompt"`
	PromptType       int     `json:"prompt_type"`
	PromptTemplate   string  `json:"prompt_template,omitempty"`
	Stream           bool    `json:"stream"`
	Timeout          int     `json:"timeout"`
	ClientReference  string  `json:"client_reference,omitempty"`
	MaxTokens        int     `json:"max_tokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	TopK             int     `json:"top_k"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

// Choice is a single completion choice in the downstream response.
type Choice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
	Logprobs     any    `json:"logprobs"`
}

// Usage reports token consumption from the downstream endpoint.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the Cortensor /completions response body.
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}
