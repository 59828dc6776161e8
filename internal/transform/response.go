// Response transformation: Cortensor completion response → OpenAI
// chat.completion object.
//
// DESIGN: This stage never fails. Whatever the downstream endpoint returned
// — malformed JSON, missing choices, empty body — the caller always gets a
// well-formed chat.completion object; shape failures map to a fixed
// apology with HTTP 500. Parsing is done with gjson so a single bad field
// cannot take down the whole reshape.
package transform

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/cortensor/openai-gateway/internal/oai"
)

// fallbackContent is returned when the downstream response is unusable.
const fallbackContent = "I apologize, but I was unable to process the response from the model. Please try again."

// fallbackModel names the synthesized response when the downstream reply
// carries no model field.
const fallbackModel = "cortensor"

// TransformResponse reshapes a downstream completion body into an OpenAI
// chat.completion object plus the HTTP status to serve it with.
//
// Non-empty search results are appended to the content as a numbered
// citation list. Usage passes through 1:1 when present and defaults to
// all-zero otherwise; id and created are synthesized when absent.
func TransformResponse(body []byte, results []WebSearchResult) (*oai.ChatCompletionResponse, int) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return errorCompletion(), 500
	}

	parsed := gjson.ParseBytes(body)
	rawChoices := parsed.Get("choices")
	if !rawChoices.IsArray() || len(rawChoices.Array()) == 0 {
		return errorCompletion(), 500
	}

	citations := ""
	if len(results) > 0 {
		citations = "\n\nSources:\n" + FormatCitations(results)
	}

	choices := make([]oai.ChatCompletionChoice, 0, len(rawChoices.Array()))
	for i, rc := range rawChoices.Array() {
		content := SanitizePrompt(rc.Get("text").String()) + citations
		finish := rc.Get("finish_reason").String()
		if finish == "" {
			finish = "stop"
		}
		choices = append(choices, oai.ChatCompletionChoice{
			Index:        i,
			Message:      oai.ChatMessage{Role: oai.RoleAssistant, Content: content},
			FinishReason: finish,
		})
	}

	resp := &oai.ChatCompletionResponse{
		ID:      parsed.Get("id").String(),
		Object:  "chat.completion",
		Created: parsed.Get("created").Int(),
		Model:   parsed.Get("model").String(),
		Choices: choices,
		Usage: oai.Usage{
			PromptTokens:     int(parsed.Get("usage.prompt_tokens").Int()),
			CompletionTokens: int(parsed.Get("usage.completion_tokens").Int()),
			TotalTokens:      int(parsed.Get("usage.total_tokens").Int()),
		},
	}
	stampIdentity(resp)
	return resp, 200
}

// errorCompletion builds the fixed, always-well-formed failure response.
func errorCompletion() *oai.ChatCompletionResponse {
	resp := &oai.ChatCompletionResponse{
		Object: "chat.completion",
		Model:  fallbackModel,
		Choices: []oai.ChatCompletionChoice{{
			Index:        0,
			Message:      oai.ChatMessage{Role: oai.RoleAssistant, Content: fallbackContent},
			FinishReason: "stop",
		}},
	}
	stampIdentity(resp)
	return resp
}

// stampIdentity synthesizes id/created/model when the downstream response
// omitted them.
func stampIdentity(resp *oai.ChatCompletionResponse) {
	if resp.ID == "" {
		resp.ID = "chatcmpl-" + uuid.NewString()
	}
	if resp.Created == 0 {
		resp.Created = time.Now().Unix()
	}
	if resp.Model == "" {
		resp.Model = fallbackModel
	}
}
