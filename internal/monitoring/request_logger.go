// Request/response payload logging with redaction.
//
// DESIGN: Full chat payloads are noisy and may carry user content that
// should not land in logs verbatim. The request logger truncates every
// message content field in place (gjson to walk, sjson to patch) before
// emitting, unless verbose payload logging is enabled.
package monitoring

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// maxLoggedContentLen is the per-message content cap in redacted payloads.
const maxLoggedContentLen = 120

// RequestLogger emits structured request/response log lines.
type RequestLogger struct {
	verbose bool // log full payloads without redaction
}

// NewRequestLogger creates a RequestLogger.
func NewRequestLogger(verbose bool) *RequestLogger {
	return &RequestLogger{verbose: verbose}
}

// LogRequest logs an inbound chat completion request.
func (l *RequestLogger) LogRequest(requestID string, body []byte) {
	log.Info().
		Str("request_id", requestID).
		Int("body_bytes", len(body)).
		Str("model", gjson.GetBytes(body, "model").String()).
		Int("messages", len(gjson.GetBytes(body, "messages").Array())).
		RawJSON("payload", l.redact(body)).
		Msg("chat completion request")
}

// LogResponse logs the outcome of a completed request.
func (l *RequestLogger) LogResponse(requestID string, status int, body []byte, duration time.Duration) {
	event := log.Info()
	if status >= 500 {
		event = log.Error()
	} else if status >= 400 {
		event = log.Warn()
	}
	event.
		Str("request_id", requestID).
		Int("status", status).
		Int("body_bytes", len(body)).
		Dur("duration", duration).
		Msg("chat completion response")
}

// redact truncates every messages[].content string in the payload. Invalid
// JSON is replaced with a stub rather than logged raw.
func (l *RequestLogger) redact(body []byte) []byte {
	if !gjson.ValidBytes(body) {
		return []byte(`{"invalid_json":true}`)
	}
	if l.verbose {
		return body
	}

	out := body
	messages := gjson.GetBytes(body, "messages").Array()
	for i, msg := range messages {
		content := msg.Get("content")
		if content.Type != gjson.String || len(content.String()) <= maxLoggedContentLen {
			continue
		}
		truncated := content.String()[:maxLoggedContentLen] + "..."
		patched, err := sjson.SetBytes(out, fmt.Sprintf("messages.%d.content", i), truncated)
		if err != nil {
			continue
		}
		out = patched
	}
	return out
}
