package monitoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestRedactTruncatesLongContent(t *testing.T) {
	l := NewRequestLogger(false)
	long := strings.Repeat("secret ", 50)
	body := []byte(`{"model": "cortensor", "messages": [{"role": "user", "content": "` + long + `"}, {"role": "user", "content": "short"}]}`)

	out := l.redact(body)

	first := gjson.GetBytes(out, "messages.0.content").String()
	assert.True(t, strings.HasSuffix(first, "..."))
	assert.LessOrEqual(t, len(first), maxLoggedContentLen+3)
	assert.Equal(t, "short", gjson.GetBytes(out, "messages.1.content").String())
	assert.Equal(t, "cortensor", gjson.GetBytes(out, "model").String())
}

func TestRedactVerbosePassthrough(t *testing.T) {
	l := NewRequestLogger(true)
	body := []byte(`{"messages": [{"content": "` + strings.Repeat("x", 500) + `"}]}`)

	assert.Equal(t, body, l.redact(body))
}

func TestRedactInvalidJSON(t *testing.T) {
	l := NewRequestLogger(false)

	out := l.redact([]byte("not json at all"))
	assert.JSONEq(t, `{"invalid_json": true}`, string(out))
}

func TestRedactNonStringContent(t *testing.T) {
	l := NewRequestLogger(false)
	body := []byte(`{"messages": [{"content": [{"type": "text", "text": "part"}]}]}`)

	out := l.redact(body)
	assert.Equal(t, "part", gjson.GetBytes(out, "messages.0.content.0.text").String())
}
