// Search directive parsing.
//
// Users opt in or out of web search with inline markers in their last
// message: [search] / [no-search], or the emphasized [**search**] /
// [**no-search**] spelling. Markers are case-insensitive and always
// stripped before the message is sent downstream, whatever the outcome.
package transform

import (
	"regexp"
	"strings"

	"github.com/cortensor/openai-gateway/internal/oai"
)

var (
	searchMarkerRe   = regexp.MustCompile(`(?i)\[(?:\*\*)?search(?:\*\*)?\]`)
	noSearchMarkerRe = regexp.MustCompile(`(?i)\[(?:\*\*)?no-search(?:\*\*)?\]`)
)

// ParseDirectives scans the last message for search markers and decides
// whether a web search must run.
//
// Decision table (mode takes precedence over markers):
//
//	force   → always search
//	disable → never search
//	prompt  → search iff [search] present AND [no-search] absent
//
// Identity passthrough (no search, messages unchanged) when cfg is nil, the
// message list is empty, or the last message has no extractable content.
// The input slice is never mutated; Cleaned is a fresh slice whose last
// message carries the stripped content.
func ParseDirectives(messages []oai.ChatMessage, cfg *WebSearchConfig) SearchDirectives {
	if cfg == nil || len(messages) == 0 {
		return SearchDirectives{ShouldSearch: false, Cleaned: messages}
	}

	last := messages[len(messages)-1]
	content := oai.ExtractContent(last)
	if content == "" {
		return SearchDirectives{ShouldSearch: false, Cleaned: messages}
	}

	hasSearch := searchMarkerRe.MatchString(content)
	hasNoSearch := noSearchMarkerRe.MatchString(content)

	cleaned := StripMarkers(content)

	var shouldSearch bool
	switch cfg.Mode {
	case SearchModeForce:
		shouldSearch = true
	case SearchModeDisable:
		shouldSearch = false
	default: // prompt: negative marker always overrides positive
		shouldSearch = hasSearch && !hasNoSearch
	}

	out := make([]oai.ChatMessage, len(messages))
	copy(out, messages)
	lastCopy := last
	lastCopy.Content = cleaned
	out[len(out)-1] = lastCopy

	return SearchDirectives{ShouldSearch: shouldSearch, Cleaned: out}
}

// StripMarkers removes every recognized search marker from s and trims the
// surrounding whitespace. Adjacent non-marker text is preserved.
func StripMarkers(s string) string {
	s = searchMarkerRe.ReplaceAllString(s, "")
	s = noSearchMarkerRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
