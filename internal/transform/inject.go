// Search result formatting and token-budgeted prompt injection.
//
// DESIGN: Token counts are estimated as ceil(chars/4). This is a documented
// approximation, not a tokenizer — the budget thresholds were tuned against
// this heuristic and an exact count would change inclusion decisions.
package transform

import (
	"fmt"
	"strings"
)

// Budget default constants. Both are configurable per deployment.
const (
	DefaultTokenBudget   = 3000
	DefaultHeaderReserve = 100
)

const (
	searchSectionHeader = "=== WEB SEARCH RESULTS ==="
	searchInstructions  = `=== INSTRUCTIONS ===
Use the web search results above as source material. Synthesize an original answer in your own words instead of copying the results. Always produce a substantive response, even when the results are unhelpful or empty.`

	noResultsPlaceholder = "No search results were found for this query."
)

// Budget bounds how many estimated tokens of search results may be injected.
type Budget struct {
	Ceiling       int // total estimated-token ceiling for the whole prompt
	HeaderReserve int // reserved for the search section headers
}

// DefaultBudget returns the standard injection budget.
func DefaultBudget() Budget {
	return Budget{Ceiling: DefaultTokenBudget, HeaderReserve: DefaultHeaderReserve}
}

// EstimateTokens approximates the token count of s as ceil(len/4).
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// InjectResults appends a delimited web-search section to the base prompt.
//
// Results are included greedily in provider order while their cumulative
// estimated tokens fit the remaining budget (ceiling minus base prompt minus
// header reserve); the remainder is dropped. If the base prompt alone
// exceeds the ceiling, zero results are included. An empty or fully dropped
// result set renders an explicit placeholder — the section is never silently
// omitted.
func InjectResults(base, query string, results []WebSearchResult, budget Budget) string {
	if budget.Ceiling <= 0 {
		budget.Ceiling = DefaultTokenBudget
	}
	if budget.HeaderReserve < 0 {
		budget.HeaderReserve = DefaultHeaderReserve
	}

	remaining := budget.Ceiling - EstimateTokens(base) - budget.HeaderReserve

	var blocks []string
	used := 0
	for i, r := range results {
		block := formatResultBlock(i+1, r)
		cost := EstimateTokens(block)
		if used+cost > remaining {
			break
		}
		blocks = append(blocks, block)
		used += cost
	}

	rendered := noResultsPlaceholder
	if len(blocks) > 0 {
		rendered = strings.Join(blocks, "\n\n")
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString(searchSectionHeader)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Search query: %q", query))
	b.WriteString("\n\n")
	b.WriteString(rendered)
	b.WriteString("\n\n")
	b.WriteString(searchInstructions)
	return b.String()
}

// formatResultBlock renders one result as a detailed numbered block.
// The detailed presentation is used for the prompt side; the response side
// uses the short citation list (FormatCitations).
func formatResultBlock(n int, r WebSearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s\n", n, r.Title)
	fmt.Fprintf(&b, "    URL: %s\n", r.URL)
	if r.PublishedDate != "" {
		fmt.Fprintf(&b, "    Published: %s\n", r.PublishedDate)
	}
	b.WriteString("    " + r.Snippet)
	return b.String()
}

// FormatCitations renders results as a short numbered markdown citation
// list, one "[n] [title](url)" per line.
func FormatCitations(results []WebSearchResult) string {
	if len(results) == 0 {
		return ""
	}
	lines := make([]string, 0, len(results))
	for i, r := range results {
		lines = append(lines, fmt.Sprintf("[%d] [%s](%s)", i+1, r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}
