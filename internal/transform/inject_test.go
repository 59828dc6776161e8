package transform

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleResults(n int) []WebSearchResult {
	results := make([]WebSearchResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, WebSearchResult{
			Title:   fmt.Sprintf("Result %d", i+1),
			URL:     fmt.Sprintf("https://example.com/%d", i+1),
			Snippet: strings.Repeat("content ", 20),
		})
	}
	return results
}

func countIncluded(prompt string, total int) int {
	included := 0
	for i := 1; i <= total; i++ {
		if strings.Contains(prompt, fmt.Sprintf("[%d] Result %d", i, i)) {
			included++
		}
	}
	return included
}

// TestEstimateTokens verifies the ceil(chars/4) heuristic.
func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}

// TestInjectResultsEmptyPlaceholder verifies an empty result set renders an
// explicit placeholder, never a silently omitted section.
func TestInjectResultsEmptyPlaceholder(t *testing.T) {
	prompt := InjectResults("base prompt", "some query", nil, DefaultBudget())

	assert.Contains(t, prompt, "=== WEB SEARCH RESULTS ===")
	assert.Contains(t, prompt, "No search results were found")
	assert.Contains(t, prompt, `"some query"`)
	assert.True(t, strings.HasPrefix(prompt, "base prompt"))
}

// TestInjectResultsRendersBlocks verifies the detailed block presentation.
func TestInjectResultsRendersBlocks(t *testing.T) {
	results := []WebSearchResult{
		{Title: "Go spec", URL: "https://go.dev/ref/spec", Snippet: "The Go Programming Language Specification", PublishedDate: "2024-01-02"},
	}
	prompt := InjectResults("base", "go spec", results, DefaultBudget())

	assert.Contains(t, prompt, "[1] Go spec")
	assert.Contains(t, prompt, "URL: https://go.dev/ref/spec")
	assert.Contains(t, prompt, "Published: 2024-01-02")
	assert.Contains(t, prompt, "=== INSTRUCTIONS ===")
}

// TestInjectResultsBudgetDropsTail verifies greedy inclusion in provider
// order within the budget.
func TestInjectResultsBudgetDropsTail(t *testing.T) {
	results := sampleResults(10)
	// Each block is ~50 estimated tokens; a tight budget keeps only a few.
	tight := Budget{Ceiling: 200, HeaderReserve: 50}
	prompt := InjectResults("base", "q", results, tight)

	included := countIncluded(prompt, 10)
	assert.Greater(t, included, 0)
	assert.Less(t, included, 10)

	// Inclusion is prefix-shaped: if [n] is present, so is [n-1].
	for i := 2; i <= included; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("[%d] Result %d", i-1, i-1))
	}
}

// TestInjectResultsBaseOverCeiling verifies an oversized base prompt
// includes zero results instead of erroring.
func TestInjectResultsBaseOverCeiling(t *testing.T) {
	base := strings.Repeat("x", 20000) // ~5000 estimated tokens > 3000 ceiling
	prompt := InjectResults(base, "q", sampleResults(3), DefaultBudget())

	assert.Equal(t, 0, countIncluded(prompt, 3))
	assert.Contains(t, prompt, "No search results were found")
}

// TestInjectResultsBudgetMonotonic verifies raising the ceiling never
// reduces the number of included results.
func TestInjectResultsBudgetMonotonic(t *testing.T) {
	results := sampleResults(10)
	prev := -1
	for _, ceiling := range []int{100, 200, 400, 800, 1600, 3200} {
		prompt := InjectResults("base", "q", results, Budget{Ceiling: ceiling, HeaderReserve: 50})
		included := countIncluded(prompt, 10)
		assert.GreaterOrEqual(t, included, prev, "ceiling %d", ceiling)
		prev = included
	}
}

// TestFormatCitations verifies the numbered markdown list.
func TestFormatCitations(t *testing.T) {
	results := []WebSearchResult{
		{Title: "First", URL: "https://a.example"},
		{Title: "Second", URL: "https://b.example"},
	}
	citations := FormatCitations(results)

	assert.Equal(t, "[1] [First](https://a.example)\n[2] [Second](https://b.example)", citations)
	assert.Empty(t, FormatCitations(nil))
}
