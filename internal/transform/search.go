// Web search invocation.
package transform

import (
	"context"
	"fmt"
)

// InvokeSearch calls the configured search provider and normalizes failures.
//
// Any provider error (and a nil provider) is wrapped in *WebSearchError so
// the request transformer can treat it as non-fatal and fall back to the
// plain prompt path. Result order is preserved as returned by the provider.
func InvokeSearch(ctx context.Context, provider Searcher, query string, maxResults int) ([]WebSearchResult, error) {
	if provider == nil {
		return nil, &WebSearchError{Cause: fmt.Errorf("no search provider configured")}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	results, err := provider.Search(ctx, query, maxResults)
	if err != nil {
		return nil, &WebSearchError{Cause: err}
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
