// Error taxonomy for the transformation pipeline.
//
// DESIGN: Recoverability is an explicit property, not an exception-subclass
// convention. The request transformer checks error kinds with errors.As:
//   - *TransformError: fatal, no partial result, maps to a 400-class failure
//   - *WebSearchError: recoverable, the pipeline falls back to the plain
//     prompt path — UNLESS the wrapped cause is a configuration error, which
//     re-surfaces as fatal
//
// Configuration errors live in internal/config; downstream HTTP errors live
// in internal/cortensor.
package transform

import (
	"errors"
	"fmt"

	"github.com/cortensor/openai-gateway/internal/config"
)

// TransformError indicates the mandatory parse/build path failed.
// Always fatal to the current request.
type TransformError struct {
	Op    string // pipeline stage, e.g. "parse", "build"
	Cause error
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transform %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("transform %s failed", e.Op)
}

func (e *TransformError) Unwrap() error { return e.Cause }

// WebSearchError wraps a failure inside the optional search-augmentation
// branch. Callers must treat it as non-fatal and fall back to the plain
// prompt, unless Fatal() reports the cause is a configuration error.
type WebSearchError struct {
	Cause error
}

func (e *WebSearchError) Error() string {
	return fmt.Sprintf("web search failed: %v", e.Cause)
}

func (e *WebSearchError) Unwrap() error { return e.Cause }

// Fatal reports whether the wrapped cause must abort the request anyway.
func (e *WebSearchError) Fatal() bool {
	return config.IsConfigError(e.Cause)
}

// IsWebSearchError reports whether err is (or wraps) a *WebSearchError.
func IsWebSearchError(err error) bool {
	var wse *WebSearchError
	return errors.As(err, &wse)
}
