// HTTP handlers for the OpenAI-compatible endpoints.
package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cortensor/openai-gateway/internal/config"
	"github.com/cortensor/openai-gateway/internal/cortensor"
	"github.com/cortensor/openai-gateway/internal/monitoring"
	"github.com/cortensor/openai-gateway/internal/oai"
	"github.com/cortensor/openai-gateway/internal/registry"
	"github.com/cortensor/openai-gateway/internal/transform"
)

// handleChatCompletions serves POST /v1/chat/completions.
func (g *Gateway) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		g.writeError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	requestID := monitoring.RequestIDFromContext(r.Context())
	g.requestLogger.LogRequest(requestID, body)

	opts, err := g.resolveOptions(body)
	if err != nil {
		g.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := g.transformer.TransformRequest(r.Context(), body, opts)
	if err != nil {
		g.writeTransformError(w, err)
		return
	}

	respBody, _, err := g.client.Complete(r.Context(), result.Request)
	if err != nil {
		var apiErr *cortensor.APIError
		if errors.As(err, &apiErr) {
			log.Warn().Int("status", apiErr.StatusCode).Msg("downstream completion failed")
			g.writeError(w, apiErr.Error(), apiErr.StatusCode)
			return
		}
		log.Error().Err(err).Msg("downstream completion unreachable")
		g.writeError(w, "upstream completion call failed", http.StatusBadGateway)
		return
	}

	resp, httpStatus := transform.TransformResponse(respBody, result.SearchResults)
	g.requestLogger.LogResponse(requestID, httpStatus, respBody, time.Since(start))
	g.writeJSON(w, httpStatus, resp)
}

// resolveOptions decodes the synthetic model name and resolves any provider
// handle against the registry. A dangling handle is a client error.
func (g *Gateway) resolveOptions(body []byte) (*transform.RequestOptions, error) {
	var probe struct {
		Model string `json:"model"`
	}
	// Parse errors are left for the transformer, which reports them as
	// proper transform failures.
	_ = json.Unmarshal(body, &probe)

	spec, err := registry.DecodeModelName(probe.Model)
	if err != nil {
		return nil, err
	}

	provider := g.searcher
	if spec != nil && spec.ProviderRef != "" {
		resolved, ok := g.registry.Resolve(spec.ProviderRef)
		if !ok {
			return nil, &config.ConfigError{Message: "unknown search provider handle: " + spec.ProviderRef}
		}
		provider = resolved
	}

	var opts *transform.RequestOptions
	if spec != nil {
		opts = &spec.RequestOptions
	}
	if provider != nil {
		if opts == nil {
			opts = &transform.RequestOptions{}
		}
		opts.WebSearch = &transform.WebSearchConfig{Provider: provider}
	}
	return opts, nil
}

// writeTransformError maps pipeline errors onto HTTP statuses.
func (g *Gateway) writeTransformError(w http.ResponseWriter, err error) {
	var te *transform.TransformError
	switch {
	case errors.As(err, &te):
		g.writeError(w, te.Error(), http.StatusBadRequest)
	case config.IsConfigError(err):
		g.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("request transformation failed")
		g.writeError(w, "internal error", http.StatusInternalServerError)
	}
}

// handleModels serves GET /v1/models with the bare model entry.
func (g *Gateway) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g.writeJSON(w, http.StatusOK, oai.ModelList{
		Object: "list",
		Data: []oai.Model{{
			ID:      registry.BareModel,
			Object:  "model",
			Created: time.Now().Unix(),
			OwnedBy: "cortensor",
		}},
	})
}

// handleHealth serves GET /health.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as a JSON response.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

// writeError writes an OpenAI-style error envelope.
func (g *Gateway) writeError(w http.ResponseWriter, message string, status int) {
	errType := "api_error"
	if status >= 400 && status < 500 {
		errType = "invalid_request_error"
	}
	g.writeJSON(w, status, oai.ErrorResponse{
		Error: oai.ErrorDetail{Message: message, Type: errType},
	})
}
