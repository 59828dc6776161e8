// Package gateway exposes the OpenAI-compatible HTTP surface and wires the
// transformation pipeline to the Cortensor client.
//
// FLOW:
//  1. Handler resolves per-call config from the synthetic model name
//  2. transform.TransformRequest builds the downstream completion request
//  3. cortensor.Client dispatches it
//  4. transform.TransformResponse reshapes the reply and the handler
//     writes it out
//
// Each request gets its own freshly parsed structures; the only
// process-wide mutable state is the provider registry, which handlers read
// but the pipeline never touches.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cortensor/openai-gateway/internal/config"
	"github.com/cortensor/openai-gateway/internal/cortensor"
	"github.com/cortensor/openai-gateway/internal/monitoring"
	"github.com/cortensor/openai-gateway/internal/registry"
	"github.com/cortensor/openai-gateway/internal/transform"
)

const (
	// HeaderRequestID carries the request correlation ID.
	HeaderRequestID = "X-Request-ID"

	// MaxRateLimitBuckets caps the rate limiter's per-IP state.
	MaxRateLimitBuckets = 10000

	// defaultRateLimit is requests per second per client IP.
	defaultRateLimit = 20

	// maxBodyBytes caps inbound request bodies (5MB).
	maxBodyBytes = 5 * 1024 * 1024
)

// Gateway is the HTTP server embedding the transformation pipeline.
type Gateway struct {
	config        *config.Config
	client        *cortensor.Client
	transformer   *transform.Transformer
	registry      *registry.Registry
	requestLogger *monitoring.RequestLogger
	rateLimiter   *rateLimiter
	searcher      transform.Searcher // default provider, may be nil
	server        *http.Server
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithSearchProvider installs the default web search provider used when a
// request names no provider handle of its own.
func WithSearchProvider(s transform.Searcher) Option {
	return func(g *Gateway) { g.searcher = s }
}

// WithClient overrides the Cortensor client (testing).
func WithClient(c *cortensor.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// New builds a Gateway from validated configuration.
func New(cfg *config.Config, opts ...Option) *Gateway {
	g := &Gateway{
		config:        cfg,
		registry:      registry.New(registry.DefaultTTL),
		requestLogger: monitoring.NewRequestLogger(false),
		rateLimiter:   newRateLimiter(defaultRateLimit),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		g.client = cortensor.NewClient(cortensor.ClientOptions{
			BaseURL:        cfg.Cortensor.BaseURL,
			APIKey:         cfg.Cortensor.APIKey,
			Timeout:        cfg.Cortensor.RequestTimeout,
			QuerySessionID: cfg.Cortensor.QuerySessionID,
		})
	}
	g.transformer = transform.NewTransformer(cfg, g.client)
	return g
}

// Registry exposes the provider registry so embedding code can register
// search callbacks.
func (g *Gateway) Registry() *registry.Registry { return g.registry }

// Handler returns the full middleware-wrapped HTTP handler.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", g.handleChatCompletions)
	mux.HandleFunc("/v1/models", g.handleModels)
	mux.HandleFunc("/health", g.handleHealth)

	var h http.Handler = mux
	h = g.security(h)
	h = g.loggingMiddleware(h)
	h = g.rateLimit(h)
	h = g.panicRecovery(h)
	return h
}

// Start runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (g *Gateway) Start(ctx context.Context) error {
	g.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", g.config.Server.Port),
		Handler:      g.Handler(),
		ReadTimeout:  g.config.Server.ReadTimeout,
		WriteTimeout: g.config.Server.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Int("port", g.config.Server.Port).Msg("gateway listening")
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	defer g.registry.Close()
	return g.server.Shutdown(shutdownCtx)
}
