// Package registry carries per-call configuration through the single-string
// model-name channel OpenAI clients offer.
//
// DESIGN: Serializable sampling overrides ride inside the model name itself
// as base64 JSON (codec.go). Live search provider callbacks cannot be
// serialized, so they are registered here once and referenced by handle; the
// decoded model spec names the handle and the gateway resolves it at request
// time. The transformation pipeline itself only ever reads resolved
// configuration objects — it never touches this registry.
//
// Entries expire after a TTL so abandoned handles do not accumulate. For
// multi-instance deployments the handles are process-local by construction;
// providers must be registered on every instance.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cortensor/openai-gateway/internal/transform"
)

// DefaultTTL for registered provider handles.
const DefaultTTL = 24 * time.Hour

// Registry maps opaque handles to live search providers. Safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	stopChan chan struct{}
	stopped  bool
}

type entry struct {
	provider  transform.Searcher
	expiresAt time.Time
}

// New creates a Registry with the given handle TTL (0 means DefaultTTL) and
// starts its cleanup goroutine.
func New(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Register stores a provider and returns its opaque handle.
func (r *Registry) Register(provider transform.Searcher) string {
	handle := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[handle] = entry{provider: provider, expiresAt: time.Now().Add(r.ttl)}
	return handle
}

// Resolve returns the provider for a handle. Resolving refreshes the
// handle's TTL.
func (r *Registry) Resolve(handle string) (transform.Searcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[handle]
	if !ok || time.Now().After(e.expiresAt) {
		delete(r.entries, handle)
		return nil, false
	}
	e.expiresAt = time.Now().Add(r.ttl)
	r.entries[handle] = e
	return e.provider, true
}

// Unregister removes a handle.
func (r *Registry) Unregister(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, handle)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close stops the cleanup goroutine.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.stopChan)
	}
	return nil
}

// cleanup periodically removes expired handles.
func (r *Registry) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			r.mu.Lock()
			for handle, e := range r.entries {
				if now.After(e.expiresAt) {
					delete(r.entries, handle)
				}
			}
			r.mu.Unlock()
		case <-r.stopChan:
			return
		}
	}
}
