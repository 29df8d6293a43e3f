package propsource

import (
	"context"
	"sync"
)

type requestIDKey struct{}

// ContextWithRequestID tags ctx with the request whose cache should be used.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// RequestCache memoizes resolved inputs for the lifetime of a request.
// Entries exist only between Begin and End for the same id; lookups for
// requests that were never begun always miss.
type RequestCache struct {
	mu       sync.Mutex
	requests map[string]map[string]map[string]any
}

// NewRequestCache creates an empty cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{requests: make(map[string]map[string]map[string]any)}
}

// Begin opens the cache for request id.
func (c *RequestCache) Begin(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.requests[id]; !ok {
		c.requests[id] = make(map[string]map[string]any)
	}
}

// End discards everything cached for request id.
func (c *RequestCache) End(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.requests, id)
}

// Get returns the cached value for key in the request carried by ctx.
func (c *RequestCache) Get(ctx context.Context, key string) (map[string]any, bool) {
	id, ok := RequestIDFromContext(ctx)
	if !ok {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.requests[id][key]
	return v, ok
}

// Put stores v for key in the request carried by ctx. It is a no-op when
// the request was not begun.
func (c *RequestCache) Put(ctx context.Context, key string, v map[string]any) {
	id, ok := RequestIDFromContext(ctx)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if entries, ok := c.requests[id]; ok {
		entries[key] = v
	}
}

// Len returns the number of open requests.
func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}
