package tools

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CachedTool remembers successful results per normalized query for ttl.
// Errors and missing-credential notices are never cached.
type CachedTool struct {
	SearchTool
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedResult
}

type cachedResult struct {
	text      string
	expiresAt time.Time
}

func WithCache(t SearchTool, ttl time.Duration) *CachedTool {
	return &CachedTool{SearchTool: t, ttl: ttl, now: time.Now, entries: make(map[string]cachedResult)}
}

func (c *CachedTool) Run(ctx context.Context, query string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))

	c.mu.RLock()
	hit, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(hit.expiresAt) {
		return hit.text, nil
	}

	text, err := c.SearchTool.Run(ctx, query)
	if err != nil {
		return "", err
	}
	if isUnavailable(c.Name(), text) {
		return text, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedResult{text: text, expiresAt: c.now().Add(c.ttl)}
	// Expired entries are dropped on write.
	for k, e := range c.entries {
		if !c.now().Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	return text, nil
}
