package graph

import (
	"context"
	"sync"
)

// CachingProber remembers the duration of every path it has probed.
// Failures are not cached.
type CachingProber struct {
	next DurationProber

	mu        sync.Mutex
	durations map[string]float64
}

// NewCachingProber wraps next
func NewCachingProber(next DurationProber) *CachingProber {
	return &CachingProber{
		next:      next,
		durations: make(map[string]float64),
	}
}

// ProbeDuration implements DurationProber
func (c *CachingProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	c.mu.Lock()
	d, ok := c.durations[path]
	c.mu.Unlock()
	if ok {
		return d, nil
	}

	d, err := c.next.ProbeDuration(ctx, path)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.durations[path] = d
	c.mu.Unlock()
	return d, nil
}
