// Package ratelimiter provides a sliding-window counter used to bound
// administrative API requests per client IP.
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Limiter answers whether one more attempt is allowed for a key right now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config bounds attempts per key: at most Limit attempts within Window.
type Config struct {
	Limit  int
	Window time.Duration
}

// Memory is an in-process sliding-window limiter for single-node deployments
// and tests.
type Memory struct {
	config Config
	now    func() time.Time

	mu       sync.Mutex
	attempts map[string][]time.Time
}

type MemoryOption func(*Memory)

// WithClock overrides the window clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(config Config, opts ...MemoryOption) *Memory {
	limiter := &Memory{
		config:   config,
		now:      time.Now,
		attempts: make(map[string][]time.Time),
	}

	for _, opt := range opts {
		opt(limiter)
	}

	return limiter
}

// Allow records an attempt and reports whether it fits inside the window.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-m.config.Window)

	kept := m.attempts[key][:0]

	for _, at := range m.attempts[key] {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= m.config.Limit {
		m.attempts[key] = kept

		return false, nil
	}

	m.attempts[key] = append(kept, now)

	return true, nil
}
