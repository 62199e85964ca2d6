package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process token bucket limiter. Each key gets a
// bucket holding up to Requests tokens which refill continuously over
// Window. Suitable for single-instance deployments; use RedisLimiter when
// several instances share one limit.
type MemoryLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	requests int
	window   time.Duration

	cleanup *time.Ticker
	done    chan struct{}
}

type bucket struct {
	tokens   int
	refilled time.Time
}

// MemoryConfig configures a MemoryLimiter.
type MemoryConfig struct {
	// Requests allowed per Window.
	Requests int
	Window   time.Duration
	// CleanupInterval controls how often idle buckets are dropped.
	// Zero disables the cleanup goroutine.
	CleanupInterval time.Duration
}

// NewMemoryLimiter builds an in-process limiter.
func NewMemoryLimiter(cfg MemoryConfig) *MemoryLimiter {
	m := &MemoryLimiter{
		buckets:  make(map[string]*bucket),
		requests: cfg.Requests,
		window:   cfg.Window,
		done:     make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		m.cleanup = time.NewTicker(cfg.CleanupInterval)
		go m.cleanupLoop()
	}
	return m
}

// Allow consumes one token for key, creating the bucket on first sight.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (*Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{tokens: m.requests - 1, refilled: now}
		m.buckets[key] = b
		return m.decision(b, true), nil
	}

	if elapsed := now.Sub(b.refilled); elapsed > 0 {
		refill := int(float64(m.requests) * elapsed.Seconds() / m.window.Seconds())
		if refill > 0 {
			b.tokens += refill
			if b.tokens > m.requests {
				b.tokens = m.requests
			}
			b.refilled = now
		}
	}

	if b.tokens <= 0 {
		return m.decision(b, false), nil
	}
	b.tokens--
	return m.decision(b, true), nil
}

func (m *MemoryLimiter) decision(b *bucket, allowed bool) *Decision {
	return &Decision{
		Allowed:   allowed,
		Limit:     m.requests,
		Remaining: b.tokens,
		ResetAt:   b.refilled.Add(m.window),
	}
}

func (m *MemoryLimiter) cleanupLoop() {
	for {
		select {
		case <-m.cleanup.C:
			m.dropIdle()
		case <-m.done:
			return
		}
	}
}

// dropIdle removes buckets untouched for two full windows.
func (m *MemoryLimiter) dropIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-2 * m.window)
	for key, b := range m.buckets {
		if b.refilled.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (m *MemoryLimiter) Close() error {
	close(m.done)
	if m.cleanup != nil {
		m.cleanup.Stop()
	}
	return nil
}
