// Package ratelimit limits mutating requests per client IP with a fixed
// one-minute window.
package ratelimit

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const window = time.Minute

// Config holds rate limiter configuration.
type Config struct {
	RequestsPerMinute int
	// CleanupInterval is how often idle clients are forgotten.
	CleanupInterval time.Duration
	// StaleAfter is how long a client may stay idle before it is forgotten.
	StaleAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		StaleAfter:        10 * time.Minute,
	}
}

type bucket struct {
	opened time.Time
	seen   time.Time
	used   int
}

// Limiter counts requests per client in fixed windows. Rejections are
// counted for /metrics.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	rejected atomic.Int64
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter starts a limiter and its cleanup goroutine. Call Stop to
// release it. Zero fields take DefaultConfig values.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	rl := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Allow records one request from ip and reports whether it fits the
// client's current window. A window opens on the first request after the
// previous one expired; steady traffic does not extend it.
func (rl *Limiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b := rl.buckets[ip]
	if b == nil || now.Sub(b.opened) >= window {
		rl.buckets[ip] = &bucket{opened: now, seen: now, used: 1}
		return true
	}
	b.used++
	b.seen = now
	if b.used > rl.cfg.RequestsPerMinute {
		rl.rejected.Add(1)
		return false
	}
	return true
}

func (rl *Limiter) janitor() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stop:
			return
		}
	}
}

func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.cfg.StaleAfter)
	removed := 0
	for ip, b := range rl.buckets {
		if b.seen.Before(cutoff) {
			delete(rl.buckets, ip)
			removed++
		}
	}
	return removed
}

// ActiveClients is the number of clients with a tracked window.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   rl.rejected.Load(),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// IsMutating reports whether the request changes state.
func IsMutating(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Middleware rejects requests over the limit. Only requests for which
// applies returns true are counted; a nil applies counts everything.
// onLimit writes the rejection; nil falls back to a plain 429.
func (rl *Limiter) Middleware(clientIP func(*http.Request) string, applies func(*http.Request) bool, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (applies == nil || applies(r)) && !rl.Allow(clientIP(r)) {
				if onLimit == nil {
					w.Header().Set("Retry-After", "60")
					http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
					return
				}
				onLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
