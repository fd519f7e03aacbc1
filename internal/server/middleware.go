package server

import (
	"sync"
	"time"
)

// RateLimiter is a per-connection sliding window limiter for inbound frames.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	requests    map[string][]time.Time // connectionID -> recent frame times
	now         func() time.Time
	mu          sync.Mutex
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow records a frame from connectionID and reports whether it is within
// the limit. Rejected frames are not recorded.
func (r *RateLimiter) Allow(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	recent := r.prune(r.requests[connectionID], now.Add(-r.window))

	if len(recent) >= r.maxRequests {
		r.requests[connectionID] = recent
		return false
	}
	r.requests[connectionID] = append(recent, now)
	return true
}

func (r *RateLimiter) prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// Cleanup drops connections with no frames inside the current window.
func (r *RateLimiter) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	removed := 0
	for connID, timestamps := range r.requests {
		kept := r.prune(timestamps, cutoff)
		if len(kept) == 0 {
			delete(r.requests, connID)
			removed++
			continue
		}
		r.requests[connID] = kept
	}
	return removed
}

func (r *RateLimiter) RemoveConnection(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, connectionID)
}

func (r *RateLimiter) tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// ConnectionHealth records when each connection last showed it was alive,
// either by sending a frame or by answering a heartbeat ping. Sockets that
// go quiet without closing still hold their role until they are reaped.
type ConnectionHealth struct {
	lastActivity map[string]time.Time // connectionID -> last sign of life
	now          func() time.Time
	mu           sync.RWMutex
}

func NewConnectionHealth() *ConnectionHealth {
	return &ConnectionHealth{
		lastActivity: make(map[string]time.Time),
		now:          time.Now,
	}
}

func (h *ConnectionHealth) UpdateActivity(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity[connectionID] = h.now()
}

// InactiveSince returns the connections with no activity after cutoff.
func (h *ConnectionHealth) InactiveSince(cutoff time.Time) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var inactive []string
	for connID, last := range h.lastActivity {
		if !last.After(cutoff) {
			inactive = append(inactive, connID)
		}
	}
	return inactive
}

func (h *ConnectionHealth) RemoveConnection(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastActivity, connectionID)
}

func (h *ConnectionHealth) tracked() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.lastActivity)
}
