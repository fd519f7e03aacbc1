package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRateLimiter_Allow tests basic rate limiting functionality
func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(10, time.Second)
	connID := "test-conn-1"

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(connID), "request %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow(connID), "11th request should be denied")
}

// TestRateLimiter_WindowReset tests that the window slides with the clock
func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(2, 100*time.Millisecond)
	limiter.now = func() time.Time { return now }
	connID := "test-conn-2"

	assert.True(t, limiter.Allow(connID))
	assert.True(t, limiter.Allow(connID))
	assert.False(t, limiter.Allow(connID))

	now = now.Add(150 * time.Millisecond)
	assert.True(t, limiter.Allow(connID), "request after window reset should be allowed")
}

func TestRateLimiter_MultipleConnections(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)

	assert.True(t, limiter.Allow("conn-1"))
	assert.False(t, limiter.Allow("conn-1"))
	assert.True(t, limiter.Allow("conn-2"), "one connection must not exhaust another's budget")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(5, time.Second)
	limiter.now = func() time.Time { return now }

	limiter.Allow("old")
	now = now.Add(2 * time.Second)
	limiter.Allow("fresh")

	assert.Equal(t, 1, limiter.Cleanup())
	assert.Equal(t, 1, limiter.tracked())
}

func TestRateLimiter_RemoveConnection(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	limiter.Allow("conn-1")
	assert.False(t, limiter.Allow("conn-1"))

	limiter.RemoveConnection("conn-1")
	assert.True(t, limiter.Allow("conn-1"))
}

func TestConnectionHealth_InactiveSince(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()
	health := NewConnectionHealth()
	health.now = func() time.Time { return now }

	health.UpdateActivity("quiet")
	now = now.Add(time.Minute)
	health.UpdateActivity("chatty")

	assert.Equal([]string{"quiet"}, health.InactiveSince(now.Add(-30*time.Second)))
	assert.Empty(health.InactiveSince(now.Add(-2*time.Minute)))

	health.UpdateActivity("quiet")
	assert.Empty(health.InactiveSince(now.Add(-time.Second)))

	health.RemoveConnection("quiet")
	health.RemoveConnection("chatty")
	assert.Equal(0, health.tracked())
}
