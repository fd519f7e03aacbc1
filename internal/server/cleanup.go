package server

import (
	"context"
	"log"
	"time"

	"github.com/coder/websocket"

	"flooded-island-server/internal/game"
)

// CleanupScheduler deletes rooms that ended longer ago than the retention
// period. Rooms that are merely empty are left alone. When idle tracking is
// on it also closes connections that have gone quiet.
type CleanupScheduler struct {
	rooms       *RoomStore
	connections *ConnectionRegistry
	limiter     *RateLimiter
	health      *ConnectionHealth
	interval    time.Duration
	retention   time.Duration
	idleTimeout time.Duration
}

func NewCleanupScheduler(rooms *RoomStore, connections *ConnectionRegistry, limiter *RateLimiter, interval, retention time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		rooms:       rooms,
		connections: connections,
		limiter:     limiter,
		interval:    interval,
		retention:   retention,
	}
}

// TrackIdle makes each sweep close connections silent for longer than timeout.
func (cs *CleanupScheduler) TrackIdle(health *ConnectionHealth, timeout time.Duration) {
	cs.health = health
	cs.idleTimeout = timeout
}

// Sweep runs one cleanup pass and returns how many rooms it deleted.
func (cs *CleanupScheduler) Sweep(now time.Time) int {
	cutoff := now.Add(-cs.retention)

	deleted := 0
	for _, roomID := range cs.rooms.ListEndedBefore(cutoff) {
		closed := 0
		if !cs.rooms.Delete(roomID, func(*game.Room) {
			closed = cs.connections.CloseRoom(roomID, "room expired")
		}) {
			continue
		}
		deleted++
		if closed > 0 {
			log.Printf("Closed %d connections in expired room %s", closed, roomID)
		}
	}

	if cs.health != nil {
		if reaped := cs.reapIdle(now); reaped > 0 {
			log.Printf("Closed %d idle connections", reaped)
		}
	}
	if cs.limiter != nil {
		cs.limiter.Cleanup()
	}
	return deleted
}

func (cs *CleanupScheduler) reapIdle(now time.Time) int {
	reaped := 0
	for _, connID := range cs.health.InactiveSince(now.Add(-cs.idleTimeout)) {
		cs.health.RemoveConnection(connID)
		if cs.connections.CloseConnection(connID, websocket.StatusPolicyViolation, "idle timeout") {
			reaped++
		}
	}
	return reaped
}

// Run sweeps on every tick until ctx is cancelled.
func (cs *CleanupScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if deleted := cs.Sweep(now); deleted > 0 {
				log.Printf("Cleanup task: deleted %d expired rooms", deleted)
			}
		}
	}
}
