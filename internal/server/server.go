package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"flooded-island-server/internal/database"
)

const tracerName = "flooded-island-server/internal/server"

type Server struct {
	cfg         Config
	rooms       *RoomStore
	connections *ConnectionRegistry
	limiter     *RateLimiter
	health      *ConnectionHealth
	cleanup     *CleanupScheduler
	archive     database.Service
	tracer      trace.Tracer
	now         func() time.Time
	background  sync.WaitGroup
}

// NewServer wires the room server. archive may be nil, which disables the
// match archive.
func NewServer(cfg Config, archive database.Service) *Server {
	rooms := NewRoomStore()
	connections := NewConnectionRegistry(cfg.SendBuffer, cfg.WriteTimeout)
	limiter := NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	health := NewConnectionHealth()
	cleanup := NewCleanupScheduler(rooms, connections, limiter, cfg.CleanupInterval, cfg.RoomRetention)
	cleanup.TrackIdle(health, cfg.IdleTimeout)

	return &Server{
		cfg:         cfg,
		rooms:       rooms,
		connections: connections,
		limiter:     limiter,
		health:      health,
		cleanup:     cleanup,
		archive:     archive,
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
	}
}

// HTTPServer returns the listener configuration for this server.
func (s *Server) HTTPServer() *http.Server {
	// No ReadTimeout/WriteTimeout: their deadlines would survive the
	// websocket hijack and cut long-lived games off.
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// RunCleanup blocks running the cleanup scheduler until ctx is cancelled.
func (s *Server) RunCleanup(ctx context.Context) {
	s.cleanup.Run(ctx)
}

// Shutdown closes every socket, waits for pending archive writes and closes
// the archive.
func (s *Server) Shutdown(ctx context.Context) error {
	s.connections.CloseAll("server shutting down")

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("waiting for archive writes: %w", ctx.Err())
	}

	if s.archive != nil {
		s.archive.Close()
	}
	log.Printf("Room server stopped")
	return err
}
