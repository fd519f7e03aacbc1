package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"

	"flooded-island-server/internal/game"
)

const (
	defaultMatchLimit = 20
	maxMatchLimit     = 100
	maxFrameBytes     = 16 << 10
	roomCreateRetries = 10
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.rootHandler)

	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.HandleFunc("POST /api/rooms", s.createRoomHandler)
	mux.HandleFunc("GET /api/matches", s.matchesHandler)

	mux.HandleFunc("GET /ws/{roomID}", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case s.cfg.allowsOrigin("*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.cfg.allowsOrigin(origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError splits a "CODE: message" error into an HTTPError body.
func writeError(w http.ResponseWriter, status int, err error) {
	code, msg, found := strings.Cut(err.Error(), ": ")
	if !found {
		code, msg = "", err.Error()
	}
	writeJSON(w, status, HTTPError{Message: msg, Code: code})
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Flooded Island API is running"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		Rooms:       s.rooms.Len(),
		Connections: s.connections.Count(),
		Database:    map[string]string{"status": "disabled"},
	}
	if s.archive != nil {
		resp.Database = s.archive.Health(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createRoomHandler(w http.ResponseWriter, r *http.Request) {
	for attempt := 0; attempt < roomCreateRetries; attempt++ {
		room, err := s.rooms.Create(GenerateRoomCode(s.rooms.Exists))
		if err != nil {
			// Lost a race for the code; pick another.
			continue
		}
		log.Printf("Created room %s", room.ID)
		writeJSON(w, http.StatusCreated, CreateRoomResponse{
			RoomID:    room.ID,
			Status:    room.Status,
			CreatedAt: room.CreatedAt,
		})
		return
	}
	writeError(w, http.StatusServiceUnavailable, errors.New("ROOM_CODE_EXHAUSTED: Could not allocate a room code"))
}

func (s *Server) matchesHandler(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("ARCHIVE_DISABLED: Match archive is not configured"))
		return
	}

	limit := defaultMatchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("INVALID_LIMIT: limit must be a positive integer"))
			return
		}
		limit = min(n, maxMatchLimit)
	}

	matches, err := s.archive.RecentMatches(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to load matches: %v", err)
		writeError(w, http.StatusInternalServerError, game.Internal)
		return
	}
	writeJSON(w, http.StatusOK, MatchesResponse{Matches: matches})
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	roomID := NormalizeRoomCode(r.PathValue("roomID"))
	if err := ValidateRoomCode(roomID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.originPatterns(),
	})
	if err != nil {
		log.Printf("Failed to accept websocket for room %s: %v", roomID, err)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")
	socket.SetReadLimit(maxFrameBytes)

	// Register under the room lock so the initial snapshot is ordered
	// before any update broadcast to this connection.
	s.rooms.GetOrCreate(roomID)
	var client *Client
	err = s.rooms.Inspect(roomID, func(room *game.Room) {
		client = s.connections.Register(roomID, socket)
		if err := s.connections.SendTo(client.ID, newRoomState(room)); err != nil {
			log.Printf("Failed to send room state to conn %s: %v", client.ID, err)
		}
	})
	if err != nil {
		log.Printf("Room %s vanished before conn could join: %v", roomID, err)
		socket.Close(websocket.StatusTryAgainLater, "room unavailable")
		return
	}
	log.Printf("New connection %s in room %s", client.ID, roomID)
	defer s.handleDisconnect(client)

	ctx := r.Context()
	s.health.UpdateActivity(client.ID)
	go s.heartbeat(ctx, socket, client)

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.Printf("Connection %s read error: %v", client.ID, err)
			}
			return
		}

		s.health.UpdateActivity(client.ID)

		if msgType != websocket.MessageText {
			s.sendError(client, game.Structural("INVALID_MESSAGE", "Only text frames are supported"))
			continue
		}

		if !s.limiter.Allow(client.ID) {
			s.sendError(client, game.Structural("RATE_LIMIT_EXCEEDED", "Too many messages, slow down"))
			continue
		}

		s.dispatch(ctx, client, data)
	}
}

// heartbeat pings the peer on every interval. A pong counts as activity, so
// only sockets that stop answering are reaped by the cleanup sweep.
func (s *Server) heartbeat(ctx context.Context, socket *websocket.Conn, c *Client) {
	ticker := time.NewTicker(s.cfg.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, s.cfg.Heartbeat)
			err := socket.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Heartbeat to conn %s failed: %v", c.ID, err)
				}
				return
			}
			s.health.UpdateActivity(c.ID)
		}
	}
}
