package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"flooded-island-server/internal/game"
)

// Socket is the part of *websocket.Conn the registry writes to.
type Socket interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Client is one live connection. Outbound frames go through send and are
// written by a dedicated goroutine, so a slow peer never blocks a broadcast.
type Client struct {
	ID     string
	RoomID string

	socket    Socket
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	role      game.Role // guarded by ConnectionRegistry.mu
}

// Done is closed once the client has been unregistered or its socket closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) stop() bool {
	stopped := false
	c.closeOnce.Do(func() {
		close(c.done)
		stopped = true
	})
	return stopped
}

// Close stops the writer and closes the socket in the background. The
// read loop notices the closed socket and reports the disconnect.
func (c *Client) Close(code websocket.StatusCode, reason string) {
	if c.stop() {
		go func() {
			_ = c.socket.Close(code, reason)
		}()
	}
}

func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		log.Printf("Send queue full for conn %s in room %s, closing", c.ID, c.RoomID)
		c.Close(websocket.StatusPolicyViolation, "send queue full")
		return false
	}
}

type ConnectionRegistry struct {
	clients      map[string]*Client            // connectionID → client
	rooms        map[string]map[string]*Client // roomID → connectionID → client
	sendBuffer   int
	writeTimeout time.Duration
	mu           sync.RWMutex
}

func NewConnectionRegistry(sendBuffer int, writeTimeout time.Duration) *ConnectionRegistry {
	return &ConnectionRegistry{
		clients:      make(map[string]*Client),
		rooms:        make(map[string]map[string]*Client),
		sendBuffer:   sendBuffer,
		writeTimeout: writeTimeout,
	}
}

// Register adds a connection to a room with no role and starts its writer.
func (cr *ConnectionRegistry) Register(roomID string, socket Socket) *Client {
	c := &Client{
		ID:     uuid.New().String(),
		RoomID: roomID,
		socket: socket,
		send:   make(chan []byte, cr.sendBuffer),
		done:   make(chan struct{}),
	}

	cr.mu.Lock()
	cr.clients[c.ID] = c
	if cr.rooms[roomID] == nil {
		cr.rooms[roomID] = make(map[string]*Client)
	}
	cr.rooms[roomID][c.ID] = c
	cr.mu.Unlock()

	go cr.writePump(c)
	return c
}

func (cr *ConnectionRegistry) writePump(c *Client) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), cr.writeTimeout)
			err := c.socket.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Printf("Write to conn %s in room %s failed: %v", c.ID, c.RoomID, err)
				c.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

// ClaimRole binds role to the connection, replacing any role it held.
func (cr *ConnectionRegistry) ClaimRole(roomID, connectionID string, role game.Role) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	c, ok := cr.rooms[roomID][connectionID]
	if !ok {
		return game.NotFound("CONNECTION_NOT_FOUND", "Connection is not registered in room %s", roomID)
	}
	for id, other := range cr.rooms[roomID] {
		if id != connectionID && other.role == role {
			return game.RuleViolation("ROLE_TAKEN", "Role %s is already taken", role)
		}
	}
	c.role = role
	return nil
}

// ReleaseRole clears the connection's role and returns what it held.
func (cr *ConnectionRegistry) ReleaseRole(roomID, connectionID string) game.Role {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	c, ok := cr.rooms[roomID][connectionID]
	if !ok {
		return game.RoleNone
	}
	role := c.role
	c.role = game.RoleNone
	return role
}

func (cr *ConnectionRegistry) RoleOf(roomID, connectionID string) game.Role {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if c, ok := cr.rooms[roomID][connectionID]; ok {
		return c.role
	}
	return game.RoleNone
}

// Unregister removes the connection and stops its writer. It returns the
// room and the role the connection held; calling it twice is harmless.
func (cr *ConnectionRegistry) Unregister(connectionID string) (string, game.Role) {
	cr.mu.Lock()
	c, ok := cr.clients[connectionID]
	if !ok {
		cr.mu.Unlock()
		return "", game.RoleNone
	}
	delete(cr.clients, connectionID)
	delete(cr.rooms[c.RoomID], connectionID)
	if len(cr.rooms[c.RoomID]) == 0 {
		delete(cr.rooms, c.RoomID)
	}
	role := c.role
	c.role = game.RoleNone
	cr.mu.Unlock()

	c.stop()
	return c.RoomID, role
}

func (cr *ConnectionRegistry) roomClients(roomID string) []*Client {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	clients := make([]*Client, 0, len(cr.rooms[roomID]))
	for _, c := range cr.rooms[roomID] {
		clients = append(clients, c)
	}
	return clients
}

func marshalMessage(msg any) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %T: %v", msg, err)
		return nil, false
	}
	return data, true
}

// Broadcast queues msg for every connection in the room and returns how
// many accepted it. Failing connections are closed, never reported.
func (cr *ConnectionRegistry) Broadcast(roomID string, msg any) int {
	return cr.BroadcastExcept(roomID, "", msg)
}

func (cr *ConnectionRegistry) BroadcastExcept(roomID, exceptID string, msg any) int {
	data, ok := marshalMessage(msg)
	if !ok {
		return 0
	}
	sent := 0
	for _, c := range cr.roomClients(roomID) {
		if c.ID == exceptID {
			continue
		}
		if c.enqueue(data) {
			sent++
		}
	}
	return sent
}

func (cr *ConnectionRegistry) SendTo(connectionID string, msg any) error {
	cr.mu.RLock()
	c, ok := cr.clients[connectionID]
	cr.mu.RUnlock()
	if !ok {
		return game.NotFound("CONNECTION_NOT_FOUND", "Connection %s not found", connectionID)
	}

	data, ok := marshalMessage(msg)
	if !ok {
		return game.Internal
	}
	if !c.enqueue(data) {
		return game.InvalidState("CONNECTION_CLOSED", "Connection %s is closed", connectionID)
	}
	return nil
}

// CloseRoom closes every socket in the room. Their read loops unregister them.
// DetachRoom removes every connection in the room from the registry and
// returns them. Detached connections hold no role and receive nothing.
func (cr *ConnectionRegistry) DetachRoom(roomID string) []*Client {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	clients := make([]*Client, 0, len(cr.rooms[roomID]))
	for id, c := range cr.rooms[roomID] {
		delete(cr.clients, id)
		c.role = game.RoleNone
		clients = append(clients, c)
	}
	delete(cr.rooms, roomID)
	return clients
}

// CloseRoom detaches the room's connections and closes them.
func (cr *ConnectionRegistry) CloseRoom(roomID, reason string) int {
	clients := cr.DetachRoom(roomID)
	for _, c := range clients {
		c.Close(websocket.StatusNormalClosure, reason)
	}
	return len(clients)
}

// CloseConnection closes one connection. Its read loop then reports the
// disconnect as usual.
func (cr *ConnectionRegistry) CloseConnection(connectionID string, code websocket.StatusCode, reason string) bool {
	cr.mu.RLock()
	c, ok := cr.clients[connectionID]
	cr.mu.RUnlock()
	if !ok {
		return false
	}
	c.Close(code, reason)
	return true
}

func (cr *ConnectionRegistry) CloseAll(reason string) {
	cr.mu.RLock()
	clients := make([]*Client, 0, len(cr.clients))
	for _, c := range cr.clients {
		clients = append(clients, c)
	}
	cr.mu.RUnlock()

	for _, c := range clients {
		c.Close(websocket.StatusGoingAway, reason)
	}
}

func (cr *ConnectionRegistry) Count() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.clients)
}

func (cr *ConnectionRegistry) RoomCount(roomID string) int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.rooms[roomID])
}
