package server

import (
	"sync"
	"time"

	"flooded-island-server/internal/game"
)

type roomEntry struct {
	mu      sync.Mutex
	room    *game.Room
	deleted bool
}

// RoomStore owns every live room. The map lock is held only to find or
// insert entries; all reads and writes of a room go through its own mutex,
// so actions in different rooms never wait on each other.
//
// Lock order is room -> connection registry. The store lock is never held
// while waiting on a room lock; only Delete takes it inside one.
type RoomStore struct {
	rooms map[string]*roomEntry
	mu    sync.RWMutex
	now   func() time.Time
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*roomEntry),
		now:   time.Now,
	}
}

// Create adds a new WAITING room and fails if the id is taken.
func (s *RoomStore) Create(id string) (*game.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[id]; exists {
		return nil, game.InvalidState("ROOM_EXISTS", "Room %s already exists", id)
	}
	room := game.NewRoom(id, s.now())
	s.rooms[id] = &roomEntry{room: room}
	return room.Clone(), nil
}

// GetOrCreate returns the room, creating it in WAITING if it is unknown.
func (s *RoomStore) GetOrCreate(id string) *game.Room {
	s.mu.Lock()
	entry, exists := s.rooms[id]
	if !exists {
		entry = &roomEntry{room: game.NewRoom(id, s.now())}
		s.rooms[id] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.room.Clone()
}

func (s *RoomStore) entry(id string) (*roomEntry, error) {
	s.mu.RLock()
	entry, exists := s.rooms[id]
	s.mu.RUnlock()
	if !exists {
		return nil, game.NotFound("ROOM_NOT_FOUND", "Room %s not found", id)
	}
	return entry, nil
}

// Get returns a deep copy of the room.
func (s *RoomStore) Get(id string) (*game.Room, error) {
	var room *game.Room
	err := s.Inspect(id, func(r *game.Room) { room = r })
	return room, err
}

// Inspect runs fn on a copy of the room while holding the room lock.
// Nothing fn does to the copy is kept.
func (s *RoomStore) Inspect(id string, fn func(*game.Room)) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return game.NotFound("ROOM_NOT_FOUND", "Room %s not found", id)
	}
	fn(entry.room.Clone())
	return nil
}

// Mutate applies fn to a working copy of the room. When fn succeeds the copy
// replaces the stored room and publish (if non-nil) sees the committed state
// before the lock is released, so events reach clients in commit order. When
// fn fails the stored room is untouched and publish is not called.
func (s *RoomStore) Mutate(id string, fn func(*game.Room) error, publish func(*game.Room)) (*game.Room, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, game.NotFound("ROOM_NOT_FOUND", "Room %s not found", id)
	}

	work := entry.room.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	entry.room = work

	if publish != nil {
		publish(work.Clone())
	}
	return work.Clone(), nil
}

// Delete removes the room and reports whether it existed. onDelete, when
// non-nil, runs under the room lock before the id is released, so nothing
// can join a new room under the same id until it returns.
func (s *RoomStore) Delete(id string, onDelete func(*game.Room)) bool {
	entry, err := s.entry(id)
	if err != nil {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return false
	}

	if onDelete != nil {
		onDelete(entry.room.Clone())
	}
	// Anyone already waiting on the entry sees it as gone.
	entry.deleted = true

	s.mu.Lock()
	if s.rooms[id] == entry {
		delete(s.rooms, id)
	}
	s.mu.Unlock()
	return true
}

// ListEndedBefore returns the ids of rooms that ended strictly before cutoff.
func (s *RoomStore) ListEndedBefore(cutoff time.Time) []string {
	s.mu.RLock()
	entries := make(map[string]*roomEntry, len(s.rooms))
	for id, entry := range s.rooms {
		entries[id] = entry
	}
	s.mu.RUnlock()

	var ids []string
	for id, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted && entry.room.EndedBefore(cutoff) {
			ids = append(ids, id)
		}
		entry.mu.Unlock()
	}
	return ids
}

func (s *RoomStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.rooms[id]
	return exists
}

func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
