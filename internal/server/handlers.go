package server

import (
	"context"
	"log"
	"time"

	"flooded-island-server/internal/database"
	"flooded-island-server/internal/game"
)

const archiveTimeout = 5 * time.Second

func (s *Server) handleSelectRole(c *Client, cmd SelectRoleCommand) error {
	var reconnect bool
	_, err := s.rooms.Mutate(c.RoomID, func(r *game.Room) error {
		held := s.connections.RoleOf(c.RoomID, c.ID)
		var err error
		reconnect, err = game.SelectRole(r, held, cmd.Role)
		if err != nil {
			return err
		}
		return s.connections.ClaimRole(c.RoomID, c.ID, cmd.Role)
	}, func(r *game.Room) {
		if reconnect {
			if err := s.connections.SendTo(c.ID, newRoomState(r)); err != nil {
				log.Printf("Failed to send room state to conn %s: %v", c.ID, err)
			}
			s.connections.BroadcastExcept(c.RoomID, c.ID, PlayerStatusMessage{Type: MsgPlayerReconnected, Role: cmd.Role})
			return
		}
		s.connections.Broadcast(c.RoomID, newGameUpdate(r))
	})
	if err != nil {
		return err
	}

	if reconnect {
		log.Printf("Conn %s reclaimed %s in room %s", c.ID, cmd.Role, c.RoomID)
	} else {
		log.Printf("Conn %s selected %s in room %s", c.ID, cmd.Role, c.RoomID)
	}
	return nil
}

func (s *Server) handleConfigureGrid(c *Client, cmd ConfigureGridCommand) error {
	_, err := s.rooms.Mutate(c.RoomID, func(r *game.Room) error {
		sender := s.connections.RoleOf(c.RoomID, c.ID)
		return game.Configure(r, sender, cmd.Width, cmd.Height, cmd.MaxFloodCount)
	}, s.publishUpdate(c.RoomID, nil))
	if err != nil {
		return err
	}

	log.Printf("Room %s configured %dx%d, max flood %d", c.RoomID, cmd.Width, cmd.Height, cmd.MaxFloodCount)
	return nil
}

func (s *Server) handleMove(c *Client, cmd MoveCommand) error {
	var ended bool
	_, err := s.rooms.Mutate(c.RoomID, func(r *game.Room) error {
		sender := s.connections.RoleOf(c.RoomID, c.ID)
		var err error
		ended, err = game.Move(r, sender, cmd.Position, s.now())
		return err
	}, s.publishUpdate(c.RoomID, &ended))
	return err
}

func (s *Server) handleFlood(c *Client, cmd FloodCommand) error {
	var ended bool
	_, err := s.rooms.Mutate(c.RoomID, func(r *game.Room) error {
		sender := s.connections.RoleOf(c.RoomID, c.ID)
		var err error
		ended, err = game.Flood(r, sender, cmd.Positions, s.now())
		return err
	}, s.publishUpdate(c.RoomID, &ended))
	return err
}

func (s *Server) handlePing(c *Client) error {
	return s.connections.SendTo(c.ID, PongMessage{Type: MsgPong})
}

// publishUpdate broadcasts the committed room. When *ended is set the final
// board is followed by game_over and the result is archived.
func (s *Server) publishUpdate(roomID string, ended *bool) func(*game.Room) {
	return func(r *game.Room) {
		s.connections.Broadcast(roomID, newGameUpdate(r))
		if ended == nil || !*ended {
			return
		}
		s.connections.Broadcast(roomID, newGameOver(r))
		log.Printf("Room %s ended on day %d, %s wins", roomID, r.Turn, r.Winner)
		s.archiveMatch(r)
	}
}

// handleDisconnect runs when a connection's read loop exits.
func (s *Server) handleDisconnect(c *Client) {
	defer s.limiter.RemoveConnection(c.ID)
	defer s.health.RemoveConnection(c.ID)

	var role game.Role
	_, err := s.rooms.Mutate(c.RoomID, func(r *game.Room) error {
		_, role = s.connections.Unregister(c.ID)
		if role != game.RoleNone {
			game.Release(r, role)
		}
		return nil
	}, func(r *game.Room) {
		if role != game.RoleNone {
			s.connections.Broadcast(c.RoomID, PlayerStatusMessage{Type: MsgPlayerDisconnected, Role: role})
		}
	})
	if err != nil {
		// Room already swept; the registry entry still has to go.
		s.connections.Unregister(c.ID)
	}

	if role != game.RoleNone {
		log.Printf("Conn %s (%s) left room %s", c.ID, role, c.RoomID)
	} else {
		log.Printf("Conn %s left room %s", c.ID, c.RoomID)
	}
}

func (s *Server) archiveMatch(r *game.Room) {
	if s.archive == nil || r.EndedAt == nil {
		return
	}

	stats := game.ComputeStats(r)
	result := database.MatchResult{
		RoomID:        r.ID,
		Winner:        string(r.Winner),
		DaysSurvived:  stats.DaysSurvived,
		FieldsFlooded: stats.FieldsFlooded,
		FieldsDry:     stats.FieldsDry,
		TotalFields:   stats.TotalFields,
		CreatedAt:     r.CreatedAt,
		EndedAt:       *r.EndedAt,
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := s.archive.RecordMatch(ctx, result); err != nil {
			log.Printf("Failed to archive room %s: %v", result.RoomID, err)
		}
	}()
}
