package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"flooded-island-server/internal/game"
)

// dispatch decodes one frame and runs its handler. Whatever goes wrong ends
// up as a single error message to this connection.
func (s *Server) dispatch(ctx context.Context, c *Client, data []byte) {
	cmd, err := DecodeCommand(data)
	if err != nil {
		log.Printf("Rejected frame from conn %s in room %s: %v", c.ID, c.RoomID, err)
		s.sendError(c, err)
		return
	}

	_, span := s.tracer.Start(ctx, "dispatch "+cmd.Type(),
		trace.WithAttributes(
			attribute.String("room.id", c.RoomID),
			attribute.String("connection.id", c.ID),
		),
	)
	defer span.End()

	if err := s.runCommand(c, cmd); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.sendError(c, err)
	}
}

func (s *Server) runCommand(c *Client, cmd Command) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic handling %s for conn %s in room %s: %v\n%s", cmd.Type(), c.ID, c.RoomID, rec, debug.Stack())
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	switch cmd := cmd.(type) {
	case SelectRoleCommand:
		return s.handleSelectRole(c, cmd)
	case ConfigureGridCommand:
		return s.handleConfigureGrid(c, cmd)
	case MoveCommand:
		return s.handleMove(c, cmd)
	case FloodCommand:
		return s.handleFlood(c, cmd)
	case PingCommand:
		return s.handlePing(c)
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
}

func (s *Server) sendError(c *Client, err error) {
	gerr := game.AsError(err)
	if gerr.Kind == game.KindInternal && !errors.Is(err, game.Internal) {
		log.Printf("Internal error for conn %s in room %s: %v", c.ID, c.RoomID, err)
	}
	if sendErr := s.connections.SendTo(c.ID, newErrorMessage(gerr)); sendErr != nil {
		log.Printf("Failed to send error to conn %s: %v", c.ID, sendErr)
	}
}
