package server

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	// No I, O, 0 or 1, which are easy to misread.
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 6
	MaxRoomIDLength  = 32
)

// GenerateRoomCode returns a code for which inUse reports false.
func GenerateRoomCode(inUse func(string) bool) string {
	for {
		code := make([]byte, RoomCodeLength)
		for i := range code {
			code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		roomCode := string(code)

		if inUse == nil || !inUse(roomCode) {
			return roomCode
		}
	}
}

// ValidateRoomCode checks a normalized room id from a connection path. Ids
// are not limited to generated codes; any short name a client picks works.
func ValidateRoomCode(code string) error {
	if len(code) == 0 {
		return errors.New("INVALID_ROOM_ID: Room id cannot be empty")
	}
	if len(code) > MaxRoomIDLength {
		return errors.New("INVALID_ROOM_ID: Room id too long (max 32 characters)")
	}

	for _, ch := range code {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return errors.New("INVALID_ROOM_ID: Room id may contain only letters, digits, '-' and '_'")
		}
	}
	return nil
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
