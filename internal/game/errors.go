package game

import (
	"errors"
	"fmt"

	"flooded-island-server/internal/board"
)

// Kind groups errors by how a client should react to them. Handlers check
// Authorization before State before Rule so the player always gets the most
// actionable message.
type Kind int

const (
	KindInternal Kind = iota
	KindStructural
	KindAuthorization
	KindState
	KindRule
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindRule:
		return "rule"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Structural(code, format string, args ...any) *Error {
	return newError(KindStructural, code, format, args...)
}

func Unauthorized(code, format string, args ...any) *Error {
	return newError(KindAuthorization, code, format, args...)
}

func InvalidState(code, format string, args ...any) *Error {
	return newError(KindState, code, format, args...)
}

func RuleViolation(code, format string, args ...any) *Error {
	return newError(KindRule, code, format, args...)
}

func NotFound(code, format string, args ...any) *Error {
	return newError(KindNotFound, code, format, args...)
}

// Internal is the only error text a client sees for unexpected failures.
var Internal = &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "Internal server error"}

// AsError converts err into an *Error. Board validation failures become rule
// violations; anything unrecognised is reported as Internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	var verr *board.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: KindRule, Code: verr.Code, Message: verr.Message}
	}
	return Internal
}

func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return AsError(err).Kind
}
