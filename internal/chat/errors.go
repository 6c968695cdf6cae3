package chat

import "fmt"

// Code identifies a class of recoverable chat error.
type Code string

// Error codes surfaced to clients.
const (
	CodeEmptyInput        Code = "EmptyInput"
	CodeTooShort          Code = "TooShort"
	CodeTooLong           Code = "TooLong"
	CodeInvalidCharacters Code = "InvalidCharacters"
	CodeUsernameTaken     Code = "UsernameTaken"
	CodeNotRegistered     Code = "NotRegistered"
	CodeAlreadyRegistered Code = "AlreadyRegistered"
	CodeInvalidRoomName   Code = "InvalidRoomName"
	CodeRoomNameTooLong   Code = "RoomNameTooLong"
	CodeEmptyName         Code = "EmptyName"
	CodeRoomExists        Code = "RoomExists"
	CodeEmptyMessage      Code = "EmptyMessage"
	CodeMessageTooLong    Code = "MessageTooLong"
	CodeNotInRoom         Code = "NotInRoom"
	CodeRateLimited       Code = "RateLimited"
	CodeUnknownEvent      Code = "UnknownEvent"
)

// Error is a validation or state error reported back to the requesting
// client. Message is meant to be shown to a human.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so that wrapped or copied errors compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyInput        = newError(CodeEmptyInput, "Username cannot be empty")
	ErrTooShort          = newError(CodeTooShort, "Username must be at least %d characters", MinUsernameLength)
	ErrTooLong           = newError(CodeTooLong, "Username must be less than %d characters", MaxUsernameLength)
	ErrInvalidCharacters = newError(CodeInvalidCharacters, "Username can only contain letters, numbers, spaces, hyphens, and underscores")
	ErrUsernameTaken     = newError(CodeUsernameTaken, "Username is already taken. Please choose another.")
	ErrNotRegistered     = newError(CodeNotRegistered, "User not registered")
	ErrAlreadyRegistered = newError(CodeAlreadyRegistered, "Already registered on this connection")
	ErrInvalidRoomName   = newError(CodeInvalidRoomName, "Invalid room name")
	ErrRoomNameTooLong   = newError(CodeRoomNameTooLong, "Room name too long (max %d characters)", MaxRoomNameLength)
	ErrJoinNameTooLong   = newError(CodeRoomNameTooLong, "Room name too long")
	ErrEmptyName         = newError(CodeEmptyName, "Room name cannot be empty")
	ErrRoomExists        = newError(CodeRoomExists, "Room already exists. Join it instead.")
	ErrEmptyMessage      = newError(CodeEmptyMessage, "Message cannot be empty")
	ErrMessageTooLong    = newError(CodeMessageTooLong, "Message too long. Maximum %d characters.", MaxMessageLength)
	ErrNotInRoom         = newError(CodeNotInRoom, "Not in a room")
	ErrRateLimited       = newError(CodeRateLimited, "Sending messages too quickly. Please slow down.")
	ErrUnknownEvent      = newError(CodeUnknownEvent, "Unknown event")
)
