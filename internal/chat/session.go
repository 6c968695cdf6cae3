package chat

import (
	"strings"
	"time"
)

// ConnID identifies one live client connection.
type ConnID string

// User is the registered identity behind a connection.
type User struct {
	Username string
	// CurrentRoom is the room the user is in, or empty.
	CurrentRoom string

	messageCount int
	windowStart  time.Time
}

// InRoom reports whether the user currently belongs to a room.
func (u *User) InRoom() bool {
	return u.CurrentRoom != ""
}

// Sessions maps connections to users and keeps usernames unique,
// ignoring case, across all active users.
//
// Sessions is not safe for concurrent use; Router serialises access.
type Sessions struct {
	users map[ConnID]*User
	names map[string]struct{}
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{
		users: make(map[ConnID]*User),
		names: make(map[string]struct{}),
	}
}

// Register validates rawUsername and binds a new user to id.
func (s *Sessions) Register(id ConnID, rawUsername string, now time.Time) (*User, error) {
	if _, exists := s.users[id]; exists {
		return nil, ErrAlreadyRegistered
	}

	name, err := ValidateUsername(rawUsername)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(name)
	if _, taken := s.names[key]; taken {
		return nil, ErrUsernameTaken
	}

	user := &User{Username: name, windowStart: now}
	s.users[id] = user
	s.names[key] = struct{}{}
	return user, nil
}

// Lookup returns the user bound to id.
func (s *Sessions) Lookup(id ConnID) (*User, bool) {
	user, ok := s.users[id]
	return user, ok
}

// Unregister removes the user bound to id and frees its username. The
// caller is responsible for removing the user from its room. Unregistering
// an unknown connection is a no-op.
func (s *Sessions) Unregister(id ConnID) (*User, bool) {
	user, ok := s.users[id]
	if !ok {
		return nil, false
	}
	delete(s.users, id)
	delete(s.names, strings.ToLower(user.Username))
	return user, true
}

// Len returns the number of registered users.
func (s *Sessions) Len() int {
	return len(s.users)
}

// Taken reports whether name is held by an active user, ignoring case.
func (s *Sessions) Taken(name string) bool {
	_, ok := s.names[strings.ToLower(name)]
	return ok
}

func (s *Sessions) reset() {
	clear(s.users)
	clear(s.names)
}
