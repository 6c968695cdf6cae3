package chat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// isoMillis matches the timestamps browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Options configures a Router.
type Options struct {
	RateLimit RateLimit
	Logger    *zerolog.Logger
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Router handles inbound client events against the session registry and
// the room directory. A single mutex covers both registries so that every
// event is applied atomically and a user's CurrentRoom always agrees with
// the room's member set.
type Router struct {
	mu       sync.Mutex
	conns    map[ConnID]struct{}
	sessions *Sessions
	rooms    *Directory
	limit    RateLimit
	log      zerolog.Logger
	now      func() time.Time
}

// NewRouter creates a Router with empty registries and the default room.
func NewRouter(opts Options) *Router {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Router{
		conns:    make(map[ConnID]struct{}),
		sessions: NewSessions(),
		rooms:    NewDirectory(),
		limit:    opts.RateLimit.withDefaults(),
		log:      logger.With().Str("component", "router").Logger(),
		now:      now,
	}
}

// Connect records a new anonymous connection. Anonymous connections receive
// room list updates but nothing else.
func (r *Router) Connect(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[id] = struct{}{}
	r.log.Debug().Str("conn", string(id)).Msg("connection opened")
}

// Register binds a username to the connection.
func (r *Router) Register(id ConnID, rawUsername string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[id] = struct{}{}
	user, err := r.sessions.Register(id, rawUsername, r.now())
	if err != nil {
		return failure(err)
	}

	r.log.Info().Str("conn", string(id)).Str("user", user.Username).Msg("user registered")
	return Outcome{Reply: RegisterReply{
		Success:  true,
		Username: user.Username,
		Rooms:    r.rooms.List(),
	}}
}

// CreateRoom adds an empty room and announces the new room list to every
// connection. The caller is not joined to the room.
func (r *Router) CreateRoom(id ConnID, rawName string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.sessions.Lookup(id)
	if !ok {
		return failure(ErrNotRegistered)
	}

	name, err := r.rooms.Create(rawName)
	if err != nil {
		return failure(err)
	}

	r.log.Info().Str("room", name).Str("user", user.Username).Msg("room created")
	return Outcome{
		Reply:      CreateRoomReply{Success: true, RoomName: name},
		Broadcasts: []Broadcast{r.roomListUpdate()},
	}
}

// JoinRoom moves the connection's user into the named room, leaving its
// current room first. The room is created if it does not exist.
func (r *Router) JoinRoom(id ConnID, rawName string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.sessions.Lookup(id)
	if !ok {
		return failure(ErrNotRegistered)
	}

	name, err := SanitizeRoomName(rawName)
	switch {
	case errors.Is(err, ErrEmptyName):
		return failure(ErrInvalidRoomName)
	case errors.Is(err, ErrRoomNameTooLong):
		return failure(ErrJoinNameTooLong)
	case err != nil:
		return failure(err)
	}

	broadcasts := r.transferMembership(id, user, user.CurrentRoom, name)

	r.log.Info().Str("user", user.Username).Str("room", name).Msg("user joined room")
	return Outcome{
		Reply: JoinRoomReply{
			Success: true,
			Room:    name,
			Users:   r.usernamesIn(name),
		},
		Broadcasts: broadcasts,
	}
}

// SendMessage broadcasts a message to every member of the sender's room,
// the sender included.
func (r *Router) SendMessage(id ConnID, rawText string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.sessions.Lookup(id)
	if !ok {
		return failure(ErrNotRegistered)
	}
	if !user.InRoom() {
		return failure(ErrNotInRoom)
	}

	text, err := SanitizeMessage(rawText)
	if err != nil {
		return failure(err)
	}

	now := r.now()
	if !user.allow(r.limit, now) {
		r.log.Warn().Str("user", user.Username).Msg("message rate limit exceeded")
		return failure(ErrRateLimited)
	}

	msg := Message{
		ID:        fmt.Sprintf("%s-%d", id, now.UnixMilli()),
		Username:  user.Username,
		Message:   text,
		Timestamp: now.UTC().Format(isoMillis),
		Room:      user.CurrentRoom,
	}

	r.log.Debug().Str("user", user.Username).Str("room", user.CurrentRoom).Msg("message sent")
	return Outcome{
		Reply: AckReply{Success: true},
		Broadcasts: compact(Broadcast{
			To:      r.rooms.Members(user.CurrentRoom),
			Event:   EventNewMessage,
			Payload: msg,
		}),
	}
}

// Typing relays a typing indicator to the other members of the sender's
// room. It is never acknowledged.
func (r *Router) Typing(id ConnID, isTyping bool) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.sessions.Lookup(id)
	if !ok {
		return Outcome{Err: ErrNotRegistered}
	}
	if !user.InRoom() {
		return Outcome{Err: ErrNotInRoom}
	}

	return Outcome{Broadcasts: compact(Broadcast{
		To:      lo.Without(r.rooms.Members(user.CurrentRoom), id),
		Event:   EventUserTyping,
		Payload: Typing{Username: user.Username, IsTyping: isTyping},
	})}
}

// Disconnect tears down everything bound to the connection. It is safe to
// call more than once.
func (r *Router) Disconnect(id ConnID) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, id)
	user, ok := r.sessions.Unregister(id)
	if !ok {
		return Outcome{}
	}

	r.log.Info().Str("conn", string(id)).Str("user", user.Username).Msg("user disconnected")

	if !user.InRoom() {
		return Outcome{Broadcasts: []Broadcast{r.roomListUpdate()}}
	}
	return Outcome{Broadcasts: r.transferMembership(id, user, user.CurrentRoom, "")}
}

// transferMembership moves id out of from and into to. Either may be empty.
// Leaving announces userLeft to the remaining members, joining announces
// userJoined to the other members, and each step announces the new room
// list to everyone.
func (r *Router) transferMembership(id ConnID, user *User, from, to string) []Broadcast {
	var out []Broadcast

	if from != "" {
		r.rooms.Leave(id, from)
		user.CurrentRoom = ""
		out = append(out, compact(Broadcast{
			To:      r.rooms.Members(from),
			Event:   EventUserLeft,
			Payload: Presence{Username: user.Username, Room: from, Users: r.usernamesIn(from)},
		})...)
		out = append(out, r.roomListUpdate())
	}

	if to != "" {
		r.rooms.Enter(id, to)
		user.CurrentRoom = to
		out = append(out, compact(Broadcast{
			To:      lo.Without(r.rooms.Members(to), id),
			Event:   EventUserJoined,
			Payload: Presence{Username: user.Username, Room: to, Users: r.usernamesIn(to)},
		})...)
		out = append(out, r.roomListUpdate())
	}

	return out
}

func (r *Router) roomListUpdate() Broadcast {
	return Broadcast{
		To:      lo.Keys(r.conns),
		Event:   EventRoomListUpdate,
		Payload: r.rooms.List(),
	}
}

func (r *Router) usernamesIn(room string) []string {
	return lo.FilterMap(r.rooms.Members(room), func(id ConnID, _ int) (string, bool) {
		user, ok := r.sessions.Lookup(id)
		if !ok {
			return "", false
		}
		return user.Username, true
	})
}

// compact drops a broadcast that has nobody to deliver to.
func compact(b Broadcast) []Broadcast {
	if len(b.To) == 0 {
		return nil
	}
	return []Broadcast{b}
}

// Rooms returns a snapshot of the room list.
func (r *Router) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rooms.List()
}

// RoomUsers returns the usernames in a room. An unknown room is empty.
func (r *Router) RoomUsers(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.usernamesIn(name)
}

// Lookup returns a copy of the user bound to id.
func (r *Router) Lookup(id ConnID) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.sessions.Lookup(id)
	if !ok {
		return User{}, false
	}
	return *user, true
}

// InRoom reports whether id is in the named room's member set.
func (r *Router) InRoom(id ConnID, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rooms.Contains(room, id)
}

// Stats reports the number of open connections and registered users.
func (r *Router) Stats() (connections, users int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns), r.sessions.Len()
}

// Reset drops every connection, user and room, and recreates the default
// room.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.conns)
	r.sessions.reset()
	r.rooms.reset()
}
