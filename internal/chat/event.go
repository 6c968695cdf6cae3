package chat

// Outbound event names.
const (
	EventNewMessage     = "newMessage"
	EventUserJoined     = "userJoined"
	EventUserLeft       = "userLeft"
	EventRoomListUpdate = "roomListUpdate"
	EventUserTyping     = "userTyping"
)

// Broadcast is one outbound event and the connections that must receive it.
type Broadcast struct {
	To      []ConnID
	Event   string
	Payload any
}

// Outcome is the result of handling one inbound event. Reply is nil for
// events that are not acknowledged. Err records why the event was rejected,
// if it was; the client already sees it through Reply.
type Outcome struct {
	Reply      any
	Broadcasts []Broadcast
	Err        error
}

// ErrorReply is the acknowledgement for a rejected request.
type ErrorReply struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AckReply acknowledges a request that carries no data back.
type AckReply struct {
	Success bool `json:"success"`
}

// RegisterReply acknowledges a successful register.
type RegisterReply struct {
	Success  bool       `json:"success"`
	Username string     `json:"username"`
	Rooms    []RoomInfo `json:"rooms"`
}

// CreateRoomReply acknowledges a successful createRoom.
type CreateRoomReply struct {
	Success  bool   `json:"success"`
	RoomName string `json:"roomName"`
}

// JoinRoomReply acknowledges a successful joinRoom.
type JoinRoomReply struct {
	Success bool     `json:"success"`
	Room    string   `json:"room"`
	Users   []string `json:"users"`
}

// Message is a chat message as broadcast to a room.
type Message struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Room      string `json:"room"`
}

// Presence is the payload of userJoined and userLeft.
type Presence struct {
	Username string   `json:"username"`
	Room     string   `json:"room"`
	Users    []string `json:"users"`
}

// Typing is the payload of userTyping.
type Typing struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

func failure(err error) Outcome {
	return Outcome{
		Reply: ErrorReply{Success: false, Error: err.Error()},
		Err:   err,
	}
}
