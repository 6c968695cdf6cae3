package server

import (
	"encoding/json"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// dispatch decodes the frame payload and applies it to the router.
func (h *Hub) dispatch(id chat.ConnID, f InboundFrame) chat.Outcome {
	switch f.Event {
	case eventRegister:
		return h.router.Register(id, decodeString(f.Data))
	case eventCreateRoom:
		return h.router.CreateRoom(id, decodeString(f.Data))
	case eventJoinRoom:
		return h.router.JoinRoom(id, decodeString(f.Data))
	case eventSendMessage:
		var data sendMessageData
		_ = json.Unmarshal(f.Data, &data)
		text, _ := data.Message.(string)
		return h.router.SendMessage(id, text)
	case eventTyping:
		var isTyping bool
		_ = json.Unmarshal(f.Data, &isTyping)
		return h.router.Typing(id, isTyping)
	default:
		return chat.Outcome{
			Reply: chat.ErrorReply{Error: chat.ErrUnknownEvent.Error()},
			Err:   chat.ErrUnknownEvent,
		}
	}
}

// decodeString returns the payload when it is a JSON string. Any other
// payload decodes to the empty string, which the validators reject.
func decodeString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}
