// Package server defines the JSON frames exchanged with clients and utility
// helpers that are reused across client and hub logic.
package server

import (
	"encoding/json"
	"strings"
)

// Inbound event names.
const (
	eventRegister    = "register"
	eventCreateRoom  = "createRoom"
	eventJoinRoom    = "joinRoom"
	eventSendMessage = "sendMessage"
	eventTyping      = "typing"
)

// eventAck names the frame carrying the reply to an acknowledged request.
const eventAck = "ack"

// InboundFrame is a client request. Ack, when present, asks for a reply
// frame carrying the same id.
type InboundFrame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame is a reply or a broadcast sent to a client.
type OutboundFrame struct {
	Event string `json:"event"`
	Ack   *int64 `json:"ack,omitempty"`
	Data  any    `json:"data"`
}

// sendMessageData is the payload of sendMessage.
type sendMessageData struct {
	Message any `json:"message"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
