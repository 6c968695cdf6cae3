// Package server implements the HTTP and WebSocket transport for roomchat.
//
// A Hub owns every connected Client and is the only goroutine that calls into
// the chat.Router, so each connection's events are applied in the order they
// were read. Router outcomes are encoded as JSON frames and fanned out to
// recipients without blocking; a client whose send buffer fills up is
// disconnected. Configuration, origin checks, flood protection, logging and
// Prometheus metrics live alongside in this package.
package server
