// Package chat implements the session and room coordination engine behind
// the roomchat server.
//
// The engine owns the authoritative in-memory state for connected users and
// rooms. Every operation on Router returns an Outcome: the reply destined for
// the requesting connection and the list of broadcasts the transport has to
// fan out. Nothing in this package performs network I/O.
package chat
