// Package wire implements the PostgreSQL v3 frontend/backend wire protocol:
// a pattern-driven builder for outbound frames and a length-prefixed reader
// and dispatcher for inbound ones. It has no knowledge of sockets, sessions,
// or SQL — it only knows how to turn typed messages into bytes and back.
package wire

import (
	"bytes"
	"fmt"
)

// ProtocolVersion is the protocol version number sent in every StartupMessage.
const ProtocolVersion uint32 = 0x00030000

// Message is implemented by every frontend and backend message type.
type Message interface {
	// Encode appends the wire representation of the message to dst and
	// returns the extended slice.
	Encode(dst []byte) []byte
}

// FrontendMessage is sent by the client.
type FrontendMessage interface {
	Message
	frontend()
}

// BackendMessage is received from the server.
type BackendMessage interface {
	Message
	backend()
}

type invalidMessageLenErr struct {
	messageType string
	expectedLen int
	actualLen   int
}

func (e *invalidMessageLenErr) Error() string {
	return fmt.Sprintf("%s: body must have length of %d, but it is %d", e.messageType, e.expectedLen, e.actualLen)
}

type invalidMessageFormatErr struct {
	messageType string
	details     string
}

func (e *invalidMessageFormatErr) Error() string {
	if e.details == "" {
		return fmt.Sprintf("%s: invalid message format", e.messageType)
	}
	return fmt.Sprintf("%s: invalid message format: %s", e.messageType, e.details)
}

// splitCString reads one NUL-terminated string off the front of buf,
// returning the string (without its terminator) and the remaining bytes.
// jackc/pgio's own NextCString leaves the cursor pointing at the consumed
// region instead of past it, so frame parsing here does its own cheap
// bytes.IndexByte split rather than depend on that helper.
func splitCString(buf []byte) (rest []byte, s string, ok bool) {
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 {
		return buf, "", false
	}
	return buf[idx+1:], string(buf[:idx]), true
}
