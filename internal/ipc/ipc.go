// Package ipc implements the message-passing substrate: a small synchronous per-endpoint mailbox
// and a router that delivers messages between a closed set of named endpoints.
package ipc

import (
	"errors"
	"fmt"
)

// MaxPayload is the largest payload a Message can carry.
const MaxPayload = 8

// EndpointID names a mailbox in the router. The set of endpoints is closed and known at build time.
type EndpointID uint8

// Endpoints used by the ping/pong demo tasks.
const (
	Ping EndpointID = 1
	Pong EndpointID = 2
)

func (e EndpointID) String() string {
	switch e {
	case Ping:
		return "Ping"
	case Pong:
		return "Pong"
	default:
		return fmt.Sprintf("EndpointID(%d)", uint8(e))
	}
}

// MsgType identifies the kind of a Message.
type MsgType uint8

// Message kinds used by the ping/pong demo tasks.
const (
	MsgPing MsgType = 1
	MsgPong MsgType = 2
)

// Header is a Message's fixed-layout metadata.
type Header struct {
	Src  EndpointID
	Dst  EndpointID
	Type MsgType
	Len  uint8
	Seq  uint32
}

// Message is the fixed-layout unit of IPC: a header plus an 8-byte payload.
type Message struct {
	Header  Header
	Payload [MaxPayload]byte
}

// ErrMailboxFull is returned by Send when the destination mailbox already holds a buffered
// message. It is the sole fallible outcome of a Send to one of the router's endpoints; a Send to an
// endpoint the router does not know returns a separate error.
var ErrMailboxFull = errors.New("ipc: mailbox full")

// mailbox is a single-slot message buffer. At most one message is buffered at a time: a Put on a
// full mailbox fails without mutating the buffer, and a Take on an empty mailbox returns false
// without mutating state. Mailboxes are mutated exclusively by the single cooperative loop and so
// need no synchronization of their own.
type mailbox struct {
	full bool
	msg  Message
}

func (m *mailbox) put(msg Message) error {
	if m.full {
		return ErrMailboxFull
	}

	m.msg = msg
	m.full = true

	return nil
}

func (m *mailbox) take() (Message, bool) {
	if !m.full {
		return Message{}, false
	}

	m.full = false

	return m.msg, true
}

// Router maps each endpoint to its mailbox. The key set is static and immutable once created;
// routing always uses the destination field of a message's header.
type Router struct {
	mailboxes map[EndpointID]*mailbox
}

// NewRouter creates a router with one empty mailbox per known endpoint.
func NewRouter() *Router {
	return &Router{
		mailboxes: map[EndpointID]*mailbox{
			Ping: {},
			Pong: {},
		},
	}
}

// Send routes msg by its destination endpoint. It returns ErrMailboxFull, without mutating the
// mailbox, if the destination is already full.
func (r *Router) Send(msg Message) error {
	mb, ok := r.mailboxes[msg.Header.Dst]
	if !ok {
		return fmt.Errorf("ipc: send: unknown endpoint: %s", msg.Header.Dst)
	}

	return mb.put(msg)
}

// Recv clears and returns dst's buffered message, or reports none buffered.
func (r *Router) Recv(dst EndpointID) (Message, bool) {
	mb, ok := r.mailboxes[dst]
	if !ok {
		return Message{}, false
	}

	return mb.take()
}
