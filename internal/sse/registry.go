// Package sse implements the live-update broadcast registry for
// Server-Sent Events. Connections are keyed by owner id; one owner may hold
// several connections (multiple tabs). The registry is push-only and keeps no
// history: a frame that cannot be written to a connection is dropped for that
// connection alone.
package sse

import (
	"encoding/json"
	"sync"
)

// connBuffer is the per-connection frame backlog. A connection whose reader
// has fallen this far behind is treated as a failed write target and frames
// addressed to it are dropped until it catches up.
const connBuffer = 16

// Conn is one subscriber connection. Frames are consumed from Frames() by the
// HTTP stream loop that owns the connection; the loop unsubscribes on write
// failure or client disconnect.
type Conn struct {
	frames chan []byte
	once   sync.Once
}

// Frames returns the channel of wire-ready SSE frames for this connection.
// The channel is closed by Unsubscribe.
func (c *Conn) Frames() <-chan []byte {
	return c.frames
}

func (c *Conn) close() {
	c.once.Do(func() { close(c.frames) })
}

// Registry maps subscriber keys to their open connections.
// All methods are safe under concurrent connect, disconnect, and broadcast.
type Registry struct {
	mu    sync.Mutex
	conns map[string]map[*Conn]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[*Conn]struct{})}
}

// Subscribe registers a new connection under key and returns its handle.
func (r *Registry) Subscribe(key string) *Conn {
	c := &Conn{frames: make(chan []byte, connBuffer)}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[key]
	if !ok {
		set = make(map[*Conn]struct{})
		r.conns[key] = set
	}
	set[c] = struct{}{}
	return c
}

// Unsubscribe removes the connection and closes its frame channel. Safe to
// call more than once for the same connection.
func (r *Registry) Unsubscribe(key string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[key]
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.conns, key)
		}
	}
	c.close()
}

// Broadcast frames the event and enqueues it on every connection registered
// under key. A key with no subscribers is a no-op; a connection with a full
// buffer misses this frame but stays registered, its removal is driven by its
// own stream loop noticing the dead client.
func (r *Registry) Broadcast(key, eventKind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame := Frame(eventKind, data)

	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.conns[key] {
		select {
		case c.frames <- frame:
		default:
		}
	}
}

// Heartbeat enqueues a keep-alive comment frame on every connection across
// all keys, defeating intermediary idle-connection timeouts. Tolerates an
// empty registry and full connection buffers like Broadcast does.
func (r *Registry) Heartbeat() {
	frame := []byte(": keep-alive\n\n")
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.conns {
		for c := range set {
			select {
			case c.frames <- frame:
			default:
			}
		}
	}
}

// Len reports the number of connections registered under key.
func (r *Registry) Len(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[key])
}

// Frame renders one SSE event frame: "event: <kind>\ndata: <json>\n\n".
func Frame(eventKind string, data []byte) []byte {
	buf := make([]byte, 0, len(eventKind)+len(data)+16)
	buf = append(buf, "event: "...)
	buf = append(buf, eventKind...)
	buf = append(buf, "\ndata: "...)
	buf = append(buf, data...)
	buf = append(buf, "\n\n"...)
	return buf
}
