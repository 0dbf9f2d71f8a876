package sse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case f, ok := <-c.Frames():
			if !ok {
				return out
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func TestBroadcast_TwoConnectionsSameKey(t *testing.T) {
	r := NewRegistry()
	a := r.Subscribe("u1")
	b := r.Subscribe("u1")

	r.Broadcast("u1", "progress", map[string]any{"percent": 50})

	framesA := drain(a)
	framesB := drain(b)
	require.Len(t, framesA, 1)
	require.Len(t, framesB, 1)
	assert.Equal(t, framesA[0], framesB[0])
	assert.Equal(t, "event: progress\ndata: {\"percent\":50}\n\n", string(framesA[0]))
}

func TestBroadcast_NoSubscribersIsNoop(t *testing.T) {
	r := NewRegistry()

	assert.NotPanics(t, func() {
		r.Broadcast("nobody", "progress", map[string]any{"percent": 10})
	})

	// Nothing was buffered for later delivery.
	c := r.Subscribe("nobody")
	assert.Empty(t, drain(c))
}

func TestBroadcast_DoesNotCrossKeys(t *testing.T) {
	r := NewRegistry()
	a := r.Subscribe("u1")
	b := r.Subscribe("u2")

	r.Broadcast("u1", "completed", map[string]any{"documentId": "doc_1"})

	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestBroadcast_FullBufferDropsFrameForThatConnectionOnly(t *testing.T) {
	r := NewRegistry()
	stuck := r.Subscribe("u1")
	healthy := r.Subscribe("u1")

	// Fill the stuck connection's buffer.
	for i := 0; i < connBuffer; i++ {
		r.Broadcast("u1", "progress", map[string]any{"percent": i})
	}
	drain(healthy)

	r.Broadcast("u1", "completed", map[string]any{"documentId": "doc_1"})

	// The healthy connection still gets the frame; the stuck one missed it.
	assert.Len(t, drain(healthy), 1)
	assert.Len(t, drain(stuck), connBuffer)
}

func TestUnsubscribe_ClosesAndRemoves(t *testing.T) {
	r := NewRegistry()
	c := r.Subscribe("u1")
	require.Equal(t, 1, r.Len("u1"))

	r.Unsubscribe("u1", c)
	assert.Equal(t, 0, r.Len("u1"))

	_, ok := <-c.Frames()
	assert.False(t, ok)

	// Second unsubscribe of the same connection must be harmless.
	assert.NotPanics(t, func() { r.Unsubscribe("u1", c) })
}

func TestHeartbeat_ReachesAllKeys(t *testing.T) {
	r := NewRegistry()
	conns := make([]*Conn, 0, 4)
	for i := 0; i < 4; i++ {
		conns = append(conns, r.Subscribe(fmt.Sprintf("u%d", i%2)))
	}

	r.Heartbeat()

	for _, c := range conns {
		frames := drain(c)
		require.Len(t, frames, 1)
		assert.Equal(t, ": keep-alive\n\n", string(frames[0]))
	}
}

func TestHeartbeat_EmptyRegistry(t *testing.T) {
	r := NewRegistry()
	assert.NotPanics(t, func() { r.Heartbeat() })
}

func TestFrame(t *testing.T) {
	got := Frame("error", []byte(`{"reason":"bad scan"}`))
	assert.Equal(t, "event: error\ndata: {\"reason\":\"bad scan\"}\n\n", string(got))
}
