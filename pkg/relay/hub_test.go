package relay

import (
	"encoding/json"
	"testing"
	"time"

	"pubchat/pkg/transport"
)

func testClient(h *Hub, id string) *client {
	return &client{hub: h, send: make(chan []byte, 8), id: id}
}

func recvFrame(t *testing.T, c *client) outboundFrame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f outboundFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return f
	default:
		t.Fatalf("client %s received nothing", c.id)
		return outboundFrame{}
	}
}

func TestPublishEchoesToAllSubscribersIncludingSender(t *testing.T) {
	h := NewHub(Options{})
	a := testClient(h, "a")
	b := testClient(h, "b")
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "room"})
	h.handleFrame(b, inboundFrame{Op: "subscribe", Channel: "room"})

	h.handleFrame(a, inboundFrame{Op: "publish", Channel: "room", Payload: json.RawMessage(`{"x":1}`)})

	for _, c := range []*client{a, b} {
		f := recvFrame(t, c)
		if f.Kind != "message" || f.Channel != "room" || string(f.Payload) != `{"x":1}` {
			t.Fatalf("client %s got %+v", c.id, f)
		}
	}
}

func TestSignalFanout(t *testing.T) {
	h := NewHub(Options{})
	a := testClient(h, "a")
	b := testClient(h, "b")
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "room"})
	h.handleFrame(b, inboundFrame{Op: "subscribe", Channel: "room"})

	h.handleFrame(a, inboundFrame{Op: "signal", Channel: "room", Payload: json.RawMessage(`{"id":1,"type":1}`)})
	if f := recvFrame(t, b); f.Kind != "signal" {
		t.Fatalf("frame = %+v", f)
	}
}

func TestOversizedSignalRejected(t *testing.T) {
	h := NewHub(Options{})
	a := testClient(h, "a")
	b := testClient(h, "b")
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "room"})
	h.handleFrame(b, inboundFrame{Op: "subscribe", Channel: "room"})

	big := make(json.RawMessage, transport.MaxSignalBytes+1)
	for i := range big {
		big[i] = 'x'
	}
	h.handleFrame(a, inboundFrame{Op: "signal", Channel: "room", Payload: big})

	// the sender's echo from subscribe-time is not pending, so the only
	// frame waiting must be the error
	if f := recvFrame(t, a); f.Kind != "error" || f.Error == "" {
		t.Fatalf("frame = %+v", f)
	}
	select {
	case raw := <-b.send:
		t.Fatalf("oversized signal fanned out: %s", raw)
	default:
	}
}

func TestRateLimitRejects(t *testing.T) {
	h := NewHub(Options{RPS: 0.001, Burst: 1})
	a := testClient(h, "a")
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "room"})

	h.handleFrame(a, inboundFrame{Op: "publish", Channel: "room", Payload: json.RawMessage(`1`)})
	if f := recvFrame(t, a); f.Kind != "message" {
		t.Fatalf("first publish rejected: %+v", f)
	}
	h.handleFrame(a, inboundFrame{Op: "publish", Channel: "room", Payload: json.RawMessage(`2`)})
	if f := recvFrame(t, a); f.Kind != "error" {
		t.Fatalf("second publish not limited: %+v", f)
	}
}

func TestUnknownOpReturnsError(t *testing.T) {
	h := NewHub(Options{})
	a := testClient(h, "a")
	h.handleFrame(a, inboundFrame{Op: "presence", Channel: "room"})
	if f := recvFrame(t, a); f.Kind != "error" {
		t.Fatalf("frame = %+v", f)
	}
}

func TestSweepRemovesIdleChannelsOnly(t *testing.T) {
	h := NewHub(Options{})
	a := testClient(h, "a")
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "occupied"})
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "empty"})
	h.drop(a)
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "occupied"})

	time.Sleep(5 * time.Millisecond)
	removed := h.SweepIdle(time.Millisecond)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if h.ChannelCount() != 1 {
		t.Fatalf("channels left = %d", h.ChannelCount())
	}
}

func TestDropForgetsClientLimiter(t *testing.T) {
	h := NewHub(Options{RPS: 0.001, Burst: 1})
	a := testClient(h, "a")
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "room"})

	h.handleFrame(a, inboundFrame{Op: "publish", Channel: "room", Payload: json.RawMessage(`1`)})
	if f := recvFrame(t, a); f.Kind != "message" {
		t.Fatalf("first publish rejected: %+v", f)
	}
	h.handleFrame(a, inboundFrame{Op: "publish", Channel: "room", Payload: json.RawMessage(`2`)})
	if f := recvFrame(t, a); f.Kind != "error" {
		t.Fatalf("burst not exhausted: %+v", f)
	}

	h.drop(a)
	h.limits.mu.Lock()
	left := len(h.limits.m)
	h.limits.mu.Unlock()
	if left != 0 {
		t.Fatalf("limiter pool still holds %d entries after drop", left)
	}

	// a reconnecting client starts with a fresh burst
	h.handleFrame(a, inboundFrame{Op: "subscribe", Channel: "room"})
	h.handleFrame(a, inboundFrame{Op: "publish", Channel: "room", Payload: json.RawMessage(`3`)})
	if f := recvFrame(t, a); f.Kind != "message" {
		t.Fatalf("reconnected client still limited: %+v", f)
	}
}
