package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pubchat/pkg/logger"
)

// Frame ops understood by the relay.
const (
	opSubscribe = "subscribe"
	opPublish   = "publish"
	opSignal    = "signal"
)

// clientFrame is one outbound websocket frame.
type clientFrame struct {
	Op      string          `json:"op"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// serverFrame is one inbound websocket frame.
type serverFrame struct {
	Kind    string          `json:"kind"` // message|signal|error
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

const (
	defaultDialTimeout = 10 * time.Second
	writeWait          = 10 * time.Second
	outboundBuffer     = 256
	inboundCapacity    = 4096
)

// WS is the websocket-backed Transport. One goroutine reads frames into
// the delivery queue, one drains the outbound buffer; Publish and Signal
// only enqueue, so callers never block on the network.
type WS struct {
	instanceID string
	conn       *websocket.Conn
	queue      *Queue

	out       chan clientFrame
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the relay at url (ws:// or wss://) and starts the
// read/write pumps. Each connection carries a fresh instance id so the
// service can tell client instances apart.
func Dial(ctx context.Context, url string) (*WS, error) {
	id := uuid.NewString()
	hdr := http.Header{"X-Client-Instance": []string{id}}

	dialer := websocket.Dialer{HandshakeTimeout: defaultDialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, hdr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	t := &WS{
		instanceID: id,
		conn:       conn,
		queue:      NewQueue(inboundCapacity),
		out:        make(chan clientFrame, outboundBuffer),
		done:       make(chan struct{}),
	}
	go t.readPump()
	go t.writePump()
	logger.Info("transport_connected", "url", url, "instance", id)
	return t, nil
}

// InstanceID returns the per-connection client identity.
func (t *WS) InstanceID() string { return t.instanceID }

// Subscribe registers interest in a channel.
func (t *WS) Subscribe(ctx context.Context, channel string) error {
	return t.enqueue(ctx, clientFrame{Op: opSubscribe, Channel: channel})
}

// Publish sends a message envelope. Fire-and-forget: a write failure is
// logged by the pump, not reported here.
func (t *WS) Publish(channel string, payload []byte) error {
	return t.tryEnqueue(clientFrame{Op: opPublish, Channel: channel, Payload: payload})
}

// Signal sends a small signal payload, enforcing the service size cap
// locally so oversized signals fail fast.
func (t *WS) Signal(channel string, payload []byte) error {
	if len(payload) > MaxSignalBytes {
		return fmt.Errorf("%w: %d bytes", ErrSignalTooLarge, len(payload))
	}
	return t.tryEnqueue(clientFrame{Op: opSignal, Channel: channel, Payload: payload})
}

// Deliveries returns the inbound queue consumed by the session.
func (t *WS) Deliveries() <-chan *Item { return t.queue.Out() }

// Close shuts the connection down. The read pump closes the delivery
// queue on its way out so the consumer sees end-of-stream.
func (t *WS) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

func (t *WS) enqueue(ctx context.Context, f clientFrame) error {
	select {
	case <-t.done:
		return ErrClosed
	case t.out <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tryEnqueue never blocks: a saturated outbound buffer drops the frame.
func (t *WS) tryEnqueue(f clientFrame) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	select {
	case t.out <- f:
		return nil
	default:
		return fmt.Errorf("outbound buffer full (%d frames)", cap(t.out))
	}
}

func (t *WS) readPump() {
	defer t.queue.Close()
	for {
		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
			default:
				logger.Warn("transport_read_failed", "error", err)
			}
			return
		}
		var f serverFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			logger.Warn("transport_bad_frame", "error", err)
			continue
		}
		switch f.Kind {
		case "message", "signal":
			kind := KindMessage
			if f.Kind == "signal" {
				kind = KindSignal
			}
			if err := t.queue.TryEnqueue(kind, f.Channel, f.Payload); err != nil {
				logger.Warn("delivery_dropped", "kind", f.Kind, "channel", f.Channel, "error", err)
			}
		case "error":
			logger.Warn("relay_error", "channel", f.Channel, "error", f.Error)
		default:
			logger.Warn("transport_unknown_kind", "kind", f.Kind)
		}
	}
}

func (t *WS) writePump() {
	for {
		select {
		case <-t.done:
			return
		case f := <-t.out:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteJSON(f); err != nil {
				// fire-and-forget: log and keep draining
				logger.Warn("transport_write_failed", "op", f.Op, "channel", f.Channel, "error", err)
			}
		}
	}
}
