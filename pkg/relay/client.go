package relay

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pubchat/pkg/logger"
	"pubchat/pkg/telemetry"
)

const (
	sendBuffer      = 256
	clientWriteWait = 10 * time.Second
)

// client is one connected websocket peer.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

func newClient(h *Hub, conn *websocket.Conn, instanceID string) *client {
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	return &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   instanceID,
	}
}

// run services the connection until it drops. It blocks; the HTTP
// handler calls it on the upgraded connection's goroutine.
func (c *client) run() {
	telemetry.RelayConnections.Inc()
	defer telemetry.RelayConnections.Dec()

	done := make(chan struct{})
	go c.writePump(done)
	c.readPump()
	close(done)

	c.hub.drop(c)
	_ = c.conn.Close()
	logger.Info("client_disconnected", "client", c.id)
}

func (c *client) readPump() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var f inboundFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			telemetry.RelayRejected.WithLabelValues("bad_frame").Inc()
			c.sendError("", "malformed frame")
			continue
		}
		c.hub.handleFrame(c, f)
	}
}

func (c *client) writePump(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(clientWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// trySend queues a frame without blocking; a slow client drops frames
// rather than stalling the hub.
func (c *client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		logger.Warn("client_send_dropped", "client", c.id)
	}
}

func (c *client) sendError(channel, msg string) {
	frame, err := json.Marshal(outboundFrame{Kind: "error", Channel: channel, Error: msg})
	if err != nil {
		return
	}
	c.trySend(frame)
}
