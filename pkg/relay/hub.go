// Package relay implements a small stand-in for the hosted pub/sub
// service: channels, publish/signal fanout to subscribers (the publisher
// included, matching the service's echo behavior), a per-client rate
// limiter and an idle-channel sweeper.
package relay

import (
	"encoding/json"
	"sync"
	"time"

	"pubchat/pkg/logger"
	"pubchat/pkg/telemetry"
	"pubchat/pkg/transport"
)

// Options tunes hub behavior. Zero values select defaults.
type Options struct {
	// RPS and Burst bound per-client publish/signal rates.
	RPS   float64
	Burst int
}

type channelState struct {
	subs         map[*client]struct{}
	lastActivity time.Time
}

// Hub routes frames between connected clients and their channels.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*channelState
	limits   *limiterPool
}

// NewHub creates an empty hub.
func NewHub(opts Options) *Hub {
	return &Hub{
		channels: make(map[string]*channelState),
		limits:   newLimiterPool(opts.RPS, opts.Burst),
	}
}

func (h *Hub) subscribe(c *client, name string) {
	if name == "" {
		c.sendError(name, "empty channel")
		return
	}
	h.mu.Lock()
	ch, ok := h.channels[name]
	if !ok {
		ch = &channelState{subs: make(map[*client]struct{})}
		h.channels[name] = ch
	}
	ch.subs[c] = struct{}{}
	ch.lastActivity = time.Now()
	n := len(ch.subs)
	h.mu.Unlock()
	logger.Info("channel_subscribed", "channel", name, "client", c.id, "subscribers", n)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	for _, ch := range h.channels {
		delete(ch.subs, c)
	}
	h.mu.Unlock()
	h.limits.forget(c.id)
}

// broadcast fans a frame out to every subscriber of the channel,
// including the sender: the service echoes published frames back to the
// publisher, and the client reconciler depends on that echo.
func (h *Hub) broadcast(kind, name string, payload json.RawMessage) {
	frame, err := json.Marshal(outboundFrame{Kind: kind, Channel: name, Payload: payload})
	if err != nil {
		logger.Error("broadcast_encode_failed", "channel", name, "error", err)
		return
	}

	h.mu.Lock()
	ch, ok := h.channels[name]
	if !ok {
		h.mu.Unlock()
		return
	}
	ch.lastActivity = time.Now()
	targets := make([]*client, 0, len(ch.subs))
	for c := range ch.subs {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.trySend(frame)
	}
	telemetry.RelayFanout.WithLabelValues(kind).Add(float64(len(targets)))
}

// handleFrame applies one client frame to the hub.
func (h *Hub) handleFrame(c *client, f inboundFrame) {
	switch f.Op {
	case "subscribe":
		h.subscribe(c, f.Channel)

	case "publish":
		if !h.limits.Allow(c.id) {
			telemetry.RelayRejected.WithLabelValues("rate_limited").Inc()
			c.sendError(f.Channel, "rate limited")
			return
		}
		h.broadcast("message", f.Channel, f.Payload)

	case "signal":
		if len(f.Payload) > transport.MaxSignalBytes {
			telemetry.RelayRejected.WithLabelValues("signal_too_large").Inc()
			c.sendError(f.Channel, "signal payload too large")
			return
		}
		if !h.limits.Allow(c.id) {
			telemetry.RelayRejected.WithLabelValues("rate_limited").Inc()
			c.sendError(f.Channel, "rate limited")
			return
		}
		h.broadcast("signal", f.Channel, f.Payload)

	default:
		telemetry.RelayRejected.WithLabelValues("bad_frame").Inc()
		c.sendError(f.Channel, "unknown op")
	}
}

// SweepIdle removes channels that have no subscribers and have seen no
// traffic for at least idle. Returns how many were removed.
func (h *Hub) SweepIdle(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	var removed int
	h.mu.Lock()
	for name, ch := range h.channels {
		if len(ch.subs) == 0 && ch.lastActivity.Before(cutoff) {
			delete(h.channels, name)
			removed++
		}
	}
	h.mu.Unlock()
	if removed > 0 {
		logger.Info("idle_channels_swept", "removed", removed)
	}
	return removed
}

// ChannelCount returns the number of live channels.
func (h *Hub) ChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}
