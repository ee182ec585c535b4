// Package transport abstracts the hosted pub/sub service: subscribe to a
// channel, publish structured messages, send small signals, and receive
// inbound deliveries on a single queue the session consumes.
package transport

import (
	"context"
	"errors"
)

// DeliveryKind separates the message stream from the signal stream; the
// service delivers the two through distinct listener paths.
type DeliveryKind int

const (
	KindMessage DeliveryKind = iota
	KindSignal
)

func (k DeliveryKind) String() string {
	if k == KindSignal {
		return "signal"
	}
	return "message"
}

// Delivery is one inbound item: a raw payload tagged with its stream and
// origin channel. Decoding is the reconciler's job.
type Delivery struct {
	Kind    DeliveryKind
	Channel string
	Payload []byte
}

// MaxSignalBytes is the service's cap on signal payload size. Only typing
// signals use the signal path, and they fit comfortably.
const MaxSignalBytes = 30

var (
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport closed")
	// ErrSignalTooLarge is returned when a signal payload exceeds the
	// service limit.
	ErrSignalTooLarge = errors.New("signal payload exceeds size limit")
)

// Transport is the capability the session consumes. Publish and Signal
// are fire-and-forget: they hand the frame to a writer pump and return;
// delivery failures are logged, never propagated back to the caller.
type Transport interface {
	// Subscribe registers interest in a channel's message and signal
	// streams.
	Subscribe(ctx context.Context, channel string) error

	// Publish sends a message envelope to a channel.
	Publish(channel string, payload []byte) error

	// Signal sends a small signal payload to a channel.
	Signal(channel string, payload []byte) error

	// Deliveries returns the inbound queue. The channel is closed when
	// the transport shuts down; consumers must call Done on every item.
	Deliveries() <-chan *Item

	// Close tears down the connection and closes the delivery queue.
	Close() error
}
