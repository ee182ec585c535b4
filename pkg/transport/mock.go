package transport

import (
	"context"
	"sync"
)

// SentFrame records one Publish or Signal call on the Mock transport.
type SentFrame struct {
	Channel string
	Payload []byte
}

// Mock implements Transport for testing. Tests inject inbound traffic
// with DeliverMessage/DeliverSignal and inspect outbound traffic with
// Published/Signaled.
type Mock struct {
	mu         sync.Mutex
	queue      *Queue
	subscribed []string
	published  []SentFrame
	signaled   []SentFrame

	// PublishErr / SignalErr, when set, are returned by the respective
	// calls to exercise failure paths.
	PublishErr error
	SignalErr  error

	closed bool
}

// NewMock creates a mock transport with a generously sized queue.
func NewMock() *Mock {
	return &Mock{queue: NewQueue(256)}
}

func (m *Mock) Subscribe(_ context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.subscribed = append(m.subscribed, channel)
	return nil
}

func (m *Mock) Publish(channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.published = append(m.published, SentFrame{Channel: channel, Payload: append([]byte(nil), payload...)})
	return nil
}

func (m *Mock) Signal(channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if len(payload) > MaxSignalBytes {
		return ErrSignalTooLarge
	}
	if m.SignalErr != nil {
		return m.SignalErr
	}
	m.signaled = append(m.signaled, SentFrame{Channel: channel, Payload: append([]byte(nil), payload...)})
	return nil
}

func (m *Mock) Deliveries() <-chan *Item { return m.queue.Out() }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.queue.Close()
	}
	return nil
}

// DeliverMessage feeds an inbound message-stream payload to the consumer.
func (m *Mock) DeliverMessage(channel string, payload []byte) error {
	return m.queue.TryEnqueue(KindMessage, channel, payload)
}

// DeliverSignal feeds an inbound signal-stream payload to the consumer.
func (m *Mock) DeliverSignal(channel string, payload []byte) error {
	return m.queue.TryEnqueue(KindSignal, channel, payload)
}

// Subscribed returns the channels Subscribe was called with.
func (m *Mock) Subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subscribed...)
}

// Published returns recorded Publish frames.
func (m *Mock) Published() []SentFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentFrame(nil), m.published...)
}

// Signaled returns recorded Signal frames.
func (m *Mock) Signaled() []SentFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentFrame(nil), m.signaled...)
}
