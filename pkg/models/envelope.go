package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType discriminates the outer wire envelope.
type EventType string

const (
	EventMessage EventType = "message"
	EventReceipt EventType = "receipt"
)

// Event is the type-discriminated wire envelope wrapping message and
// receipt payloads. Signals are not wrapped; see Signal.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ErrUnknownEventType is returned when an envelope carries a type
// discriminator this client does not recognize. Callers log and drop.
var ErrUnknownEventType = errors.New("unknown event type")

// DecodeEvent parses the outer envelope and validates its discriminator.
func DecodeEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("invalid event envelope: %w", err)
	}
	switch ev.Type {
	case EventMessage, EventReceipt:
		return ev, nil
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEventType, ev.Type)
	}
}

// MessagePayload decodes the envelope data as a message event.
func (e Event) MessagePayload() (MessagePayload, error) {
	var p MessagePayload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return MessagePayload{}, fmt.Errorf("invalid message payload: %w", err)
	}
	switch p.Action {
	case ActionNew, ActionUpdate, ActionDelete:
	default:
		return MessagePayload{}, fmt.Errorf("unknown message action %q", p.Action)
	}
	if p.MessageID == 0 {
		return MessagePayload{}, errors.New("missing message id")
	}
	return p, nil
}

// Receipt decodes the envelope data as a receipt event.
func (e Event) Receipt() (Receipt, error) {
	var r Receipt
	if err := json.Unmarshal(e.Data, &r); err != nil {
		return Receipt{}, fmt.Errorf("invalid receipt payload: %w", err)
	}
	if r.MessageIDEnd == 0 {
		return Receipt{}, errors.New("missing message_id_end")
	}
	return r, nil
}

// DecodeSignal parses a raw signal payload.
func DecodeSignal(raw []byte) (Signal, error) {
	var s Signal
	if err := json.Unmarshal(raw, &s); err != nil {
		return Signal{}, fmt.Errorf("invalid signal payload: %w", err)
	}
	if s.Type != SignalTypingOff && s.Type != SignalTypingOn {
		return Signal{}, fmt.Errorf("unknown signal type %d", s.Type)
	}
	return s, nil
}

// EncodeEvent wraps data in the envelope and marshals the whole frame.
func EncodeEvent(t EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: t, Data: raw})
}
