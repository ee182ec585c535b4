package models

// SignalType distinguishes typing-off from typing-on signals.
type SignalType int

const (
	SignalTypingOff SignalType = 0
	SignalTypingOn  SignalType = 1
)

// Signal is a typing indicator. Signals travel outside the Event envelope
// as a minimal payload because the service caps signal bodies at a small
// fixed size (30 bytes).
type Signal struct {
	UserID int64      `json:"id"`
	Type   SignalType `json:"type"`
}
