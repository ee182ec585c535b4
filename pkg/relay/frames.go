package relay

import "encoding/json"

// inboundFrame is what clients send: an op plus channel and payload.
type inboundFrame struct {
	Op      string          `json:"op"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outboundFrame is what the relay fans out or returns on errors.
type outboundFrame struct {
	Kind    string          `json:"kind"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}
