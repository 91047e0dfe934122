package feed

import (
	"encoding/json"
	"time"
)

// Frame is one message on the duplex feed stream. The shape matches the
// upstream websocket contract: a type tag, an opaque data payload, and the
// emission timestamp.
type Frame struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Frame types seen on the wire. Unknown types are treated as carrying a
// single event payload.
const (
	TypeEvent     = "event"
	TypeNewAlert  = "new_alert"
	TypeBatch     = "batch"
	TypeInitial   = "initial_alerts"
	TypeSubscribe = "subscribe"
)

// decode fills the frame from wire bytes. Total: bytes that are not a frame
// object become the payload of a bare event frame, so arbitrary wire text
// still reaches the normalizer instead of killing the stream.
func (f *Frame) decode(data []byte) {
	type alias Frame
	var parsed alias
	if err := json.Unmarshal(data, &parsed); err == nil && (parsed.Type != "" || len(parsed.Payload) > 0) {
		*f = Frame(parsed)
		return
	}
	*f = Frame{Type: TypeEvent, Payload: append(json.RawMessage(nil), data...)}
}

// Payloads expands the frame into individual event payloads. Batch frames
// carry a JSON array; everything else is a single payload.
func (f *Frame) Payloads() [][]byte {
	if len(f.Payload) == 0 {
		return nil
	}
	switch f.Type {
	case TypeBatch, TypeInitial:
		var items []json.RawMessage
		if err := json.Unmarshal(f.Payload, &items); err == nil {
			out := make([][]byte, 0, len(items))
			for _, item := range items {
				out = append(out, []byte(item))
			}
			return out
		}
		return [][]byte{f.Payload}
	default:
		return [][]byte{f.Payload}
	}
}
