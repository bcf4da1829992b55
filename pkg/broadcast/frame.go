package broadcast

import (
	"encoding/json"
	"fmt"
)

// FrameType tags the variants of the wire protocol.
type FrameType string

const (
	// FrameRequest is sent by a requester to all listeners of a name.
	FrameRequest FrameType = "request"
	// FrameAck is sent by a listener on receiving a request, before it
	// surfaces the request to its consumer.
	FrameAck FrameType = "ack"
	// FrameData carries one reply body from a listener.
	FrameData FrameType = "data"
	// FrameEnd signals a listener is done replying.
	FrameEnd FrameType = "end"
)

// Frame is the tagged union carried on both the request channel and every
// reply channel. Body is opaque: the codec transports it without
// inspection. BroadcastID is only meaningful on request frames; listeners
// derive their reply channel from it (see RequestChannel/ReplyChannel).
type Frame struct {
	Type        FrameType `json:"type"`
	Host        string    `json:"host"`
	BroadcastID string    `json:"broadcastId,omitempty"`
	Body        []byte    `json:"body,omitempty"`
}

// EncodeFrame serializes a frame for transport over a Bus.
func EncodeFrame(f Frame) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("broadcast: encode frame: %w", err)
	}
	return b, nil
}

// DecodeFrame deserializes a frame received from a Bus. Unknown Type
// values decode successfully; it is the caller's responsibility to
// ignore frame types it does not understand (the requester's frame
// handling does exactly this).
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("broadcast: decode frame: %w", err)
	}
	return f, nil
}
