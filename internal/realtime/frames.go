package realtime

import (
	"encoding/json"
	"fmt"
)

// Frame is the single wire unit of the realtime protocol, discriminated by
// Type. Payload stays raw until the consumer knows what to decode it into.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound frame types.
const (
	FrameChat            = "chat"
	FrameStartWorkout    = "start_workout"
	FrameCompleteWorkout = "complete_workout"
	FrameSubscribe       = "subscribe"
)

// Outbound frame types.
const (
	FrameConnected        = "connected"
	FrameChatResponse     = "chat_response"
	FrameChatError        = "chat_error"
	FrameWorkoutStarted   = "workout_started"
	FrameWorkoutCompleted = "workout_completed"
)

type ChatPayload struct {
	Content string `json:"content"`
}

type ChatResponsePayload struct {
	MessageID string `json:"message_id"`
	Seq       int64  `json:"seq"`
	Content   string `json:"content"`
}

type ChatErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewFrame marshals payload into a ready-to-send frame.
func NewFrame(frameType string, payload any) (Frame, error) {
	if payload == nil {
		return Frame{Type: frameType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s payload: %w", frameType, err)
	}
	return Frame{Type: frameType, Payload: raw}, nil
}

// Mailbox is the inbound half of an activated actor.
type Mailbox interface {
	Deliver(frame Frame) error
}
