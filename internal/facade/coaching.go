package facade

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/usecase"
)

type Coaching struct {
	UserID           uuid.UUID
	SendMessage      *usecase.SendCoachMessage
	RespondToCheckIn *usecase.RespondToCheckIn
	GetConversation  *usecase.GetConversation
}

func (f *Coaching) Call(ctx context.Context, method string, payload json.RawMessage) Result {
	switch method {
	case "send_message":
		return run(ctx, payload,
			func(in *usecase.SendCoachMessageInput) { in.UserID = f.UserID },
			f.SendMessage.Execute)
	case "respond_to_check_in":
		return run(ctx, payload,
			func(in *usecase.RespondToCheckInInput) { in.UserID = f.UserID },
			f.RespondToCheckIn.Execute)
	case "conversation":
		return run(ctx, payload,
			func(in *usecase.GetConversationInput) { in.UserID = f.UserID },
			f.GetConversation.Execute)
	default:
		return unknownMethod("coaching", method)
	}
}
