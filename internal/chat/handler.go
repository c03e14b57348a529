// Package chat drives the coach conversation protocol for one user. The
// handler is owned by that user's actor and is only ever called from the
// actor loop, so its state machine needs no locking.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/data/repos"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/usecase"
)

type State string

const (
	StateIdle          State = "idle"
	StateAwaitingCoach State = "awaiting_coach_response"
)

type Handler struct {
	log           *logger.Logger
	conversations repos.ConversationRepo
	send          *usecase.SendCoachMessage
	userID        uuid.UUID
	state         State
}

func NewHandler(log *logger.Logger, conversations repos.ConversationRepo, send *usecase.SendCoachMessage, userID uuid.UUID) *Handler {
	return &Handler{
		log:           log.With("component", "chat", "user_id", userID),
		conversations: conversations,
		send:          send,
		userID:        userID,
		state:         StateIdle,
	}
}

func (h *Handler) State() State { return h.state }

// HandleUserMessage runs one full protocol round. The user's message is
// appended before the coach is invoked, so a failed model call still leaves
// the question on record; the reply is appended only on success. On failure
// the handler returns to Idle and the error surfaces to the caller, which
// pushes it to the client instead of retrying.
func (h *Handler) HandleUserMessage(ctx context.Context, content string) (*domain.Message, error) {
	if h.state != StateIdle {
		return nil, apperr.Newf(apperr.KindConflict, "coach is still responding")
	}

	conv, err := (&usecase.EnsureConversation{Conversations: h.conversations}).Execute(ctx, h.userID)
	if err != nil {
		return nil, err
	}
	if _, err := h.append(ctx, conv, domain.RoleUser, content); err != nil {
		return nil, err
	}

	h.state = StateAwaitingCoach
	reply, err := h.send.Execute(ctx, usecase.SendCoachMessageInput{UserID: h.userID, Content: content})
	h.state = StateIdle
	if err != nil {
		h.log.Warn("coach reply failed", "error", err)
		return nil, err
	}

	msg, err := h.append(ctx, conv, domain.RoleCoach, reply.Content)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (h *Handler) append(ctx context.Context, conv *domain.CoachConversation, role domain.MessageRole, content string) (*domain.Message, error) {
	seq, err := h.conversations.MaxSeq(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Seq:            seq + 1,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.conversations.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	conv.Counters.TotalMessages++
	switch role {
	case domain.RoleUser:
		conv.Counters.TotalUserMessages++
	case domain.RoleCoach:
		conv.Counters.TotalCoachMessages++
	}
	conv.UpdatedAt = msg.CreatedAt
	if err := h.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	return msg, nil
}
