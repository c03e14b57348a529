package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/data/repos"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/services"
)

const coachHistoryWindow = 12

// EnsureConversation returns the user's conversation root, creating it on
// first contact.
type EnsureConversation struct {
	Conversations repos.ConversationRepo
}

func (uc *EnsureConversation) Execute(ctx context.Context, userID uuid.UUID) (*domain.CoachConversation, error) {
	conv, err := uc.Conversations.FindByUserID(ctx, userID)
	if err == nil {
		return conv, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	conv = &domain.CoachConversation{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

type SendCoachMessageInput struct {
	UserID  uuid.UUID `json:"user_id"`
	Content string    `json:"content"`
}

type CoachReply struct {
	Content    string `json:"content"`
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// SendCoachMessage produces the coach's reply to one user message. It builds
// the prompt from the profile and the conversation context plus a recent
// message window, then calls the model. Appending the exchanged messages to
// the conversation is the caller's responsibility, so that a failed model
// call leaves a clean record of what was actually answered.
type SendCoachMessage struct {
	Conversations repos.ConversationRepo
	Profiles      repos.ProfileRepo
	AI            services.CoachAI
}

func (uc *SendCoachMessage) Execute(ctx context.Context, in SendCoachMessageInput) (*CoachReply, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Newf(apperr.KindValidation, "empty message")
	}
	conv, err := (&EnsureConversation{Conversations: uc.Conversations}).Execute(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := uc.Profiles.FindByUserID(ctx, in.UserID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	history, err := uc.Conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if len(history) > coachHistoryWindow {
		history = history[len(history)-coachHistoryWindow:]
	}

	req := services.CompletionRequest{
		System:    coachSystemPrompt(profile, conv),
		MaxTokens: 600,
	}
	for _, m := range history {
		req.Messages = append(req.Messages, services.CompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	// The chat handler persists the user message before invoking us, so the
	// history window may already end with it.
	if n := len(req.Messages); n == 0 || req.Messages[n-1].Role != string(domain.RoleUser) || req.Messages[n-1].Content != in.Content {
		req.Messages = append(req.Messages, services.CompletionMessage{
			Role:    string(domain.RoleUser),
			Content: in.Content,
		})
	}

	resp, err := uc.AI.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return &CoachReply{
		Content:    resp.Content,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}, nil
}

func coachSystemPrompt(p *domain.UserProfile, conv *domain.CoachConversation) string {
	var b strings.Builder
	b.WriteString("You are a supportive personal fitness coach. Keep replies short and concrete.\n")
	if p != nil {
		if p.DisplayName != "" {
			fmt.Fprintf(&b, "The user's name is %s.\n", p.DisplayName)
		}
		if p.Experience != "" {
			fmt.Fprintf(&b, "Experience level: %s.\n", p.Experience)
		}
		if len(p.Goals) > 0 {
			goals := make([]string, 0, len(p.Goals))
			for _, g := range p.Goals {
				goals = append(goals, string(g.Type))
			}
			fmt.Fprintf(&b, "Goals: %s.\n", strings.Join(goals, ", "))
		}
		if tone := p.Preferences.CoachTone; tone != "" {
			fmt.Fprintf(&b, "Preferred tone: %s.\n", tone)
		}
		if p.Constraints.DaysPerWeek > 0 {
			fmt.Fprintf(&b, "Trains %d days per week, about %.0f minutes per session.\n",
				p.Constraints.DaysPerWeek, p.Constraints.MinutesPerSession)
		}
	}
	if len(conv.Context.RecentWorkouts) > 0 {
		fmt.Fprintf(&b, "Recent workouts: %s.\n", strings.Join(conv.Context.RecentWorkouts, ", "))
	}
	if conv.Context.LastWorkoutAt != nil {
		fmt.Fprintf(&b, "Last workout: %s.\n", conv.Context.LastWorkoutAt.Format("2006-01-02"))
	}
	return b.String()
}

type CreateCheckInInput struct {
	UserID uuid.UUID `json:"user_id"`
	Prompt string    `json:"prompt"`
}

// CreateCheckIn opens a pending check-in on the user's conversation. It is
// driven by the periodic tick, not by user traffic.
type CreateCheckIn struct {
	Conversations repos.ConversationRepo
}

func (uc *CreateCheckIn) Execute(ctx context.Context, in CreateCheckInInput) (*domain.CheckIn, error) {
	conv, err := (&EnsureConversation{Conversations: uc.Conversations}).Execute(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = "How did training go this week?"
	}
	ci := &domain.CheckIn{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Prompt:         prompt,
		Status:         domain.CheckInPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.Conversations.AppendCheckIn(ctx, ci); err != nil {
		return nil, err
	}
	conv.Counters.TotalCheckIns++
	conv.Counters.PendingCheckIns++
	conv.UpdatedAt = time.Now().UTC()
	if err := uc.Conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	return ci, nil
}

type RespondToCheckInInput struct {
	UserID    uuid.UUID `json:"user_id"`
	CheckInID uuid.UUID `json:"check_in_id"`
	Response  string    `json:"response"`
}

type CheckInAck struct {
	CheckIn *domain.CheckIn `json:"check_in"`
	Ack     string          `json:"ack"`
}

// RespondToCheckIn records the user's answer on a pending check-in. A
// check-in can only be answered once.
type RespondToCheckIn struct {
	Conversations repos.ConversationRepo
}

func (uc *RespondToCheckIn) Execute(ctx context.Context, in RespondToCheckInInput) (*CheckInAck, error) {
	conv, err := uc.Conversations.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	ci, err := uc.Conversations.FindCheckIn(ctx, in.CheckInID)
	if err != nil {
		return nil, err
	}
	if ci.ConversationID != conv.ID {
		return nil, apperr.NotFound("check-in")
	}
	if ci.Status != domain.CheckInPending {
		return nil, apperr.Newf(apperr.KindConflict, "check-in already %s", ci.Status)
	}

	now := time.Now().UTC()
	response := in.Response
	ci.Response = &response
	ci.Status = domain.CheckInResponded
	ci.RespondedAt = &now
	if err := uc.Conversations.SaveCheckIn(ctx, ci); err != nil {
		return nil, err
	}

	if conv.Counters.PendingCheckIns > 0 {
		conv.Counters.PendingCheckIns--
	}
	conv.UpdatedAt = now
	if err := uc.Conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	return &CheckInAck{CheckIn: ci, Ack: "Thanks for checking in, noted."}, nil
}

type GetConversationInput struct {
	UserID uuid.UUID `json:"user_id"`
}

// GetConversation loads the root with its messages and check-ins attached.
type GetConversation struct {
	Conversations repos.ConversationRepo
}

func (uc *GetConversation) Execute(ctx context.Context, in GetConversationInput) (*domain.CoachConversation, error) {
	conv, err := uc.Conversations.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if conv.Messages, err = uc.Conversations.ListMessages(ctx, conv.ID); err != nil {
		return nil, err
	}
	if conv.CheckIns, err = uc.Conversations.ListCheckIns(ctx, conv.ID); err != nil {
		return nil, err
	}
	return conv, nil
}
