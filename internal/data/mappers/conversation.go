package mappers

import (
	"fmt"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
)

func ConversationToRow(c *domain.CoachConversation) (*rows.CoachConversation, error) {
	// LastWorkoutAt has its own column; the context blob carries everything
	// else (the domain type's json tags keep the timestamp out).
	ctxJSON, err := marshalJSON(c.Context)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}
	return &rows.CoachConversation{
		ID:                 c.ID,
		UserID:             c.UserID,
		TotalMessages:      c.Counters.TotalMessages,
		TotalUserMessages:  c.Counters.TotalUserMessages,
		TotalCoachMessages: c.Counters.TotalCoachMessages,
		TotalCheckIns:      c.Counters.TotalCheckIns,
		PendingCheckIns:    c.Counters.PendingCheckIns,
		Context:            ctxJSON,
		LastWorkoutAt:      c.Context.LastWorkoutAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}, nil
}

// ConversationToDomain rebuilds the root only; messages and check-ins are
// separate queries attached by the caller.
func ConversationToDomain(r *rows.CoachConversation) (*domain.CoachConversation, error) {
	c := &domain.CoachConversation{
		ID:     r.ID,
		UserID: r.UserID,
		Counters: domain.ConversationCounters{
			TotalMessages:      r.TotalMessages,
			TotalUserMessages:  r.TotalUserMessages,
			TotalCoachMessages: r.TotalCoachMessages,
			TotalCheckIns:      r.TotalCheckIns,
			PendingCheckIns:    r.PendingCheckIns,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := unmarshalJSON(r.Context, &c.Context); err != nil {
		return nil, fmt.Errorf("unmarshal context: %w", err)
	}
	c.Context.LastWorkoutAt = r.LastWorkoutAt
	return c, nil
}

func MessageToRow(m *domain.Message) rows.CoachMessage {
	return rows.CoachMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Seq:            m.Seq,
		Role:           string(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func MessageToDomain(r *rows.CoachMessage) domain.Message {
	return domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Seq:            r.Seq,
		Role:           domain.MessageRole(r.Role),
		Content:        r.Content,
		CreatedAt:      r.CreatedAt,
	}
}

func CheckInToRow(c *domain.CheckIn) rows.CoachCheckIn {
	return rows.CoachCheckIn{
		ID:             c.ID,
		ConversationID: c.ConversationID,
		Prompt:         c.Prompt,
		Response:       c.Response,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		RespondedAt:    c.RespondedAt,
	}
}

func CheckInToDomain(r *rows.CoachCheckIn) domain.CheckIn {
	return domain.CheckIn{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Prompt:         r.Prompt,
		Response:       r.Response,
		Status:         domain.CheckInStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		RespondedAt:    r.RespondedAt,
	}
}
