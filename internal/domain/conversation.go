package domain

import (
	"time"

	"github.com/google/uuid"
)

// CoachConversation is the single per-user conversation root. Messages and
// check-ins are child rows loaded separately and attached by the caller.
type CoachConversation struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Counters ConversationCounters
	Context  CoachContext

	Messages []Message
	CheckIns []CheckIn

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ConversationCounters struct {
	TotalMessages      int
	TotalUserMessages  int
	TotalCoachMessages int
	TotalCheckIns      int
	PendingCheckIns    int
}

// CoachContext grounds the AI coach. LastWorkoutAt is projected into its
// own storage column.
type CoachContext struct {
	RecentWorkouts []string   `json:"recent_workouts,omitempty"`
	ActiveGoals    []string   `json:"active_goals,omitempty"`
	LastWorkoutAt  *time.Time `json:"-"`
}

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleCoach MessageRole = "coach"
)

type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Seq            int64
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}

type CheckInStatus string

const (
	CheckInPending   CheckInStatus = "pending"
	CheckInResponded CheckInStatus = "responded"
	CheckInExpired   CheckInStatus = "expired"
)

type CheckIn struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Prompt         string
	Response       *string
	Status         CheckInStatus
	CreatedAt      time.Time
	RespondedAt    *time.Time
}
