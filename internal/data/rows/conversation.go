package rows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CoachConversation struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	TotalMessages      int            `gorm:"column:total_messages;not null;default:0" json:"total_messages"`
	TotalUserMessages  int            `gorm:"column:total_user_messages;not null;default:0" json:"total_user_messages"`
	TotalCoachMessages int            `gorm:"column:total_coach_messages;not null;default:0" json:"total_coach_messages"`
	TotalCheckIns      int            `gorm:"column:total_check_ins;not null;default:0" json:"total_check_ins"`
	PendingCheckIns    int            `gorm:"column:pending_check_ins;not null;default:0" json:"pending_check_ins"`
	Context            datatypes.JSON `gorm:"column:context;type:jsonb" json:"context"`
	LastWorkoutAt      *time.Time     `gorm:"column:last_workout_at" json:"last_workout_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (CoachConversation) TableName() string { return "coach_conversation" }

type CoachMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index:idx_coach_message_conv_seq;not null;column:conversation_id" json:"conversation_id"`
	Seq            int64     `gorm:"index:idx_coach_message_conv_seq;not null;column:seq" json:"seq"`
	Role           string    `gorm:"column:role;not null" json:"role"`
	Content        string    `gorm:"column:content;not null" json:"content"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (CoachMessage) TableName() string { return "coach_message" }

type CoachCheckIn struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;index;not null;column:conversation_id" json:"conversation_id"`
	Prompt         string     `gorm:"column:prompt;not null" json:"prompt"`
	Response       *string    `gorm:"column:response" json:"response,omitempty"`
	Status         string     `gorm:"column:status;not null" json:"status"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	RespondedAt    *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
}

func (CoachCheckIn) TableName() string { return "coach_check_in" }

// ActorState is the actor's durable key-value store. One row per
// (user, key); values are opaque JSON owned by whoever wrote them.
type ActorState struct {
	UserID    uuid.UUID      `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	Key       string         `gorm:"primaryKey;column:key" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;type:jsonb" json:"value"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (ActorState) TableName() string { return "actor_state" }
