package rows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompletedWorkout stores the performance snapshot with durations in
// seconds; the domain layer speaks minutes. VerifiedAt lives only in its
// column, never inside the verification blob.
type CompletedWorkout struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	PlanID       *uuid.UUID     `gorm:"type:uuid;index;column:plan_id" json:"plan_id,omitempty"`
	WeekNumber   *int           `gorm:"column:week_number" json:"week_number,omitempty"`
	DayNumber    *int           `gorm:"column:day_number" json:"day_number,omitempty"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Performance  datatypes.JSON `gorm:"column:performance;type:jsonb" json:"performance"`
	Verification datatypes.JSON `gorm:"column:verification;type:jsonb" json:"verification,omitempty"`
	VerifiedAt   *time.Time     `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CompletedAt  time.Time      `gorm:"column:completed_at;not null;index" json:"completed_at"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (CompletedWorkout) TableName() string { return "completed_workout" }

type WorkoutReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkoutID uuid.UUID `gorm:"type:uuid;index;not null;column:workout_id" json:"workout_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;column:author_id" json:"author_id"`
	Emoji     string    `gorm:"column:emoji;not null" json:"emoji"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (WorkoutReaction) TableName() string { return "workout_reaction" }
