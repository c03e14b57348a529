package rows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Row models are the storage shape only. IDs are assigned by the
// application so the same models migrate on postgres and sqlite.

type UserProfile struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	DisplayName string         `gorm:"column:display_name;not null" json:"display_name"`
	Email       string         `gorm:"column:email;not null" json:"email"`
	Experience  string         `gorm:"column:experience;not null" json:"experience"`
	Goals       datatypes.JSON `gorm:"column:goals;type:jsonb" json:"goals"`
	Constraints datatypes.JSON `gorm:"column:constraints;type:jsonb" json:"constraints"`
	Preferences datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

type ProfileStats struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID     uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null;column:profile_id" json:"profile_id"`
	CurrentStreak int        `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	TotalWorkouts int        `gorm:"column:total_workouts;not null;default:0" json:"total_workouts"`
	TotalMinutes  float64    `gorm:"column:total_minutes;not null;default:0" json:"total_minutes"`
	LastWorkoutAt *time.Time `gorm:"column:last_workout_at" json:"last_workout_at,omitempty"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (ProfileStats) TableName() string { return "profile_stats" }

type Achievement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null;column:profile_id" json:"profile_id"`
	Code      string    `gorm:"column:code;not null" json:"code"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	EarnedAt  time.Time `gorm:"column:earned_at;not null" json:"earned_at"`
}

func (Achievement) TableName() string { return "achievement" }
