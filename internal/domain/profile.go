package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

type GoalType string

const (
	GoalLoseWeight    GoalType = "lose_weight"
	GoalBuildMuscle   GoalType = "build_muscle"
	GoalEndurance     GoalType = "endurance"
	GoalGeneralHealth GoalType = "general_health"
)

// UserProfile is the root identity aggregate. Stats and Achievements are
// separate rows attached by the repository, never embedded in the profile's
// stored blob.
type UserProfile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Experience  ExperienceLevel
	Goals       []FitnessGoal
	Constraints TrainingConstraints
	Preferences Preferences

	Stats        *ProfileStats
	Achievements []Achievement

	CreatedAt time.Time
	UpdatedAt time.Time
}

type FitnessGoal struct {
	Type        GoalType   `json:"type"`
	TargetValue *float64   `json:"target_value,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type TrainingConstraints struct {
	DaysPerWeek       int      `json:"days_per_week"`
	MinutesPerSession float64  `json:"minutes_per_session"`
	Equipment         []string `json:"equipment,omitempty"`
	Injuries          []string `json:"injuries,omitempty"`
}

type Preferences struct {
	PreferredActivities []string `json:"preferred_activities,omitempty"`
	CoachTone           string   `json:"coach_tone,omitempty"`
	ReminderHour        *int     `json:"reminder_hour,omitempty"`
	Timezone            string   `json:"timezone,omitempty"`
}

type ProfileStats struct {
	ID            uuid.UUID
	ProfileID     uuid.UUID
	CurrentStreak int
	LongestStreak int
	TotalWorkouts int
	TotalMinutes  float64
	LastWorkoutAt *time.Time
	UpdatedAt     time.Time
}

type Achievement struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	Code      string
	Title     string
	EarnedAt  time.Time
}
