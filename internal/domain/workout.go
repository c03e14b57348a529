package domain

import (
	"time"

	"github.com/google/uuid"
)

// CompletedWorkout is immutable once persisted; a re-save replaces the row
// wholesale. Reactions are an independently owned child collection.
type CompletedWorkout struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	PlanID     *uuid.UUID
	WeekNumber *int
	DayNumber  *int
	Title      string

	Performance  PerformanceSnapshot
	Verification *VerificationSnapshot
	Reactions    []Reaction

	CompletedAt time.Time
	CreatedAt   time.Time
}

type PerformanceSnapshot struct {
	Activities           []PerformedActivity `json:"activities"`
	TotalDurationMinutes float64             `json:"total_duration_minutes"`
	PerceivedEffort      *int                `json:"perceived_effort,omitempty"`
	Notes                string              `json:"notes,omitempty"`
}

type PerformedActivity struct {
	Name            string         `json:"name"`
	Sets            []PerformedSet `json:"sets,omitempty"`
	DurationMinutes float64        `json:"duration_minutes"`
}

type PerformedSet struct {
	Reps     int      `json:"reps"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// VerificationSnapshot carries the trust signals recorded when a workout is
// verified. VerifiedAt is projected into its own storage column.
type VerificationSnapshot struct {
	Source     string        `json:"source"`
	Signals    []TrustSignal `json:"signals,omitempty"`
	VerifiedAt time.Time     `json:"-"`
}

type TrustSignal struct {
	Kind       string    `json:"kind"`
	Value      string    `json:"value,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

type Reaction struct {
	ID        uuid.UUID
	WorkoutID uuid.UUID
	AuthorID  uuid.UUID
	Emoji     string
	CreatedAt time.Time
}
