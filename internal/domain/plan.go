package domain

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanPaused    PlanStatus = "paused"
	PlanCompleted PlanStatus = "completed"
)

// FitnessPlan is a multi-week structured plan. At most one plan per user is
// active at a time; the activate use-case enforces that, not storage.
type FitnessPlan struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Status      PlanStatus
	Goals       []FitnessGoal
	Constraints TrainingConstraints
	Position    PlanPosition
	Weeks       []PlanWeek
	StartedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlanPosition points at the next workout due: 1-based week and day.
type PlanPosition struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

type PlanWeek struct {
	Number   int              `json:"number"`
	Focus    string           `json:"focus,omitempty"`
	Workouts []PlannedWorkout `json:"workouts"`
}

type PlannedWorkout struct {
	Day             int               `json:"day"`
	Title           string            `json:"title"`
	DurationMinutes float64           `json:"duration_minutes"`
	Activities      []PlannedActivity `json:"activities,omitempty"`
}

type PlannedActivity struct {
	Name            string  `json:"name"`
	Sets            int     `json:"sets,omitempty"`
	Reps            int     `json:"reps,omitempty"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
}

// Advance moves the position pointer past the workout at (week, day).
// Returns true when the plan ran off its last week, i.e. it is finished.
func (p *FitnessPlan) Advance() bool {
	week := p.Position.Week
	if week < 1 || week > len(p.Weeks) {
		return true
	}
	current := p.Weeks[week-1]
	next := -1
	for _, w := range current.Workouts {
		if w.Day > p.Position.Day && (next == -1 || w.Day < next) {
			next = w.Day
		}
	}
	if next != -1 {
		p.Position.Day = next
		return false
	}
	for i := week; i < len(p.Weeks); i++ {
		if len(p.Weeks[i].Workouts) > 0 {
			p.Position.Week = p.Weeks[i].Number
			p.Position.Day = p.Weeks[i].Workouts[0].Day
			return false
		}
	}
	return true
}
