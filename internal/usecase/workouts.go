package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/data/repos"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/services"
)

type StartWorkoutInput struct {
	UserID uuid.UUID `json:"user_id"`
}

type StartedWorkout struct {
	WorkoutID  uuid.UUID  `json:"workout_id"`
	Title      string     `json:"title"`
	PlanID     *uuid.UUID `json:"plan_id,omitempty"`
	WeekNumber *int       `json:"week_number,omitempty"`
	DayNumber  *int       `json:"day_number,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
}

// StartWorkout resolves what is due from the active plan's position. With
// no active plan it starts an unlinked ad-hoc session.
type StartWorkout struct {
	Plans repos.PlanRepo
	Bus   services.EventBus
	Log   *logger.Logger
}

func (uc *StartWorkout) Execute(ctx context.Context, in StartWorkoutInput) (*StartedWorkout, error) {
	started := &StartedWorkout{
		WorkoutID: uuid.New(),
		Title:     "Workout",
		StartedAt: time.Now().UTC(),
	}
	plan, err := uc.Plans.FindActiveByUserID(ctx, in.UserID)
	switch {
	case err == nil:
		week, day := plan.Position.Week, plan.Position.Day
		started.PlanID = &plan.ID
		started.WeekNumber = &week
		started.DayNumber = &day
		if week >= 1 && week <= len(plan.Weeks) {
			for _, w := range plan.Weeks[week-1].Workouts {
				if w.Day == day {
					started.Title = w.Title
					break
				}
			}
		}
	case apperr.Is(err, apperr.KindNotFound):
		// ad-hoc workout
	default:
		return nil, err
	}

	publishEvent(ctx, uc.Bus, uc.Log, services.Event{
		Type:       "workout.started",
		UserID:     in.UserID,
		Payload:    started,
		OccurredAt: started.StartedAt,
	})
	return started, nil
}

type CompleteWorkoutInput struct {
	UserID       uuid.UUID                    `json:"user_id"`
	WorkoutID    uuid.UUID                    `json:"workout_id,omitempty"`
	Title        string                       `json:"title"`
	PlanID       *uuid.UUID                   `json:"plan_id,omitempty"`
	WeekNumber   *int                         `json:"week_number,omitempty"`
	DayNumber    *int                         `json:"day_number,omitempty"`
	Performance  domain.PerformanceSnapshot   `json:"performance"`
	Verification *domain.VerificationSnapshot `json:"verification,omitempty"`
}

// CompleteWorkout persists the performance record, rolls the profile stats
// forward, advances the linked plan's position and refreshes the coach
// context snapshot.
type CompleteWorkout struct {
	Workouts      repos.WorkoutRepo
	Profiles      repos.ProfileRepo
	Plans         repos.PlanRepo
	Conversations repos.ConversationRepo
	Bus           services.EventBus
	Log           *logger.Logger
}

func (uc *CompleteWorkout) Execute(ctx context.Context, in CompleteWorkoutInput) (*domain.CompletedWorkout, error) {
	now := time.Now().UTC()
	w := &domain.CompletedWorkout{
		ID:           in.WorkoutID,
		UserID:       in.UserID,
		PlanID:       in.PlanID,
		WeekNumber:   in.WeekNumber,
		DayNumber:    in.DayNumber,
		Title:        in.Title,
		Performance:  in.Performance,
		Verification: in.Verification,
		CompletedAt:  now,
		CreatedAt:    now,
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Title == "" {
		w.Title = "Workout"
	}
	if err := uc.Workouts.Save(ctx, w); err != nil {
		return nil, err
	}

	if err := uc.rollStats(ctx, in.UserID, w); err != nil {
		return nil, err
	}
	if w.PlanID != nil {
		if err := uc.advancePlan(ctx, *w.PlanID); err != nil {
			return nil, err
		}
	}
	uc.refreshCoachContext(ctx, in.UserID, w)

	publishEvent(ctx, uc.Bus, uc.Log, services.Event{
		Type:       "workout.completed",
		UserID:     in.UserID,
		Payload:    map[string]any{"workout_id": w.ID, "title": w.Title},
		OccurredAt: now,
	})
	return w, nil
}

func (uc *CompleteWorkout) rollStats(ctx context.Context, userID uuid.UUID, w *domain.CompletedWorkout) error {
	p, err := uc.Profiles.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if p.Stats == nil {
		p.Stats = &domain.ProfileStats{ID: uuid.New(), ProfileID: p.ID}
	}
	stats := p.Stats
	stats.TotalWorkouts++
	stats.TotalMinutes += w.Performance.TotalDurationMinutes

	// Streak: consecutive calendar days with at least one workout.
	day := w.CompletedAt.Truncate(24 * time.Hour)
	switch {
	case stats.LastWorkoutAt == nil:
		stats.CurrentStreak = 1
	case day.Sub(stats.LastWorkoutAt.Truncate(24*time.Hour)) == 24*time.Hour:
		stats.CurrentStreak++
	case day.Equal(stats.LastWorkoutAt.Truncate(24 * time.Hour)):
		// same day, streak unchanged
	default:
		stats.CurrentStreak = 1
	}
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	completedAt := w.CompletedAt
	stats.LastWorkoutAt = &completedAt
	stats.UpdatedAt = time.Now().UTC()

	uc.grantAchievements(p)
	return uc.Profiles.Save(ctx, p)
}

func (uc *CompleteWorkout) grantAchievements(p *domain.UserProfile) {
	grant := func(code, title string) {
		for _, a := range p.Achievements {
			if a.Code == code {
				return
			}
		}
		p.Achievements = append(p.Achievements, domain.Achievement{
			ID:        uuid.New(),
			ProfileID: p.ID,
			Code:      code,
			Title:     title,
			EarnedAt:  time.Now().UTC(),
		})
	}
	if p.Stats.TotalWorkouts >= 1 {
		grant("first_workout", "First workout")
	}
	if p.Stats.TotalWorkouts >= 10 {
		grant("ten_workouts", "10 workouts")
	}
	if p.Stats.CurrentStreak >= 7 {
		grant("streak_7", "7-day streak")
	}
}

func (uc *CompleteWorkout) advancePlan(ctx context.Context, planID uuid.UUID) error {
	plan, err := uc.Plans.FindByID(ctx, planID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if plan.Advance() {
		plan.Status = domain.PlanCompleted
	}
	plan.UpdatedAt = time.Now().UTC()
	return uc.Plans.Save(ctx, plan)
}

// refreshCoachContext is best-effort: a missing conversation or a failed
// save must not fail the workout itself.
func (uc *CompleteWorkout) refreshCoachContext(ctx context.Context, userID uuid.UUID, w *domain.CompletedWorkout) {
	conv, err := uc.Conversations.FindByUserID(ctx, userID)
	if err != nil {
		return
	}
	recent := append([]string{w.Title}, conv.Context.RecentWorkouts...)
	if len(recent) > 5 {
		recent = recent[:5]
	}
	conv.Context.RecentWorkouts = recent
	completedAt := w.CompletedAt
	conv.Context.LastWorkoutAt = &completedAt
	conv.UpdatedAt = time.Now().UTC()
	if err := uc.Conversations.Save(ctx, conv); err != nil {
		uc.Log.Warn("coach context refresh failed", "error", err)
	}
}

type SkipWorkoutInput struct {
	UserID uuid.UUID `json:"user_id"`
}

// SkipWorkout advances the active plan's position without a performance
// record.
type SkipWorkout struct {
	Plans repos.PlanRepo
}

func (uc *SkipWorkout) Execute(ctx context.Context, in SkipWorkoutInput) (*domain.FitnessPlan, error) {
	plan, err := uc.Plans.FindActiveByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if plan.Advance() {
		plan.Status = domain.PlanCompleted
	}
	plan.UpdatedAt = time.Now().UTC()
	if err := uc.Plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

type ReactToWorkoutInput struct {
	UserID    uuid.UUID `json:"user_id"`
	WorkoutID uuid.UUID `json:"workout_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Emoji     string    `json:"emoji"`
}

type ReactToWorkout struct {
	Workouts repos.WorkoutRepo
}

func (uc *ReactToWorkout) Execute(ctx context.Context, in ReactToWorkoutInput) (*domain.CompletedWorkout, error) {
	w, err := uc.Workouts.FindByID(ctx, in.WorkoutID)
	if err != nil {
		return nil, err
	}
	if w.UserID != in.UserID {
		return nil, apperr.NotFound("workout")
	}
	author := in.AuthorID
	if author == uuid.Nil {
		author = in.UserID
	}
	w.Reactions = append(w.Reactions, domain.Reaction{
		ID:        uuid.New(),
		WorkoutID: w.ID,
		AuthorID:  author,
		Emoji:     in.Emoji,
		CreatedAt: time.Now().UTC(),
	})
	if err := uc.Workouts.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

type ListRecentWorkoutsInput struct {
	UserID uuid.UUID `json:"user_id"`
	Limit  int       `json:"limit,omitempty"`
}

type ListRecentWorkouts struct {
	Workouts repos.WorkoutRepo
}

func (uc *ListRecentWorkouts) Execute(ctx context.Context, in ListRecentWorkoutsInput) ([]*domain.CompletedWorkout, error) {
	return uc.Workouts.FindRecentByUserID(ctx, in.UserID, in.Limit)
}

func publishEvent(ctx context.Context, bus services.EventBus, log *logger.Logger, ev services.Event) {
	if err := bus.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed", "event", ev.Type, "error", err)
	}
}
