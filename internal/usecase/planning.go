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
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/services"
)

type GeneratePlanInput struct {
	UserID uuid.UUID `json:"user_id"`
	Title  string    `json:"title,omitempty"`
	Weeks  int       `json:"weeks,omitempty"`
}

// GeneratePlanFromGoals builds a draft plan from the profile's goals and
// constraints. The week structure is deterministic; the AI coach only
// contributes focus lines, and its failure degrades to defaults.
type GeneratePlanFromGoals struct {
	Profiles repos.ProfileRepo
	Plans    repos.PlanRepo
	AI       services.CoachAI
	Log      *logger.Logger
}

func (uc *GeneratePlanFromGoals) Execute(ctx context.Context, in GeneratePlanInput) (*domain.FitnessPlan, error) {
	p, err := uc.Profiles.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	weeksCount := in.Weeks
	if weeksCount <= 0 {
		weeksCount = 4
	}
	daysPerWeek := p.Constraints.DaysPerWeek
	if daysPerWeek <= 0 {
		daysPerWeek = 3
	}
	if daysPerWeek > 7 {
		daysPerWeek = 7
	}
	minutes := p.Constraints.MinutesPerSession
	if minutes <= 0 {
		minutes = 45
	}

	now := time.Now().UTC()
	plan := &domain.FitnessPlan{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Title:       in.Title,
		Status:      domain.PlanDraft,
		Goals:       p.Goals,
		Constraints: p.Constraints,
		Position:    domain.PlanPosition{Week: 1, Day: 1},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if plan.Title == "" {
		plan.Title = fmt.Sprintf("%d-week plan", weeksCount)
	}

	focuses := uc.weekFocuses(ctx, p, weeksCount)
	for week := 1; week <= weeksCount; week++ {
		w := domain.PlanWeek{Number: week, Focus: focuses[week-1]}
		for session := 0; session < daysPerWeek; session++ {
			day := 1 + session*(7/daysPerWeek)
			w.Workouts = append(w.Workouts, domain.PlannedWorkout{
				Day:             day,
				Title:           sessionTitle(p, session),
				DurationMinutes: minutes,
			})
		}
		plan.Weeks = append(plan.Weeks, w)
	}

	if err := uc.Plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *GeneratePlanFromGoals) weekFocuses(ctx context.Context, p *domain.UserProfile, weeks int) []string {
	defaults := make([]string, weeks)
	for i := range defaults {
		switch {
		case i == 0:
			defaults[i] = "adaptation"
		case i == weeks-1:
			defaults[i] = "consolidation"
		default:
			defaults[i] = "progression"
		}
	}
	if uc.AI == nil {
		return defaults
	}
	resp, err := uc.AI.Complete(ctx, services.CompletionRequest{
		System: "You are a fitness coach. Answer with one short focus phrase per line, nothing else.",
		Messages: []services.CompletionMessage{{
			Role:    "user",
			Content: fmt.Sprintf("Give %d week focuses for a %s athlete training %d days/week.", weeks, p.Experience, p.Constraints.DaysPerWeek),
		}},
		MaxTokens: 120,
	})
	if err != nil {
		uc.Log.Warn("plan focus generation degraded to defaults", "error", err)
		return defaults
	}
	lines := strings.Split(strings.TrimSpace(resp.Content), "\n")
	for i := 0; i < weeks && i < len(lines); i++ {
		if focus := strings.TrimSpace(lines[i]); focus != "" {
			defaults[i] = focus
		}
	}
	return defaults
}

func sessionTitle(p *domain.UserProfile, session int) string {
	if len(p.Preferences.PreferredActivities) > 0 {
		name := p.Preferences.PreferredActivities[session%len(p.Preferences.PreferredActivities)]
		if name != "" {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	titles := []string{"Full body A", "Full body B", "Conditioning", "Mobility"}
	return titles[session%len(titles)]
}

type ActivatePlanInput struct {
	UserID uuid.UUID `json:"user_id"`
	PlanID uuid.UUID `json:"plan_id"`
}

// ActivatePlan enforces the one-active-plan invariant: any currently
// active plan is paused before the target becomes active. Storage does not
// enforce this; the actor's single-writer model makes the check-then-write
// race-free.
type ActivatePlan struct {
	Plans repos.PlanRepo
}

func (uc *ActivatePlan) Execute(ctx context.Context, in ActivatePlanInput) (*domain.FitnessPlan, error) {
	plan, err := uc.Plans.FindByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != in.UserID {
		return nil, apperr.NotFound("plan")
	}
	if plan.Status == domain.PlanActive {
		return plan, nil
	}

	current, err := uc.Plans.FindActiveByUserID(ctx, in.UserID)
	switch {
	case err == nil:
		current.Status = domain.PlanPaused
		current.UpdatedAt = time.Now().UTC()
		if err := uc.Plans.Save(ctx, current); err != nil {
			return nil, err
		}
	case apperr.Is(err, apperr.KindNotFound):
		// nothing active yet
	default:
		return nil, err
	}

	now := time.Now().UTC()
	plan.Status = domain.PlanActive
	plan.UpdatedAt = now
	if plan.StartedAt == nil {
		plan.StartedAt = &now
	}
	if plan.Position.Week == 0 {
		plan.Position = domain.PlanPosition{Week: 1, Day: 1}
	}
	if err := uc.Plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

type PausePlanInput struct {
	UserID uuid.UUID `json:"user_id"`
	PlanID uuid.UUID `json:"plan_id"`
}

type PausePlan struct {
	Plans repos.PlanRepo
}

func (uc *PausePlan) Execute(ctx context.Context, in PausePlanInput) (*domain.FitnessPlan, error) {
	plan, err := uc.Plans.FindByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != in.UserID {
		return nil, apperr.NotFound("plan")
	}
	if plan.Status != domain.PlanActive {
		return nil, apperr.Newf(apperr.KindConflict, "plan is %s, only active plans can be paused", plan.Status)
	}
	plan.Status = domain.PlanPaused
	plan.UpdatedAt = time.Now().UTC()
	if err := uc.Plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

type AdjustPlanInput struct {
	UserID            uuid.UUID `json:"user_id"`
	PlanID            uuid.UUID `json:"plan_id"`
	DaysPerWeek       *int      `json:"days_per_week,omitempty"`
	MinutesPerSession *float64  `json:"minutes_per_session,omitempty"`
}

// AdjustPlan updates the constraint snapshot and rescales workouts in the
// weeks the user has not reached yet; completed weeks stay untouched.
type AdjustPlan struct {
	Plans repos.PlanRepo
}

func (uc *AdjustPlan) Execute(ctx context.Context, in AdjustPlanInput) (*domain.FitnessPlan, error) {
	plan, err := uc.Plans.FindByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != in.UserID {
		return nil, apperr.NotFound("plan")
	}
	if in.DaysPerWeek != nil {
		plan.Constraints.DaysPerWeek = *in.DaysPerWeek
	}
	if in.MinutesPerSession != nil {
		plan.Constraints.MinutesPerSession = *in.MinutesPerSession
		for wi := range plan.Weeks {
			if plan.Weeks[wi].Number < plan.Position.Week {
				continue
			}
			for di := range plan.Weeks[wi].Workouts {
				plan.Weeks[wi].Workouts[di].DurationMinutes = *in.MinutesPerSession
			}
		}
	}
	plan.UpdatedAt = time.Now().UTC()
	if err := uc.Plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

type GetActivePlan struct {
	Plans repos.PlanRepo
}

func (uc *GetActivePlan) Execute(ctx context.Context, userID uuid.UUID) (*domain.FitnessPlan, error) {
	return uc.Plans.FindActiveByUserID(ctx, userID)
}
