// Package usecase holds one application operation per type. Every use-case
// exposes a single Execute method; wiring is done once by the actor's
// use-case factory and composition gaps are construction-time defects.
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

type SignUpInput struct {
	UserID      uuid.UUID              `json:"user_id"`
	DisplayName string                 `json:"display_name"`
	Email       string                 `json:"email"`
	Experience  domain.ExperienceLevel `json:"experience"`
}

type SignUp struct {
	Profiles repos.ProfileRepo
	Bus      services.EventBus
	Log      *logger.Logger
}

func (uc *SignUp) Execute(ctx context.Context, in SignUpInput) (*domain.UserProfile, error) {
	if in.UserID == uuid.Nil {
		return nil, apperr.Newf(apperr.KindValidation, "missing user_id")
	}
	now := time.Now().UTC()
	profileID := uuid.New()
	p := &domain.UserProfile{
		ID:          profileID,
		UserID:      in.UserID,
		DisplayName: in.DisplayName,
		Email:       in.Email,
		Experience:  in.Experience,
		Stats: &domain.ProfileStats{
			ID:        uuid.New(),
			ProfileID: profileID,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Experience == "" {
		p.Experience = domain.ExperienceBeginner
	}
	if err := uc.Profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	uc.publish(ctx, "user.signed_up", in.UserID)
	return p, nil
}

func (uc *SignUp) publish(ctx context.Context, eventType string, userID uuid.UUID) {
	err := uc.Bus.Publish(ctx, services.Event{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		uc.Log.Warn("event publish failed", "event", eventType, "error", err)
	}
}

type GetProfile struct {
	Profiles repos.ProfileRepo
}

func (uc *GetProfile) Execute(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	return uc.Profiles.FindByUserID(ctx, userID)
}

type UpdateGoalsInput struct {
	UserID uuid.UUID            `json:"user_id"`
	Goals  []domain.FitnessGoal `json:"goals"`
}

type UpdateGoals struct {
	Profiles repos.ProfileRepo
}

func (uc *UpdateGoals) Execute(ctx context.Context, in UpdateGoalsInput) (*domain.UserProfile, error) {
	p, err := uc.Profiles.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	p.Goals = in.Goals
	p.UpdatedAt = time.Now().UTC()
	if err := uc.Profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdatePreferencesInput struct {
	UserID      uuid.UUID          `json:"user_id"`
	Preferences domain.Preferences `json:"preferences"`
}

type UpdatePreferences struct {
	Profiles repos.ProfileRepo
}

func (uc *UpdatePreferences) Execute(ctx context.Context, in UpdatePreferencesInput) (*domain.UserProfile, error) {
	p, err := uc.Profiles.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	p.Preferences = in.Preferences
	p.UpdatedAt = time.Now().UTC()
	if err := uc.Profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateConstraintsInput struct {
	UserID      uuid.UUID                  `json:"user_id"`
	Constraints domain.TrainingConstraints `json:"constraints"`
}

type UpdateConstraints struct {
	Profiles repos.ProfileRepo
}

func (uc *UpdateConstraints) Execute(ctx context.Context, in UpdateConstraintsInput) (*domain.UserProfile, error) {
	p, err := uc.Profiles.FindByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	p.Constraints = in.Constraints
	p.UpdatedAt = time.Now().UTC()
	if err := uc.Profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type GetStats struct {
	Profiles repos.ProfileRepo
}

func (uc *GetStats) Execute(ctx context.Context, userID uuid.UUID) (*domain.ProfileStats, error) {
	p, err := uc.Profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Stats == nil {
		return nil, apperr.NotFound("profile stats")
	}
	return p.Stats, nil
}
