package facade

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/usecase"
)

// Profile serves the identity and stats operations for one authenticated
// user. The user id comes from the actor, never from the payload.
type Profile struct {
	UserID            uuid.UUID
	SignUp            *usecase.SignUp
	GetProfile        *usecase.GetProfile
	UpdateGoals       *usecase.UpdateGoals
	UpdatePreferences *usecase.UpdatePreferences
	UpdateConstraints *usecase.UpdateConstraints
	GetStats          *usecase.GetStats
}

func (f *Profile) Call(ctx context.Context, method string, payload json.RawMessage) Result {
	switch method {
	case "sign_up":
		return run(ctx, payload,
			func(in *usecase.SignUpInput) { in.UserID = f.UserID },
			f.SignUp.Execute)
	case "get":
		p, err := f.GetProfile.Execute(ctx, f.UserID)
		if err != nil {
			return Fail(err)
		}
		return OK(p)
	case "update_goals":
		return run(ctx, payload,
			func(in *usecase.UpdateGoalsInput) { in.UserID = f.UserID },
			f.UpdateGoals.Execute)
	case "update_preferences":
		return run(ctx, payload,
			func(in *usecase.UpdatePreferencesInput) { in.UserID = f.UserID },
			f.UpdatePreferences.Execute)
	case "update_constraints":
		return run(ctx, payload,
			func(in *usecase.UpdateConstraintsInput) { in.UserID = f.UserID },
			f.UpdateConstraints.Execute)
	case "stats":
		s, err := f.GetStats.Execute(ctx, f.UserID)
		if err != nil {
			return Fail(err)
		}
		return OK(s)
	default:
		return unknownMethod("profile", method)
	}
}
