package actor

import (
	"github.com/pulsefit/coach-backend/internal/facade"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
)

// Facade resolves a wire facade name to its caller. Unknown names are a
// caller error, not a panic.
func (d *Deps) Facade(name string) (facade.Caller, error) {
	switch name {
	case "profile":
		return d.ProfileFacade(), nil
	case "planning":
		return d.PlanningFacade(), nil
	case "workouts":
		return d.WorkoutsFacade(), nil
	case "coaching":
		return d.CoachingFacade(), nil
	case "integrations":
		return d.IntegrationsFacade(), nil
	default:
		return nil, apperr.Newf(apperr.KindValidation, "unknown facade %q", name)
	}
}

func (d *Deps) ProfileFacade() *facade.Profile {
	return &facade.Profile{
		UserID:            d.UserID,
		SignUp:            d.SignUp(),
		GetProfile:        d.GetProfile(),
		UpdateGoals:       d.UpdateGoals(),
		UpdatePreferences: d.UpdatePreferences(),
		UpdateConstraints: d.UpdateConstraints(),
		GetStats:          d.GetStats(),
	}
}

func (d *Deps) PlanningFacade() *facade.Planning {
	return &facade.Planning{
		UserID:        d.UserID,
		Generate:      d.GeneratePlanFromGoals(),
		Activate:      d.ActivatePlan(),
		Pause:         d.PausePlan(),
		Adjust:        d.AdjustPlan(),
		GetActivePlan: d.GetActivePlan(),
	}
}

func (d *Deps) WorkoutsFacade() *facade.Workouts {
	return &facade.Workouts{
		UserID:     d.UserID,
		Start:      d.StartWorkout(),
		Complete:   d.CompleteWorkout(),
		Skip:       d.SkipWorkout(),
		React:      d.ReactToWorkout(),
		ListRecent: d.ListRecentWorkouts(),
	}
}

func (d *Deps) CoachingFacade() *facade.Coaching {
	return &facade.Coaching{
		UserID:           d.UserID,
		SendMessage:      d.SendCoachMessage(),
		RespondToCheckIn: d.RespondToCheckIn(),
		GetConversation:  d.GetConversation(),
	}
}

func (d *Deps) IntegrationsFacade() *facade.Integrations {
	return &facade.Integrations{
		UserID:     d.UserID,
		Connect:    d.ConnectService(),
		Disconnect: d.DisconnectService(),
		Pause:      d.PauseService(),
		Sync:       d.SyncServiceData(),
		List:       d.ListServices(),
	}
}
