package facade

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/usecase"
)

type Workouts struct {
	UserID     uuid.UUID
	Start      *usecase.StartWorkout
	Complete   *usecase.CompleteWorkout
	Skip       *usecase.SkipWorkout
	React      *usecase.ReactToWorkout
	ListRecent *usecase.ListRecentWorkouts
}

func (f *Workouts) Call(ctx context.Context, method string, payload json.RawMessage) Result {
	switch method {
	case "start":
		return run(ctx, payload,
			func(in *usecase.StartWorkoutInput) { in.UserID = f.UserID },
			f.Start.Execute)
	case "complete":
		return run(ctx, payload,
			func(in *usecase.CompleteWorkoutInput) { in.UserID = f.UserID },
			f.Complete.Execute)
	case "skip":
		return run(ctx, payload,
			func(in *usecase.SkipWorkoutInput) { in.UserID = f.UserID },
			f.Skip.Execute)
	case "react":
		return run(ctx, payload,
			func(in *usecase.ReactToWorkoutInput) { in.UserID = f.UserID },
			f.React.Execute)
	case "list_recent":
		return run(ctx, payload,
			func(in *usecase.ListRecentWorkoutsInput) { in.UserID = f.UserID },
			f.ListRecent.Execute)
	default:
		return unknownMethod("workouts", method)
	}
}
