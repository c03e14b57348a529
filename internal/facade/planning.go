package facade

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/usecase"
)

type Planning struct {
	UserID        uuid.UUID
	Generate      *usecase.GeneratePlanFromGoals
	Activate      *usecase.ActivatePlan
	Pause         *usecase.PausePlan
	Adjust        *usecase.AdjustPlan
	GetActivePlan *usecase.GetActivePlan
}

func (f *Planning) Call(ctx context.Context, method string, payload json.RawMessage) Result {
	switch method {
	case "generate":
		return run(ctx, payload,
			func(in *usecase.GeneratePlanInput) { in.UserID = f.UserID },
			f.Generate.Execute)
	case "activate":
		return run(ctx, payload,
			func(in *usecase.ActivatePlanInput) { in.UserID = f.UserID },
			f.Activate.Execute)
	case "pause":
		return run(ctx, payload,
			func(in *usecase.PausePlanInput) { in.UserID = f.UserID },
			f.Pause.Execute)
	case "adjust":
		return run(ctx, payload,
			func(in *usecase.AdjustPlanInput) { in.UserID = f.UserID },
			f.Adjust.Execute)
	case "active":
		plan, err := f.GetActivePlan.Execute(ctx, f.UserID)
		if err != nil {
			return Fail(err)
		}
		return OK(plan)
	default:
		return unknownMethod("planning", method)
	}
}
