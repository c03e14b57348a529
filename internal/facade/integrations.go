package facade

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/usecase"
)

type Integrations struct {
	UserID     uuid.UUID
	Connect    *usecase.ConnectService
	Disconnect *usecase.DisconnectService
	Pause      *usecase.PauseService
	Sync       *usecase.SyncServiceData
	List       *usecase.ListServices
}

func (f *Integrations) Call(ctx context.Context, method string, payload json.RawMessage) Result {
	switch method {
	case "connect":
		return run(ctx, payload,
			func(in *usecase.ConnectServiceInput) { in.UserID = f.UserID },
			f.Connect.Execute)
	case "disconnect":
		var in usecase.DisconnectServiceInput
		if err := decode(payload, &in); err != nil {
			return badPayload(err)
		}
		in.UserID = f.UserID
		if err := f.Disconnect.Execute(ctx, in); err != nil {
			return Fail(err)
		}
		return OK(map[string]string{"provider": in.Provider, "status": "disconnected"})
	case "pause":
		return run(ctx, payload,
			func(in *usecase.PauseServiceInput) { in.UserID = f.UserID },
			f.Pause.Execute)
	case "sync":
		return run(ctx, payload,
			func(in *usecase.SyncServiceDataInput) { in.UserID = f.UserID },
			f.Sync.Execute)
	case "list":
		return run(ctx, payload,
			func(in *usecase.ListServicesInput) { in.UserID = f.UserID },
			f.List.Execute)
	default:
		return unknownMethod("integrations", method)
	}
}
