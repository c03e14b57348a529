package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefit/coach-backend/internal/data/repos"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/services"
)

// IntegrationClients resolves a provider name to its client. Unknown
// providers yield an upstream error so the caller never dereferences nil.
type IntegrationClients map[string]services.IntegrationClient

func (m IntegrationClients) For(provider string) (services.IntegrationClient, error) {
	c, ok := m[strings.ToLower(provider)]
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, "unknown provider %q", provider)
	}
	return c, nil
}

type ConnectServiceInput struct {
	UserID   uuid.UUID `json:"user_id"`
	Provider string    `json:"provider"`
	AuthCode string    `json:"auth_code"`
}

// ConnectService exchanges the OAuth code, stores the sealed credentials and
// marks the service active. Reconnecting an existing provider replaces its
// credentials and clears any previous sync error.
type ConnectService struct {
	Services repos.ConnectedServiceRepo
	Clients  IntegrationClients
	Bus      services.EventBus
	Log      *logger.Logger
}

func (uc *ConnectService) Execute(ctx context.Context, in ConnectServiceInput) (*domain.ConnectedService, error) {
	client, err := uc.Clients.For(in.Provider)
	if err != nil {
		return nil, err
	}
	creds, err := client.ExchangeAuthCode(ctx, in.AuthCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	svc, err := uc.Services.FindByProvider(ctx, in.UserID, client.Provider())
	switch {
	case err == nil:
		svc.Credentials = *creds
		svc.Active = true
		svc.Paused = false
		if svc.SyncStatus.Error != nil && svc.SyncStatus.Error.ClearedAt == nil {
			svc.SyncStatus.Error.ClearedAt = &now
		}
	case apperr.Is(err, apperr.KindNotFound):
		svc = &domain.ConnectedService{
			ID:          uuid.New(),
			UserID:      in.UserID,
			Provider:    client.Provider(),
			Credentials: *creds,
			Permissions: []string{"read_activities", "read_profile"},
			Active:      true,
			ConnectedAt: now,
		}
	default:
		return nil, err
	}
	svc.UpdatedAt = now
	if err := uc.Services.Save(ctx, svc); err != nil {
		return nil, err
	}

	publishEvent(ctx, uc.Bus, uc.Log, services.Event{
		Type:       "integration.connected",
		UserID:     in.UserID,
		Payload:    map[string]any{"provider": svc.Provider},
		OccurredAt: now,
	})
	return svc, nil
}

type DisconnectServiceInput struct {
	UserID   uuid.UUID `json:"user_id"`
	Provider string    `json:"provider"`
}

type DisconnectService struct {
	Services repos.ConnectedServiceRepo
	Bus      services.EventBus
	Log      *logger.Logger
}

func (uc *DisconnectService) Execute(ctx context.Context, in DisconnectServiceInput) error {
	if _, err := uc.Services.FindByProvider(ctx, in.UserID, in.Provider); err != nil {
		return err
	}
	if err := uc.Services.Delete(ctx, in.UserID, in.Provider); err != nil {
		return err
	}
	publishEvent(ctx, uc.Bus, uc.Log, services.Event{
		Type:       "integration.disconnected",
		UserID:     in.UserID,
		Payload:    map[string]any{"provider": in.Provider},
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

type PauseServiceInput struct {
	UserID   uuid.UUID `json:"user_id"`
	Provider string    `json:"provider"`
	Paused   bool      `json:"paused"`
}

// PauseService toggles syncing without touching credentials, so resuming
// needs no re-authorization.
type PauseService struct {
	Services repos.ConnectedServiceRepo
}

func (uc *PauseService) Execute(ctx context.Context, in PauseServiceInput) (*domain.ConnectedService, error) {
	svc, err := uc.Services.FindByProvider(ctx, in.UserID, in.Provider)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, apperr.Newf(apperr.KindConflict, "service %q is not active", in.Provider)
	}
	svc.Paused = in.Paused
	svc.UpdatedAt = time.Now().UTC()
	if err := uc.Services.Save(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

type SyncServiceDataInput struct {
	UserID   uuid.UUID `json:"user_id"`
	Provider string    `json:"provider"`
}

type SyncResult struct {
	Provider             string `json:"provider"`
	ImportedCount        int    `json:"imported_count"`
	CredentialsRefreshed bool   `json:"credentials_refreshed"`
}

// SyncServiceData pulls activities recorded since the last successful sync
// and imports them as verified workouts. Credentials are refreshed first if
// expired. Failures are recorded on the service's sync status before being
// returned, so the condition is visible without re-running the sync.
type SyncServiceData struct {
	Services repos.ConnectedServiceRepo
	Workouts repos.WorkoutRepo
	Clients  IntegrationClients
	Bus      services.EventBus
	Log      *logger.Logger
}

func (uc *SyncServiceData) Execute(ctx context.Context, in SyncServiceDataInput) (*SyncResult, error) {
	svc, err := uc.Services.FindByProvider(ctx, in.UserID, in.Provider)
	if err != nil {
		return nil, err
	}
	if !svc.Active || svc.Paused {
		return nil, apperr.Newf(apperr.KindConflict, "service %q is not syncable", in.Provider)
	}
	client, err := uc.Clients.For(svc.Provider)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	svc.SyncStatus.LastAttemptAt = &now

	res, err := uc.sync(ctx, svc, client)
	if err != nil {
		svc.SyncStatus.Error = &domain.SyncError{Message: err.Error(), OccurredAt: time.Now().UTC()}
		svc.UpdatedAt = time.Now().UTC()
		if saveErr := uc.Services.Save(ctx, svc); saveErr != nil {
			uc.Log.Error("record sync failure", "provider", svc.Provider, "error", saveErr)
		}
		return nil, err
	}

	done := time.Now().UTC()
	svc.SyncStatus.LastSuccessAt = &done
	if svc.SyncStatus.Error != nil && svc.SyncStatus.Error.ClearedAt == nil {
		svc.SyncStatus.Error.ClearedAt = &done
	}
	svc.UpdatedAt = done
	if err := uc.Services.Save(ctx, svc); err != nil {
		return nil, err
	}

	if res.ImportedCount > 0 {
		publishEvent(ctx, uc.Bus, uc.Log, services.Event{
			Type:       "integration.synced",
			UserID:     in.UserID,
			Payload:    res,
			OccurredAt: done,
		})
	}
	return res, nil
}

func (uc *SyncServiceData) sync(ctx context.Context, svc *domain.ConnectedService, client services.IntegrationClient) (*SyncResult, error) {
	res := &SyncResult{Provider: svc.Provider}

	if exp := svc.Credentials.ExpiresAt; exp != nil && !exp.After(time.Now()) {
		if svc.Credentials.RefreshToken == "" {
			return nil, apperr.Newf(apperr.KindUpstream, "credentials expired and no refresh token")
		}
		creds, err := client.RefreshAccessToken(ctx, svc.Credentials.RefreshToken)
		if err != nil {
			return nil, err
		}
		svc.Credentials = *creds
		res.CredentialsRefreshed = true
	}

	since := svc.ConnectedAt
	if svc.SyncStatus.LastSuccessAt != nil {
		since = *svc.SyncStatus.LastSuccessAt
	}
	activities, err := client.GetActivitiesSince(ctx, svc.Credentials, since)
	if err != nil {
		return nil, err
	}

	for _, act := range activities {
		verifiedAt := time.Now().UTC()
		w := &domain.CompletedWorkout{
			ID:     uuid.New(),
			UserID: svc.UserID,
			Title:  act.Name,
			Performance: domain.PerformanceSnapshot{
				TotalDurationMinutes: act.DurationMinutes,
			},
			Verification: &domain.VerificationSnapshot{
				Source: svc.Provider,
				Signals: []domain.TrustSignal{
					{Kind: "external_id", Value: act.ExternalID, ObservedAt: verifiedAt},
				},
				VerifiedAt: verifiedAt,
			},
			CompletedAt: act.StartedAt,
			CreatedAt:   verifiedAt,
		}
		if w.Title == "" {
			w.Title = "Imported activity"
		}
		if err := uc.Workouts.Save(ctx, w); err != nil {
			return nil, err
		}
		res.ImportedCount++
	}
	return res, nil
}

type ListServicesInput struct {
	UserID uuid.UUID `json:"user_id"`
}

type ConnectedServiceView struct {
	Provider    string            `json:"provider"`
	Active      bool              `json:"active"`
	Paused      bool              `json:"paused"`
	Permissions []string          `json:"permissions,omitempty"`
	SyncStatus  domain.SyncStatus `json:"sync_status"`
	ConnectedAt time.Time         `json:"connected_at"`
}

// ListServices lists connections without their credentials.
type ListServices struct {
	Services repos.ConnectedServiceRepo
}

func (uc *ListServices) Execute(ctx context.Context, in ListServicesInput) ([]ConnectedServiceView, error) {
	list, err := uc.Services.ListByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]ConnectedServiceView, 0, len(list))
	for _, svc := range list {
		out = append(out, ConnectedServiceView{
			Provider:    svc.Provider,
			Active:      svc.Active,
			Paused:      svc.Paused,
			Permissions: svc.Permissions,
			SyncStatus:  svc.SyncStatus,
			ConnectedAt: svc.ConnectedAt,
		})
	}
	return out, nil
}
