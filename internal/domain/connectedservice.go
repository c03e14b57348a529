package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConnectedService is one third-party integration (wearable, activity
// tracker). Credentials are plaintext in the domain model and sealed by the
// repository before they touch storage.
type ConnectedService struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Provider    string
	Credentials Credentials
	Permissions []string
	SyncStatus  SyncStatus
	Active      bool
	Paused      bool
	ConnectedAt time.Time
	UpdatedAt   time.Time
}

type Credentials struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type SyncStatus struct {
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	Error         *SyncError `json:"error,omitempty"`
}

type SyncError struct {
	Message    string     `json:"message"`
	OccurredAt time.Time  `json:"occurred_at"`
	ClearedAt  *time.Time `json:"cleared_at,omitempty"`
}
