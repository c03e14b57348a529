package mappers

import (
	"fmt"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
)

// ServiceToRow maps a connected service; sealedCredentials is the already
// encrypted credential blob. Sealing happens in the repository so this
// stays a pure conversion.
func ServiceToRow(s *domain.ConnectedService, sealedCredentials []byte) (*rows.ConnectedService, error) {
	perms, err := marshalJSON(s.Permissions)
	if err != nil {
		return nil, fmt.Errorf("marshal permissions: %w", err)
	}
	row := &rows.ConnectedService{
		ID:            s.ID,
		UserID:        s.UserID,
		Provider:      s.Provider,
		Credentials:   sealedCredentials,
		Permissions:   perms,
		LastAttemptAt: s.SyncStatus.LastAttemptAt,
		LastSuccessAt: s.SyncStatus.LastSuccessAt,
		Active:        s.Active,
		Paused:        s.Paused,
		ConnectedAt:   s.ConnectedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.SyncStatus.Error != nil {
		syncErr, err := marshalJSON(s.SyncStatus.Error)
		if err != nil {
			return nil, fmt.Errorf("marshal sync error: %w", err)
		}
		row.SyncError = syncErr
	}
	return row, nil
}

// ServiceToDomain maps back; creds is the already-opened credential value.
func ServiceToDomain(r *rows.ConnectedService, creds domain.Credentials) (*domain.ConnectedService, error) {
	s := &domain.ConnectedService{
		ID:          r.ID,
		UserID:      r.UserID,
		Provider:    r.Provider,
		Credentials: creds,
		SyncStatus: domain.SyncStatus{
			LastAttemptAt: r.LastAttemptAt,
			LastSuccessAt: r.LastSuccessAt,
		},
		Active:      r.Active,
		Paused:      r.Paused,
		ConnectedAt: r.ConnectedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := unmarshalJSON(r.Permissions, &s.Permissions); err != nil {
		return nil, fmt.Errorf("unmarshal permissions: %w", err)
	}
	if len(r.SyncError) > 0 {
		var se domain.SyncError
		if err := unmarshalJSON(r.SyncError, &se); err != nil {
			return nil, fmt.Errorf("unmarshal sync error: %w", err)
		}
		s.SyncStatus.Error = &se
	}
	return s, nil
}
