package rows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConnectedService stores credentials as a sealed blob; only the repository
// holding the secretbox key can read them back.
type ConnectedService struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index:idx_connected_service_user_provider,unique;not null;column:user_id" json:"user_id"`
	Provider      string         `gorm:"index:idx_connected_service_user_provider,unique;not null;column:provider" json:"provider"`
	Credentials   []byte         `gorm:"column:credentials;not null" json:"-"`
	Permissions   datatypes.JSON `gorm:"column:permissions;type:jsonb" json:"permissions"`
	SyncError     datatypes.JSON `gorm:"column:sync_error;type:jsonb" json:"sync_error,omitempty"`
	LastAttemptAt *time.Time     `gorm:"column:last_attempt_at" json:"last_attempt_at,omitempty"`
	LastSuccessAt *time.Time     `gorm:"column:last_success_at" json:"last_success_at,omitempty"`
	Active        bool           `gorm:"column:active;not null;default:true" json:"active"`
	Paused        bool           `gorm:"column:paused;not null;default:false" json:"paused"`
	ConnectedAt   time.Time      `gorm:"column:connected_at;not null" json:"connected_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (ConnectedService) TableName() string { return "connected_service" }
