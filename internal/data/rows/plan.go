package rows

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FitnessPlan struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Goals       datatypes.JSON `gorm:"column:goals;type:jsonb" json:"goals"`
	Constraints datatypes.JSON `gorm:"column:constraints;type:jsonb" json:"constraints"`
	Weeks       datatypes.JSON `gorm:"column:weeks;type:jsonb" json:"weeks"`
	CurrentWeek int            `gorm:"column:current_week;not null;default:1" json:"current_week"`
	CurrentDay  int            `gorm:"column:current_day;not null;default:1" json:"current_day"`
	StartedAt   *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (FitnessPlan) TableName() string { return "fitness_plan" }
