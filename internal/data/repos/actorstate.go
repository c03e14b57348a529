package repos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

// ActorStateRepo is the actor's durable key-value store: small bits of
// per-user runtime state (active conversation id, last check-in time) that
// survive deactivation.
type ActorStateRepo interface {
	Get(ctx context.Context, userID uuid.UUID, key string, out any) error
	Put(ctx context.Context, userID uuid.UUID, key string, value any) error
}

type actorStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActorStateRepo(db *gorm.DB, baseLog *logger.Logger) ActorStateRepo {
	return &actorStateRepo{db: db, log: baseLog.With("repo", "ActorStateRepo")}
}

func (r *actorStateRepo) Get(ctx context.Context, userID uuid.UUID, key string, out any) error {
	var row rows.ActorState
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&row).Error; err != nil {
		return readErr(err, "actor state "+key)
	}
	if err := json.Unmarshal(row.Value, out); err != nil {
		return apperr.New(apperr.KindQuery, err)
	}
	return nil
}

func (r *actorStateRepo) Put(ctx context.Context, userID uuid.UUID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return writeErr(err)
	}
	row := rows.ActorState{
		UserID:    userID,
		Key:       key,
		Value:     datatypes.JSON(raw),
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}
