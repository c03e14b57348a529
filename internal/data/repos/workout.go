package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsefit/coach-backend/internal/data/mappers"
	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

type WorkoutRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CompletedWorkout, error)
	FindRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CompletedWorkout, error)
	// Save replaces the workout row wholesale and swaps the reaction
	// collection (delete then reinsert) inside the same transaction.
	Save(ctx context.Context, w *domain.CompletedWorkout) error
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

type workoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkoutRepo(db *gorm.DB, baseLog *logger.Logger) WorkoutRepo {
	return &workoutRepo{db: db, log: baseLog.With("repo", "WorkoutRepo")}
}

func (r *workoutRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.CompletedWorkout, error) {
	if id == uuid.Nil {
		return nil, apperr.Newf(apperr.KindQuery, "missing workout id")
	}
	var row rows.CompletedWorkout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, readErr(err, "workout")
	}
	reactions, err := r.reactionsFor(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return r.toDomain(&row, reactions)
}

func (r *workoutRepo) FindRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CompletedWorkout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []rows.CompletedWorkout
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, apperr.New(apperr.KindQuery, err)
	}
	out := make([]*domain.CompletedWorkout, 0, len(list))
	for i := range list {
		reactions, err := r.reactionsFor(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		w, err := r.toDomain(&list[i], reactions)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *workoutRepo) Save(ctx context.Context, w *domain.CompletedWorkout) error {
	row, err := mappers.WorkoutToRow(w)
	if err != nil {
		return writeErr(err)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
			return writeErr(err)
		}
		if err := tx.Where("workout_id = ?", w.ID).Delete(&rows.WorkoutReaction{}).Error; err != nil {
			return writeErr(err)
		}
		if len(w.Reactions) > 0 {
			reactionRows := make([]rows.WorkoutReaction, 0, len(w.Reactions))
			for i := range w.Reactions {
				reactionRows = append(reactionRows, mappers.ReactionToRow(&w.Reactions[i]))
			}
			if err := tx.Create(&reactionRows).Error; err != nil {
				return writeErr(err)
			}
		}
		return nil
	})
}

func (r *workoutRepo) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rows.CompletedWorkout{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, apperr.New(apperr.KindQuery, err)
	}
	return count, nil
}

func (r *workoutRepo) reactionsFor(ctx context.Context, workoutID uuid.UUID) ([]rows.WorkoutReaction, error) {
	var reactions []rows.WorkoutReaction
	if err := r.db.WithContext(ctx).
		Where("workout_id = ?", workoutID).
		Order("created_at ASC").
		Find(&reactions).Error; err != nil {
		return nil, apperr.New(apperr.KindQuery, err)
	}
	return reactions, nil
}

func (r *workoutRepo) toDomain(row *rows.CompletedWorkout, reactions []rows.WorkoutReaction) (*domain.CompletedWorkout, error) {
	w, err := mappers.WorkoutToDomain(row, reactions)
	if err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("map workout: %w", err))
	}
	return w, nil
}
