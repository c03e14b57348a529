package repos

import (
	"context"
	"errors"
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

type PlanRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FitnessPlan, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.FitnessPlan, error)
	// FindActiveByUserID returns NotFound when the user has no active plan.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.FitnessPlan, error)
	Save(ctx context.Context, p *domain.FitnessPlan) error
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.FitnessPlan, error) {
	if id == uuid.Nil {
		return nil, apperr.Newf(apperr.KindQuery, "missing plan id")
	}
	var row rows.FitnessPlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, readErr(err, "plan")
	}
	return r.toDomain(&row)
}

func (r *planRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.FitnessPlan, error) {
	var list []rows.FitnessPlan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, apperr.New(apperr.KindQuery, err)
	}
	out := make([]*domain.FitnessPlan, 0, len(list))
	for i := range list {
		p, err := r.toDomain(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *planRepo) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.FitnessPlan, error) {
	var row rows.FitnessPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.PlanActive)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("active plan")
		}
		return nil, apperr.New(apperr.KindQuery, err)
	}
	return r.toDomain(&row)
}

func (r *planRepo) Save(ctx context.Context, p *domain.FitnessPlan) error {
	row, err := mappers.PlanToRow(p)
	if err != nil {
		return writeErr(err)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *planRepo) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rows.FitnessPlan{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, apperr.New(apperr.KindQuery, err)
	}
	return count, nil
}

func (r *planRepo) toDomain(row *rows.FitnessPlan) (*domain.FitnessPlan, error) {
	p, err := mappers.PlanToDomain(row)
	if err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("map plan: %w", err))
	}
	return p, nil
}
