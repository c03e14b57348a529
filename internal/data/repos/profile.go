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

type ProfileRepo interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
	// Save upserts the profile row and its stats row, and replaces the
	// achievements collection wholesale, all in one transaction.
	Save(ctx context.Context, p *domain.UserProfile) error
	Count(ctx context.Context) (int64, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, apperr.Newf(apperr.KindQuery, "missing user_id")
	}
	var row rows.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, readErr(err, "profile")
	}

	var stats *rows.ProfileStats
	var statsRow rows.ProfileStats
	err := r.db.WithContext(ctx).Where("profile_id = ?", row.ID).First(&statsRow).Error
	switch {
	case err == nil:
		stats = &statsRow
	case err == gorm.ErrRecordNotFound:
		// stats row is created with the profile but tolerate its absence
	default:
		return nil, readErr(err, "profile stats")
	}

	var achievements []rows.Achievement
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", row.ID).
		Order("earned_at ASC").
		Find(&achievements).Error; err != nil {
		return nil, readErr(err, "achievements")
	}

	p, err := mappers.ProfileToDomain(&row, stats, achievements)
	if err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("map profile: %w", err))
	}
	return p, nil
}

func (r *profileRepo) Save(ctx context.Context, p *domain.UserProfile) error {
	row, err := mappers.ProfileToRow(p)
	if err != nil {
		return writeErr(err)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
			return writeErr(err)
		}
		if p.Stats != nil {
			statsRow := mappers.StatsToRow(p.Stats)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(statsRow).Error; err != nil {
				return writeErr(err)
			}
		}
		if err := tx.Where("profile_id = ?", p.ID).Delete(&rows.Achievement{}).Error; err != nil {
			return writeErr(err)
		}
		if len(p.Achievements) > 0 {
			achRows := make([]rows.Achievement, 0, len(p.Achievements))
			for i := range p.Achievements {
				achRows = append(achRows, mappers.AchievementToRow(&p.Achievements[i]))
			}
			if err := tx.Create(&achRows).Error; err != nil {
				return writeErr(err)
			}
		}
		return nil
	})
}

func (r *profileRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&rows.UserProfile{}).Count(&count).Error; err != nil {
		return 0, apperr.New(apperr.KindQuery, err)
	}
	return count, nil
}
