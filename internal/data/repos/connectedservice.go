package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsefit/coach-backend/internal/data/mappers"
	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/cryptoutil"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

type ConnectedServiceRepo interface {
	FindByProvider(ctx context.Context, userID uuid.UUID, provider string) (*domain.ConnectedService, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.ConnectedService, error)
	Save(ctx context.Context, s *domain.ConnectedService) error
	Delete(ctx context.Context, userID uuid.UUID, provider string) error
}

// connectedServiceRepo seals credentials with its secretbox before the
// mapper ever sees them, so plaintext tokens never reach a row value.
type connectedServiceRepo struct {
	db  *gorm.DB
	box *cryptoutil.Box
	log *logger.Logger
}

func NewConnectedServiceRepo(db *gorm.DB, box *cryptoutil.Box, baseLog *logger.Logger) ConnectedServiceRepo {
	return &connectedServiceRepo{db: db, box: box, log: baseLog.With("repo", "ConnectedServiceRepo")}
}

func (r *connectedServiceRepo) FindByProvider(ctx context.Context, userID uuid.UUID, provider string) (*domain.ConnectedService, error) {
	var row rows.ConnectedService
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&row).Error; err != nil {
		return nil, readErr(err, "connected service")
	}
	return r.toDomain(&row)
}

func (r *connectedServiceRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.ConnectedService, error) {
	var list []rows.ConnectedService
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("connected_at ASC").
		Find(&list).Error; err != nil {
		return nil, apperr.New(apperr.KindQuery, err)
	}
	out := make([]*domain.ConnectedService, 0, len(list))
	for i := range list {
		s, err := r.toDomain(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *connectedServiceRepo) Save(ctx context.Context, s *domain.ConnectedService) error {
	plain, err := json.Marshal(s.Credentials)
	if err != nil {
		return writeErr(fmt.Errorf("marshal credentials: %w", err))
	}
	sealed, err := r.box.Seal(plain)
	if err != nil {
		return writeErr(fmt.Errorf("seal credentials: %w", err))
	}
	row, err := mappers.ServiceToRow(s, sealed)
	if err != nil {
		return writeErr(err)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *connectedServiceRepo) Delete(ctx context.Context, userID uuid.UUID, provider string) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&rows.ConnectedService{}).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *connectedServiceRepo) toDomain(row *rows.ConnectedService) (*domain.ConnectedService, error) {
	plain, err := r.box.Open(row.Credentials)
	if err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("open credentials: %w", err))
	}
	var creds domain.Credentials
	if err := json.Unmarshal(plain, &creds); err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("unmarshal credentials: %w", err))
	}
	s, err := mappers.ServiceToDomain(row, creds)
	if err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("map connected service: %w", err))
	}
	return s, nil
}
