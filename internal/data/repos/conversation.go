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

type ConversationRepo interface {
	// FindByUserID loads the conversation root only; messages and check-ins
	// are loaded through their own list operations.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.CoachConversation, error)
	Save(ctx context.Context, c *domain.CoachConversation) error

	AppendMessage(ctx context.Context, m *domain.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
	MaxSeq(ctx context.Context, conversationID uuid.UUID) (int64, error)

	AppendCheckIn(ctx context.Context, c *domain.CheckIn) error
	SaveCheckIn(ctx context.Context, c *domain.CheckIn) error
	ListCheckIns(ctx context.Context, conversationID uuid.UUID) ([]domain.CheckIn, error)
	FindCheckIn(ctx context.Context, id uuid.UUID) (*domain.CheckIn, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.CoachConversation, error) {
	if userID == uuid.Nil {
		return nil, apperr.Newf(apperr.KindQuery, "missing user_id")
	}
	var row rows.CoachConversation
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, readErr(err, "conversation")
	}
	c, err := mappers.ConversationToDomain(&row)
	if err != nil {
		return nil, apperr.New(apperr.KindQuery, fmt.Errorf("map conversation: %w", err))
	}
	return c, nil
}

func (r *conversationRepo) Save(ctx context.Context, c *domain.CoachConversation) error {
	row, err := mappers.ConversationToRow(c)
	if err != nil {
		return writeErr(err)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *conversationRepo) AppendMessage(ctx context.Context, m *domain.Message) error {
	row := mappers.MessageToRow(m)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	var list []rows.CoachMessage
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&list).Error; err != nil {
		return nil, apperr.New(apperr.KindQuery, err)
	}
	out := make([]domain.Message, 0, len(list))
	for i := range list {
		out = append(out, mappers.MessageToDomain(&list[i]))
	}
	return out, nil
}

func (r *conversationRepo) MaxSeq(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var maxSeq int64
	if err := r.db.WithContext(ctx).
		Model(&rows.CoachMessage{}).
		Select("COALESCE(MAX(seq), 0)").
		Where("conversation_id = ?", conversationID).
		Scan(&maxSeq).Error; err != nil {
		return 0, apperr.New(apperr.KindQuery, err)
	}
	return maxSeq, nil
}

func (r *conversationRepo) AppendCheckIn(ctx context.Context, c *domain.CheckIn) error {
	row := mappers.CheckInToRow(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *conversationRepo) SaveCheckIn(ctx context.Context, c *domain.CheckIn) error {
	row := mappers.CheckInToRow(c)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *conversationRepo) ListCheckIns(ctx context.Context, conversationID uuid.UUID) ([]domain.CheckIn, error) {
	var list []rows.CoachCheckIn
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, apperr.New(apperr.KindQuery, err)
	}
	out := make([]domain.CheckIn, 0, len(list))
	for i := range list {
		out = append(out, mappers.CheckInToDomain(&list[i]))
	}
	return out, nil
}

func (r *conversationRepo) FindCheckIn(ctx context.Context, id uuid.UUID) (*domain.CheckIn, error) {
	var row rows.CoachCheckIn
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, readErr(err, "check-in")
	}
	c := mappers.CheckInToDomain(&row)
	return &c, nil
}
