package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"driftline/internal/domain"
	driftline_errors "driftline/pkg/errors"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id string) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).Where("message_id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, driftline_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return driftline_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id, content string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("message_id = ?", id).
		Updates(map[string]interface{}{"content": content, "edited": true})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) UpdateReactions(ctx context.Context, id string, tokens []string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("message_id = ?", id).
		Update("reactions", domain.StringList(tokens))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Message{}, "message_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}
