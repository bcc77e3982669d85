package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"driftline/internal/domain"
	driftline_errors "driftline/pkg/errors"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id string) (domain.Chat, error) {
	var c domain.Chat
	err := r.db.WithContext(ctx).Where("chat_id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Chat{}, driftline_errors.ErrNotFound
		}
		return domain.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) ListByUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("participants LIKE ?", participantPattern(userID)).
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) GetBetween(ctx context.Context, userA, userB string) (domain.Chat, error) {
	var c domain.Chat
	err := r.db.WithContext(ctx).
		Where("participants LIKE ? AND participants LIKE ?", participantPattern(userA), participantPattern(userB)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Chat{}, driftline_errors.ErrNotFound
		}
		return domain.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) Create(ctx context.Context, c *domain.Chat) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return driftline_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

// participantPattern matches a user id inside the JSON-encoded participants
// column. Ids are hex strings, so no escaping is needed.
func participantPattern(userID string) string {
	return fmt.Sprintf("%%%q%%", userID)
}
