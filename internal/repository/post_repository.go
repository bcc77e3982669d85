package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"driftline/internal/domain"
	driftline_errors "driftline/pkg/errors"
)

type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).Where("post_id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Post{}, driftline_errors.ErrNotFound
		}
		return domain.Post{}, err
	}
	return p, nil
}

func (r *PostgresPostRepository) ListActive(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.PostStatusActive).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostgresPostRepository) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	var posts []domain.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostgresPostRepository) Create(ctx context.Context, p *domain.Post) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return driftline_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresPostRepository) Update(ctx context.Context, p domain.Post) error {
	res := r.db.WithContext(ctx).Save(&p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) UpdateLikes(ctx context.Context, id string, likes []string) error {
	return r.updateColumn(ctx, id, "likes", domain.StringList(likes))
}

func (r *PostgresPostRepository) UpdateComments(ctx context.Context, id string, comments []string) error {
	return r.updateColumn(ctx, id, "comments", domain.StringList(comments))
}

func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Post{}, "post_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("post_id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}
