package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"driftline/internal/domain"
	driftline_errors "driftline/pkg/errors"
)

type PostgresProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, driftline_errors.ErrNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

// GetByEmail is used by the stub backend's login path.
func (r *PostgresProfileRepository) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, driftline_errors.ErrNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return driftline_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresProfileRepository) Update(ctx context.Context, p domain.Profile) error {
	res := r.db.WithContext(ctx).Save(&p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) UpdateNotifications(ctx context.Context, userID string, tokens []string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Update("notifications", domain.StringList(tokens))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) UpdateFollowGraph(ctx context.Context, userID string, followers, following []string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"followers": domain.StringList(followers),
			"following": domain.StringList(following),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftline_errors.ErrNotFound
	}
	return nil
}
