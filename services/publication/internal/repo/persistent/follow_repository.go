package persistent

import (
	"context"
	"fmt"

	"socialnet/pkg/models"

	"gorm.io/gorm"
)

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Pluck("followed_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	return ids, nil
}
