package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vkconnect/db"
	"vkconnect/models"

	"gorm.io/gorm"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	ErrUserNotFound     = errors.New("user not found")
)

type FollowService struct{}

func NewFollowService() *FollowService {
	return &FollowService{}
}

func (fs *FollowService) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return ErrSelfFollow
	}

	var userCount int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("id = ?", followingID).
		Count(&userCount).Error
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if userCount == 0 {
		return ErrUserNotFound
	}

	var existing models.Follow
	err = db.GetReadOnlyDB(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&existing).Error
	if err == nil {
		return ErrAlreadyFollowing
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check follow: %w", err)
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (fs *FollowService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	result := db.GetWriteDB(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete follow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// Following returns the users the given user follows.
func (fs *FollowService) Following(ctx context.Context, userID int64) ([]models.User, error) {
	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Table("users u").
		Joins("JOIN follows f ON f.following_id = u.id").
		Where("f.follower_id = ?", userID).
		Select("u.id, u.nickname, u.name, u.image, u.is_verified, u.is_expert, u.badge_type, u.created_at").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load following: %w", err)
	}
	return users, nil
}

// FollowerIDs returns everyone following the given user; used by the
// notification fan-out.
func (fs *FollowService) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load followers: %w", err)
	}
	return ids, nil
}
