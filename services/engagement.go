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

type EngagementService struct{}

func NewEngagementService() *EngagementService {
	return &EngagementService{}
}

// ToggleLike flips the viewer's like for a post and keeps the denormalized
// likes counter in step. Returns the new state and counter.
func (es *EngagementService) ToggleLike(ctx context.Context, userID, postID int64) (liked bool, likes int64, err error) {
	var post models.Post
	err = db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, ErrPostNotFound
		}
		return false, 0, fmt.Errorf("failed to load post: %w", err)
	}

	var existing models.Like
	err = db.GetWriteDB(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&existing).Error

	if err == nil {
		if err := db.GetWriteDB(ctx).Delete(&existing).Error; err != nil {
			return false, 0, fmt.Errorf("failed to remove like: %w", err)
		}
		err = db.GetWriteDB(ctx).Model(&models.Post{}).
			Where("id = ? AND likes > 0", postID).
			UpdateColumn("likes", gorm.Expr("likes - 1")).Error
		if err != nil {
			return false, 0, fmt.Errorf("failed to update counter: %w", err)
		}
		liked = false
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		like := &models.Like{UserID: userID, PostID: postID, CreatedAt: time.Now()}
		if err := db.GetWriteDB(ctx).Create(like).Error; err != nil {
			return false, 0, fmt.Errorf("failed to create like: %w", err)
		}
		err = db.GetWriteDB(ctx).Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
		if err != nil {
			return false, 0, fmt.Errorf("failed to update counter: %w", err)
		}
		liked = true
	} else {
		return false, 0, fmt.Errorf("failed to check like: %w", err)
	}

	err = db.GetReadOnlyDB(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Pluck("likes", &likes).Error
	if err != nil {
		return liked, 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return liked, likes, nil
}

// ToggleBookmark flips the viewer's bookmark for a post.
func (es *EngagementService) ToggleBookmark(ctx context.Context, userID, postID int64) (bookmarked bool, err error) {
	var post models.Post
	err = db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrPostNotFound
		}
		return false, fmt.Errorf("failed to load post: %w", err)
	}

	var existing models.Bookmark
	err = db.GetWriteDB(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&existing).Error

	if err == nil {
		if err := db.GetWriteDB(ctx).Delete(&existing).Error; err != nil {
			return false, fmt.Errorf("failed to remove bookmark: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}

	bookmark := &models.Bookmark{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	if err := db.GetWriteDB(ctx).Create(bookmark).Error; err != nil {
		return false, fmt.Errorf("failed to create bookmark: %w", err)
	}
	return true, nil
}
