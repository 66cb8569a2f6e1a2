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
	ErrUnknownCategory   = errors.New("unknown category")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")
)

type SubscriptionService struct{}

func NewSubscriptionService() *SubscriptionService {
	return &SubscriptionService{}
}

// Subscribe records a subscription for a category slug. Group-parent slugs
// become category subscriptions (the whole group), everything else becomes a
// topic subscription.
func (ss *SubscriptionService) Subscribe(ctx context.Context, userID int64, slug string) error {
	category, err := ss.categoryBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if IsGroupParent(slug) {
		var existing int64
		err = db.GetReadOnlyDB(ctx).Model(&models.CategorySubscription{}).
			Where("user_id = ? AND category_id = ?", userID, category.ID).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if existing > 0 {
			return ErrAlreadySubscribed
		}
		return db.GetWriteDB(ctx).Create(&models.CategorySubscription{
			UserID:     userID,
			CategoryID: category.ID,
			CreatedAt:  time.Now(),
		}).Error
	}

	var existing int64
	err = db.GetReadOnlyDB(ctx).Model(&models.TopicSubscription{}).
		Where("user_id = ? AND category_id = ?", userID, category.ID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}
	if existing > 0 {
		return ErrAlreadySubscribed
	}
	return db.GetWriteDB(ctx).Create(&models.TopicSubscription{
		UserID:     userID,
		CategoryID: category.ID,
		CreatedAt:  time.Now(),
	}).Error
}

func (ss *SubscriptionService) Unsubscribe(ctx context.Context, userID int64, slug string) error {
	category, err := ss.categoryBySlug(ctx, slug)
	if err != nil {
		return err
	}

	var model interface{} = &models.TopicSubscription{}
	if IsGroupParent(slug) {
		model = &models.CategorySubscription{}
	}

	result := db.GetWriteDB(ctx).
		Where("user_id = ? AND category_id = ?", userID, category.ID).
		Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// SubscribedSlugs exposes the viewer's resolved subscription slugs (union of
// category groups and individual topics).
func (ss *SubscriptionService) SubscribedSlugs(ctx context.Context, userID int64) ([]string, error) {
	return subscribedSlugs(ctx, userID)
}

func (ss *SubscriptionService) categoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := db.GetReadOnlyDB(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &category, nil
}
