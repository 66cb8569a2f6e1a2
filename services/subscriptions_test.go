package services

import (
	"context"
	"testing"

	"vkconnect/db"
	"vkconnect/models"

	"github.com/stretchr/testify/require"
)

func seedCategory(t *testing.T, slug string, parentID *int64) *models.Category {
	t.Helper()
	category := &models.Category{Slug: slug, Name: slug, ParentID: parentID}
	require.NoError(t, db.ORM.Create(category).Error)
	return category
}

func TestSubscribeGroupParentVsTopic(t *testing.T) {
	setupPostsTestDB(t)
	viewer := createTestUser(t, nil)
	seedCategory(t, "visa", nil)
	seedCategory(t, "banking", nil)

	service := NewSubscriptionService()

	require.NoError(t, service.Subscribe(context.Background(), viewer.ID, "visa"))
	require.NoError(t, service.Subscribe(context.Background(), viewer.ID, "banking"))

	// Parent slug lands in category subscriptions, topic slug in topic ones
	var categorySubs, topicSubs int64
	require.NoError(t, db.ORM.Model(&models.CategorySubscription{}).
		Where("user_id = ?", viewer.ID).Count(&categorySubs).Error)
	require.NoError(t, db.ORM.Model(&models.TopicSubscription{}).
		Where("user_id = ?", viewer.ID).Count(&topicSubs).Error)
	require.Equal(t, int64(1), categorySubs)
	require.Equal(t, int64(1), topicSubs)

	require.ErrorIs(t, service.Subscribe(context.Background(), viewer.ID, "visa"), ErrAlreadySubscribed)
	require.ErrorIs(t, service.Subscribe(context.Background(), viewer.ID, "no-such-slug"), ErrUnknownCategory)

	slugs, err := service.SubscribedSlugs(context.Background(), viewer.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"visa", "banking"}, slugs)
}

func TestUnsubscribe(t *testing.T) {
	setupPostsTestDB(t)
	viewer := createTestUser(t, nil)
	seedCategory(t, "visa", nil)

	service := NewSubscriptionService()
	require.NoError(t, service.Subscribe(context.Background(), viewer.ID, "visa"))
	require.NoError(t, service.Unsubscribe(context.Background(), viewer.ID, "visa"))
	require.ErrorIs(t, service.Unsubscribe(context.Background(), viewer.ID, "visa"), ErrNotSubscribed)
}
