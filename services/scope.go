package services

import (
	"context"
	"fmt"
	"strings"

	"vkconnect/db"
	"vkconnect/models"
)

const (
	FilterFollowing      = "following"
	FilterFollowingUsers = "following-users"
	FilterMyPosts        = "my-posts"
)

// resolveScope turns the session-gated filter parameter into predicates.
// empty=true means the caller should return a well-formed empty page without
// touching the posts table at all (unauthenticated viewer, or a viewer with
// nothing subscribed/followed).
func resolveScope(ctx context.Context, filter string, viewerID *int64) (conds []condition, empty bool, err error) {
	switch filter {
	case FilterFollowing:
		if viewerID == nil {
			return nil, true, nil
		}
		return subscribedCategoriesCondition(ctx, *viewerID)

	case FilterFollowingUsers:
		if viewerID == nil {
			return nil, true, nil
		}
		var followingIDs []int64
		err = db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
			Where("follower_id = ?", *viewerID).
			Pluck("following_id", &followingIDs).Error
		if err != nil {
			return nil, false, fmt.Errorf("failed to load follow graph: %w", err)
		}
		if len(followingIDs) == 0 {
			return nil, true, nil
		}
		return []condition{{query: "p.author_id IN ?", args: []interface{}{followingIDs}}}, false, nil

	case FilterMyPosts:
		// Anonymous callers get no extra predicate; the UI layer guards this.
		if viewerID == nil {
			return nil, false, nil
		}
		return []condition{{query: "p.author_id = ?", args: []interface{}{*viewerID}}}, false, nil

	default:
		return nil, false, nil
	}
}

// subscribedCategoriesCondition resolves the viewer's category and topic
// subscriptions to slugs, splits them into group parents vs individual
// topics, and matches posts in any of them.
func subscribedCategoriesCondition(ctx context.Context, viewerID int64) ([]condition, bool, error) {
	slugs, err := subscribedSlugs(ctx, viewerID)
	if err != nil {
		return nil, false, err
	}
	if len(slugs) == 0 {
		return nil, true, nil
	}

	// Group parents expand to their topics, same as the category filter
	seen := make(map[string]bool)
	var categorySlugs, subcategorySlugs []string
	addCategory := func(slug string) {
		if !seen["c:"+slug] {
			seen["c:"+slug] = true
			categorySlugs = append(categorySlugs, slug)
		}
	}
	addSubcategory := func(slug string) {
		if !seen["s:"+slug] {
			seen["s:"+slug] = true
			subcategorySlugs = append(subcategorySlugs, slug)
		}
	}
	for _, slug := range slugs {
		addCategory(slug)
		for _, child := range CategoryGroups[slug] {
			addCategory(child)
			addSubcategory(child)
		}
		if IsGroupChild(slug) {
			addSubcategory(slug)
		}
	}

	exprs := []string{"p.category IN ?"}
	args := []interface{}{categorySlugs}
	if len(subcategorySlugs) > 0 {
		exprs = append(exprs, "p.subcategory IN ?")
		args = append(args, subcategorySlugs)
	}

	cond := condition{
		query: "(" + strings.Join(exprs, " OR ") + ")",
		args:  args,
	}
	return []condition{cond}, false, nil
}

// subscribedSlugs returns the union of the viewer's category-group and topic
// subscriptions as category slugs.
func subscribedSlugs(ctx context.Context, userID int64) ([]string, error) {
	var categorySlugs []string
	err := db.GetReadOnlyDB(ctx).
		Table("category_subscriptions cs").
		Joins("JOIN categories c ON c.id = cs.category_id").
		Where("cs.user_id = ?", userID).
		Pluck("c.slug", &categorySlugs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load category subscriptions: %w", err)
	}

	var topicSlugs []string
	err = db.GetReadOnlyDB(ctx).
		Table("topic_subscriptions ts").
		Joins("JOIN categories c ON c.id = ts.category_id").
		Where("ts.user_id = ?", userID).
		Pluck("c.slug", &topicSlugs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load topic subscriptions: %w", err)
	}

	seen := make(map[string]bool)
	var slugs []string
	for _, slug := range append(categorySlugs, topicSlugs...) {
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs, nil
}
