package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vkconnect/db"
	"vkconnect/models"
)

type decorateOptions struct {
	// Responder certification is computed for offset-mode pages only; cursor
	// pages skip it and leave the counts absent.
	withResponderStats bool
	includeContent     bool
}

type postAuthorPair struct {
	PostID   int64
	AuthorID int64
}

type postCount struct {
	PostID int64
	Cnt    int64
}

// decorate attaches all per-post derived fields to a page of raw rows. Every
// aggregate is loaded for the whole page at once; the independent reads are
// issued concurrently.
func (ps *PostService) decorate(ctx context.Context, rows []postRow, viewerID *int64, opts decorateOptions) ([]models.DecoratedPost, error) {
	if len(rows) == 0 {
		return []models.DecoratedPost{}, nil
	}

	postIDs := make([]int64, 0, len(rows))
	authorIDSet := make(map[int64]bool)
	authorIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		postIDs = append(postIDs, row.ID)
		if !authorIDSet[row.AuthorID] {
			authorIDSet[row.AuthorID] = true
			authorIDs = append(authorIDs, row.AuthorID)
		}
	}

	var (
		answerCounts  map[int64]int64
		commentCounts map[int64]int64
		certified     map[int64]map[int64]struct{}
		other         map[int64]map[int64]struct{}
		likedSet      map[int64]bool
		bookmarkedSet map[int64]bool
		followingSet  map[int64]bool
	)

	var wg sync.WaitGroup
	errs := make([]error, 6)

	wg.Add(1)
	go func() {
		defer wg.Done()
		answerCounts, errs[0] = loadAnswerCounts(ctx, postIDs)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		commentCounts, errs[1] = loadTopLevelCommentCounts(ctx, postIDs)
	}()

	if opts.withResponderStats {
		wg.Add(1)
		go func() {
			defer wg.Done()
			certified, other, errs[2] = loadResponderSplit(ctx, postIDs)
		}()
	}

	if viewerID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			likedSet, errs[3] = loadMembership(ctx, &models.Like{}, *viewerID, postIDs)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			bookmarkedSet, errs[4] = loadMembership(ctx, &models.Bookmark{}, *viewerID, postIDs)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			followingSet, errs[5] = loadFollowingSet(ctx, *viewerID, authorIDs)
		}()
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	decorated := make([]models.DecoratedPost, 0, len(rows))
	for _, row := range rows {
		post := models.DecoratedPost{
			ID:              row.ID,
			Type:            row.Type,
			Title:           row.Title,
			Category:        row.Category,
			Subcategory:     row.Subcategory,
			Tags:            row.Tags,
			Views:           row.Views,
			Likes:           row.Likes,
			IsResolved:      row.IsResolved,
			AdoptedAnswerID: row.AdoptedAnswerID,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			Author: models.PostAuthor{
				ID:          row.AuthorID,
				Name:        row.AuthorName,
				Image:       row.AuthorImage,
				IsVerified:  row.AuthorVerified,
				IsExpert:    row.AuthorExpert,
				BadgeType:   row.AuthorBadgeType,
				IsFollowing: followingSet[row.AuthorID],
			},
			AnswersCount:      answerCounts[row.ID],
			PostCommentsCount: commentCounts[row.ID],
			IsLiked:           likedSet[row.ID],
			IsBookmarked:      bookmarkedSet[row.ID],
		}
		post.CommentsCount = post.AnswersCount + post.PostCommentsCount

		if opts.withResponderStats {
			certifiedCount := len(certified[row.ID])
			otherCount := len(other[row.ID])
			post.CertifiedResponderCount = &certifiedCount
			post.OtherResponderCount = &otherCount
		}

		badge, weight := ResolveTrust(AuthorTrust{
			IsVerified: row.AuthorVerified,
			IsExpert:   row.AuthorExpert,
			BadgeType:  row.AuthorBadgeType,
		}, row.CreatedAt, now)
		post.TrustBadge = badge
		post.TrustWeight = weight

		summary := SummarizeContent(row.Content)
		post.Excerpt = summary.Excerpt
		post.Thumbnail = summary.Thumbnail
		post.Thumbnails = summary.Thumbnails
		post.ImageCount = summary.ImageCount

		if opts.includeContent {
			post.Content = row.Content
		} else {
			post.Content = TruncateContent(row.Content, listContentLimit)
		}

		decorated = append(decorated, post)
	}
	return decorated, nil
}

func loadAnswerCounts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	var counts []postCount
	err := db.GetReadOnlyDB(ctx).Model(&models.Answer{}).
		Select("post_id, COUNT(*) AS cnt").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}
	return countMap(counts), nil
}

// loadTopLevelCommentCounts counts only comments made directly on the post:
// replies and answer comments are excluded from the listing count.
func loadTopLevelCommentCounts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	var counts []postCount
	err := db.GetReadOnlyDB(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS cnt").
		Where("post_id IN ? AND parent_id IS NULL AND answer_id IS NULL", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return countMap(counts), nil
}

func countMap(counts []postCount) map[int64]int64 {
	m := make(map[int64]int64, len(counts))
	for _, c := range counts {
		m[c.PostID] = c.Cnt
	}
	return m
}

// loadResponderSplit collects the distinct responders per post from answers
// and comments at any depth, then splits them into certified vs other by
// author status. Certification is a property of the user, checked once per
// user: a certified author never lands in a post's "other" set, so the two
// sets stay disjoint.
func loadResponderSplit(ctx context.Context, postIDs []int64) (map[int64]map[int64]struct{}, map[int64]map[int64]struct{}, error) {
	var answerPairs []postAuthorPair
	err := db.GetReadOnlyDB(ctx).Model(&models.Answer{}).
		Select("DISTINCT post_id, author_id").
		Where("post_id IN ?", postIDs).
		Scan(&answerPairs).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load answer responders: %w", err)
	}

	var commentPairs []postAuthorPair
	err = db.GetReadOnlyDB(ctx).Model(&models.Comment{}).
		Select("DISTINCT post_id, author_id").
		Where("post_id IN ?", postIDs).
		Scan(&commentPairs).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load comment responders: %w", err)
	}

	pairs := append(answerPairs, commentPairs...)
	if len(pairs) == 0 {
		return map[int64]map[int64]struct{}{}, map[int64]map[int64]struct{}{}, nil
	}

	responderIDSet := make(map[int64]bool)
	var responderIDs []int64
	for _, pair := range pairs {
		if !responderIDSet[pair.AuthorID] {
			responderIDSet[pair.AuthorID] = true
			responderIDs = append(responderIDs, pair.AuthorID)
		}
	}

	var responders []models.User
	err = db.GetReadOnlyDB(ctx).
		Select("id, is_verified, is_expert, badge_type").
		Where("id IN ?", responderIDs).
		Find(&responders).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load responder users: %w", err)
	}

	userCertified := make(map[int64]bool, len(responders))
	for _, user := range responders {
		userCertified[user.ID] = user.IsVerified || user.IsExpert || user.BadgeType != ""
	}

	certified := make(map[int64]map[int64]struct{})
	other := make(map[int64]map[int64]struct{})
	for _, pair := range pairs {
		if userCertified[pair.AuthorID] {
			if certified[pair.PostID] == nil {
				certified[pair.PostID] = make(map[int64]struct{})
			}
			certified[pair.PostID][pair.AuthorID] = struct{}{}
			delete(other[pair.PostID], pair.AuthorID)
		} else {
			if _, ok := certified[pair.PostID][pair.AuthorID]; ok {
				continue
			}
			if other[pair.PostID] == nil {
				other[pair.PostID] = make(map[int64]struct{})
			}
			other[pair.PostID][pair.AuthorID] = struct{}{}
		}
	}
	return certified, other, nil
}

// loadMembership returns the set of page posts the viewer has a Like or
// Bookmark row for.
func loadMembership(ctx context.Context, model interface{}, viewerID int64, postIDs []int64) (map[int64]bool, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(model).
		Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load engagement membership: %w", err)
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func loadFollowingSet(ctx context.Context, viewerID int64, authorIDs []int64) (map[int64]bool, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", viewerID, authorIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follow state: %w", err)
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
