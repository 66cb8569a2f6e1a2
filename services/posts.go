package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"vkconnect/db"
	"vkconnect/models"

	"gorm.io/gorm"
)

const (
	SortLatest  = "latest"
	SortPopular = "popular"

	FallbackReasonNoMatches = "no_matches"

	// List views carry at most this much content unless include=content
	listContentLimit = 4000

	// Zero-match fallback pages are viewer-independent when no filter is
	// active, so they are cached briefly.
	fallbackCacheTTL    = 60 * time.Second
	fallbackCachePrefix = "popular_fallback:"
)

var ErrPostNotFound = errors.New("post not found")
var ErrNotPostAuthor = errors.New("post does not belong to user")

type PostService struct{}

func NewPostService() *PostService {
	return &PostService{}
}

type ListPostsOptions struct {
	ParentCategory string
	Category       string
	Search         string
	Page           int
	Limit          int
	Type           string
	Sort           string
	Filter         string
	Cursor         string
	IncludeContent bool
	ViewerID       *int64
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListMeta struct {
	NextCursor     *string  `json:"nextCursor"`
	HasMore        bool     `json:"hasMore"`
	PaginationMode string   `json:"paginationMode"`
	IsFallback     bool     `json:"isFallback,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Query          string   `json:"query,omitempty"`
	Tokens         []string `json:"tokens,omitempty"`
}

type PostListResult struct {
	Posts      []models.DecoratedPost `json:"posts"`
	Pagination Pagination             `json:"pagination"`
	Meta       ListMeta               `json:"meta"`
}

// postRow is the flat scan target for the page query: post columns plus the
// left-joined author projection.
type postRow struct {
	ID              int64
	AuthorID        int64
	Type            string
	Title           string
	Content         string
	Category        string
	Subcategory     string
	Tags            models.StringList
	Views           int64
	Likes           int64
	IsResolved      bool
	AdoptedAnswerID *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	AuthorName      string
	AuthorImage     string
	AuthorVerified  bool
	AuthorExpert    bool
	AuthorBadgeType string
}

const postRowColumns = `p.id, p.author_id, p.type, p.title, p.content, p.category, p.subcategory, p.tags,
p.views, p.likes, p.is_resolved, p.adopted_answer_id, p.created_at, p.updated_at,
u.name AS author_name, u.image AS author_image, u.is_verified AS author_verified,
u.is_expert AS author_expert, u.badge_type AS author_badge_type`

// ListPosts runs the full listing pipeline: filters, scope, pagination
// strategy, execution with zero-match fallback, decoration, and the optional
// popularity re-sort.
func (ps *PostService) ListPosts(ctx context.Context, opts ListPostsOptions) (*PostListResult, error) {
	search := strings.TrimSpace(opts.Search)
	if utf8.RuneCountInString(search) > MaxSearchLength {
		return nil, ErrSearchQueryTooLong
	}

	limit := ClampLimit(opts.Limit)
	page := NormalizePage(opts.Page)

	var tokens []string
	if search != "" {
		tokens = TokenizeSearch(search)
	}

	baseConds, err := categoryConditions(ctx, opts.ParentCategory, opts.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to build category filter: %w", err)
	}

	var typeCond *condition
	if opts.Type == models.PostTypeQuestion || opts.Type == models.PostTypeShare {
		typeCond = &condition{query: "p.type = ?", args: []interface{}{opts.Type}}
	}

	scopeConds, emptyScope, err := resolveScope(ctx, opts.Filter, opts.ViewerID)
	if err != nil {
		return nil, err
	}
	if emptyScope {
		return emptyListResult(page, limit), nil
	}
	baseConds = append(baseConds, scopeConds...)

	if cursor, ok := DecodeCursor(opts.Cursor); ok && search == "" {
		return ps.listByCursor(ctx, baseConds, typeCond, cursor, limit, opts)
	}
	return ps.listByOffset(ctx, baseConds, typeCond, search, tokens, page, limit, opts)
}

func emptyListResult(page, limit int) *PostListResult {
	return &PostListResult{
		Posts:      []models.DecoratedPost{},
		Pagination: Pagination{Page: page, Limit: limit},
		Meta:       ListMeta{PaginationMode: PaginationModeOffset},
	}
}

func (ps *PostService) listByOffset(ctx context.Context, baseConds []condition, typeCond *condition,
	search string, tokens []string, page, limit int, opts ListPostsOptions) (*PostListResult, error) {

	conds := baseConds
	if typeCond != nil {
		conds = append(conds, *typeCond)
	}

	searchActive := search != ""
	if searchActive {
		conds = append(conds, searchConditions(search, tokens)...)
	}

	var total int64
	err := applyConditions(db.GetReadOnlyDB(ctx).Table("posts p"), conds).Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	if searchActive && total == 0 {
		return ps.listFallback(ctx, baseConds, search, tokens, page, limit, opts)
	}

	selectExpr := postRowColumns
	var selectArgs []interface{}
	orderExpr := "p.created_at DESC, p.id DESC"
	if searchActive {
		scoreExpr, scoreArgs := matchScoreExpression(tokens)
		selectExpr = selectExpr + ", " + scoreExpr + " AS match_score"
		selectArgs = scoreArgs
		orderExpr = "match_score DESC, " +
			"CASE WHEN p.type = 'question' THEN 1 ELSE 0 END DESC, " +
			"CASE WHEN p.is_resolved THEN 1 ELSE 0 END DESC, " +
			"p.likes DESC, p.views DESC, p.created_at DESC, p.id DESC"
	}

	var rows []postRow
	query := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select(selectExpr, selectArgs...).
		Joins("LEFT JOIN users u ON u.id = p.author_id")
	query = applyConditions(query, conds).
		Order(orderExpr).
		Offset((page - 1) * limit).
		Limit(limit)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	decorated, err := ps.decorate(ctx, rows, opts.ViewerID, decorateOptions{
		withResponderStats: true,
		includeContent:     opts.IncludeContent,
	})
	if err != nil {
		return nil, err
	}

	if opts.Sort == SortPopular && !searchActive {
		RankByPopularity(decorated)
	}

	result := &PostListResult{
		Posts: decorated,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
		Meta: ListMeta{PaginationMode: PaginationModeOffset},
	}
	result.Meta.HasMore = int64(page*limit) < total
	if result.Meta.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		cursor := EncodeCursor(last.CreatedAt, last.ID)
		result.Meta.NextCursor = &cursor
	}
	return result, nil
}

func (ps *PostService) listByCursor(ctx context.Context, baseConds []condition, typeCond *condition,
	cursor *Cursor, limit int, opts ListPostsOptions) (*PostListResult, error) {

	conds := baseConds
	if typeCond != nil {
		conds = append(conds, *typeCond)
	}
	conds = append(conds, condition{
		query: "(p.created_at < ? OR (p.created_at = ? AND p.id < ?))",
		args:  []interface{}{cursor.CreatedAt, cursor.CreatedAt, cursor.ID},
	})

	// limit+1 detects hasMore without a count query; total stays unknown in
	// cursor mode and callers must rely on hasMore/nextCursor.
	var rows []postRow
	query := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select(postRowColumns).
		Joins("LEFT JOIN users u ON u.id = p.author_id")
	query = applyConditions(query, conds).
		Order("p.created_at DESC, p.id DESC").
		Limit(limit + 1)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	decorated, err := ps.decorate(ctx, rows, opts.ViewerID, decorateOptions{
		withResponderStats: false,
		includeContent:     opts.IncludeContent,
	})
	if err != nil {
		return nil, err
	}

	if opts.Sort == SortPopular {
		RankByPopularity(decorated)
	}

	result := &PostListResult{
		Posts:      decorated,
		Pagination: Pagination{Page: 1, Limit: limit},
		Meta:       ListMeta{PaginationMode: PaginationModeCursor, HasMore: hasMore},
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := EncodeCursor(last.CreatedAt, last.ID)
		result.Meta.NextCursor = &next
	}
	return result, nil
}

// listFallback serves the degraded response for a search that matched
// nothing: popular questions in the same category scope, tagged with fallback
// metadata. Forces type=question regardless of the requested type.
func (ps *PostService) listFallback(ctx context.Context, baseConds []condition,
	search string, tokens []string, page, limit int, opts ListPostsOptions) (*PostListResult, error) {

	conds := append(baseConds, condition{query: "p.type = ?", args: []interface{}{models.PostTypeQuestion}})

	var total int64
	err := applyConditions(db.GetReadOnlyDB(ctx).Table("posts p"), conds).Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count fallback posts: %w", err)
	}

	rows, cached := ps.getFallbackCache(ctx, opts, page, limit)
	if !cached {
		query := db.GetReadOnlyDB(ctx).
			Table("posts p").
			Select(postRowColumns).
			Joins("LEFT JOIN users u ON u.id = p.author_id")
		query = applyConditions(query, conds).
			Order("p.likes DESC, p.views DESC, p.created_at DESC, p.id DESC").
			Offset((page - 1) * limit).
			Limit(limit)
		if err := query.Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load fallback posts: %w", err)
		}
		ps.setFallbackCache(ctx, opts, page, limit, rows)
	}

	decorated, err := ps.decorate(ctx, rows, opts.ViewerID, decorateOptions{
		withResponderStats: true,
		includeContent:     opts.IncludeContent,
	})
	if err != nil {
		return nil, err
	}

	result := &PostListResult{
		Posts: decorated,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
		Meta: ListMeta{
			PaginationMode: PaginationModeOffset,
			IsFallback:     true,
			Reason:         FallbackReasonNoMatches,
			Query:          search,
			Tokens:         tokens,
		},
	}
	result.Meta.HasMore = int64(page*limit) < total
	if result.Meta.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		cursor := EncodeCursor(last.CreatedAt, last.ID)
		result.Meta.NextCursor = &cursor
	}
	return result, nil
}

// Fallback pages depend only on the category scope, not the failed search
// tokens, so they cache well. Skipped for session-scoped filters.
func fallbackCacheKey(opts ListPostsOptions, page, limit int) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", fallbackCachePrefix, opts.Category, opts.ParentCategory, page, limit)
}

func (ps *PostService) getFallbackCache(ctx context.Context, opts ListPostsOptions, page, limit int) ([]postRow, bool) {
	if RedisClient == nil || opts.Filter != "" {
		return nil, false
	}
	data, err := RedisClient.Get(ctx, fallbackCacheKey(opts, page, limit)).Result()
	if err != nil {
		return nil, false
	}
	var rows []postRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (ps *PostService) setFallbackCache(ctx context.Context, opts ListPostsOptions, page, limit int, rows []postRow) {
	if RedisClient == nil || opts.Filter != "" {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := RedisClient.Set(ctx, fallbackCacheKey(opts, page, limit), data, fallbackCacheTTL).Err(); err != nil {
		log.Printf("failed to cache fallback page: %v", err)
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// CreatePostInput is validated and normalized by CreatePost; tags are capped
// at three, matching what the listing pipeline later decorates.
type CreatePostInput struct {
	Type        string
	Title       string
	Content     string
	Category    string
	Subcategory string
	Tags        []string
}

func (ps *PostService) CreatePost(ctx context.Context, authorID int64, input CreatePostInput) (*models.Post, error) {
	if input.Type != models.PostTypeQuestion && input.Type != models.PostTypeShare {
		return nil, fmt.Errorf("invalid post type: %q", input.Type)
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, errors.New("title and content are required")
	}
	if input.Category == "" {
		return nil, errors.New("category is required")
	}

	post := &models.Post{
		AuthorID:    authorID,
		Type:        input.Type,
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Tags:        normalizeTags(input.Tags),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.GetWriteDB(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Fan out follower notifications off the request path
	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueuePostNotification(context.Background(), *post)
	} else {
		go notifyFollowersDirect(context.Background(), *post)
	}

	return post, nil
}

func normalizeTags(tags []string) models.StringList {
	seen := make(map[string]bool)
	var out models.StringList
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// GetPost loads a single decorated post and bumps its view counter.
func (ps *PostService) GetPost(ctx context.Context, postID int64, viewerID *int64) (*models.DecoratedPost, error) {
	var rows []postRow
	err := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select(postRowColumns).
		Joins("LEFT JOIN users u ON u.id = p.author_id").
		Where("p.id = ?", postID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrPostNotFound
	}

	err = db.GetWriteDB(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err != nil {
		log.Printf("failed to increment views for post %d: %v", postID, err)
	}

	decorated, err := ps.decorate(ctx, rows, viewerID, decorateOptions{
		withResponderStats: true,
		includeContent:     true,
	})
	if err != nil {
		return nil, err
	}
	return &decorated[0], nil
}

func (ps *PostService) DeletePost(ctx context.Context, userID, postID int64) error {
	var post models.Post
	err := db.GetWriteDB(ctx).Where("id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to load post: %w", err)
	}
	if post.AuthorID != userID {
		return ErrNotPostAuthor
	}

	if err := db.GetWriteDB(ctx).Delete(&post).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
