package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"vkconnect/api/middleware"
	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

var postService = services.NewPostService()

// CachePolicy decides the Cache-Control header from the request shape:
// anonymous, unfiltered, unsearched listings are publicly cacheable,
// everything else is private.
func CachePolicy(hasSession, hasFilter, hasSearch bool) string {
	if !hasSession && !hasFilter && !hasSearch {
		return "public, s-maxage=60, stale-while-revalidate=300"
	}
	return "private, no-store"
}

func viewerID(c *gin.Context) *int64 {
	if id, exists := c.Get("user_id"); exists {
		userID := id.(int64)
		return &userID
	}
	return nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// ListPosts - GET /api/posts, the listing/search/ranking pipeline
func ListPosts(c *gin.Context) {
	viewer := viewerID(c)

	includeContent := false
	for _, part := range strings.Split(c.Query("include"), ",") {
		if strings.TrimSpace(part) == "content" {
			includeContent = true
		}
	}

	opts := services.ListPostsOptions{
		ParentCategory: c.Query("parentCategory"),
		Category:       c.Query("category"),
		Search:         c.Query("search"),
		Page:           intQuery(c, "page", 1),
		Limit:          intQuery(c, "limit", services.DefaultPageLimit),
		Type:           c.Query("type"),
		Sort:           c.DefaultQuery("sort", services.SortLatest),
		Filter:         c.Query("filter"),
		Cursor:         c.Query("cursor"),
		IncludeContent: includeContent,
		ViewerID:       viewer,
	}

	result, err := postService.ListPosts(c.Request.Context(), opts)
	if err != nil {
		if errors.Is(err, services.ErrSearchQueryTooLong) {
			errorResponse(c, http.StatusBadRequest, "Search query is too long", "SEARCH_QUERY_TOO_LONG")
			return
		}
		log.Printf("ListPosts failed: %v", err)
		serverErrorResponse(c)
		return
	}

	middleware.RecordPostListing(result.Meta.PaginationMode, result.Meta.IsFallback)

	c.Header("Cache-Control", CachePolicy(viewer != nil, opts.Filter != "", strings.TrimSpace(opts.Search) != ""))
	paginatedResponse(c, result.Posts, result.Pagination, result.Meta)
}

type createPostRequest struct {
	Type        string   `json:"type" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
}

// CreatePost - POST /api/posts
func CreatePost(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request", "")
		return
	}

	post, err := postService.CreatePost(c.Request.Context(), *viewer, services.CreatePostInput{
		Type:        req.Type,
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Tags:        req.Tags,
	})
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	successResponse(c, http.StatusCreated, post)
}

// GetPost - GET /api/posts/:id
func GetPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid post ID", "")
		return
	}

	post, err := postService.GetPost(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			errorResponse(c, http.StatusNotFound, "Post not found", "")
			return
		}
		log.Printf("GetPost failed: %v", err)
		serverErrorResponse(c)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	successResponse(c, http.StatusOK, post)
}

// DeletePost - DELETE /api/posts/:id (author only)
func DeletePost(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid post ID", "")
		return
	}

	err = postService.DeletePost(c.Request.Context(), *viewer, postID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, services.ErrNotPostAuthor):
			errorResponse(c, http.StatusForbidden, "Forbidden", "")
		default:
			log.Printf("DeletePost failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusOK, gin.H{"deleted": true})
}

// GetQueueStats - GET /api/queue/stats, pending notification fan-out depth
func GetQueueStats(c *gin.Context) {
	if services.QueueServiceInstance == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Queue not available", "")
		return
	}

	length, err := services.QueueServiceInstance.GetQueueStats(c.Request.Context())
	if err != nil {
		log.Printf("GetQueueStats failed: %v", err)
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"queueLength": length, "workers": services.QUEUE_WORKER_COUNT})
}
