package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"vkconnect/db"
	"vkconnect/models"
	"vkconnect/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupPostsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, db.ConnectSQLite(dsn))

	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Test auth shortcut, same as production OptionalAuth but header-only
	r.Use(func(c *gin.Context) {
		if header := c.GetHeader("X-User-ID"); header != "" {
			if id, err := strconv.ParseInt(header, 10, 64); err == nil {
				c.Set("user_id", id)
			}
		}
		c.Next()
	})

	r.GET("/api/posts", ListPosts)
	r.GET("/api/posts/:id", GetPost)
	return r
}

type listEnvelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
	Meta struct {
		NextCursor     *string `json:"nextCursor"`
		HasMore        bool    `json:"hasMore"`
		PaginationMode string  `json:"paginationMode"`
		IsFallback     bool    `json:"isFallback"`
		Reason         string  `json:"reason"`
	} `json:"meta"`
}

func seedHandlerPost(t *testing.T, authorID int64, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:  authorID,
		Type:      models.PostTypeQuestion,
		Title:     title,
		Content:   "<p>handler fixture</p>",
		Category:  "life",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.ORM.Create(post).Error)
	return post
}

func seedHandlerUser(t *testing.T, nickname string) *models.User {
	t.Helper()
	user := &models.User{Nickname: nickname, Name: "Test User", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func TestListPostsEnvelope(t *testing.T) {
	router := setupPostsRouter(t)
	author := seedHandlerUser(t, "envelope_author")
	seedHandlerPost(t, author.ID, "First question")
	seedHandlerPost(t, author.ID, "Second question")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?limit=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.Equal(t, 1, envelope.Pagination.Page)
	require.Equal(t, 1, envelope.Pagination.Limit)
	require.Equal(t, int64(2), envelope.Pagination.Total)
	require.Equal(t, 2, envelope.Pagination.TotalPages)
	require.Equal(t, "offset", envelope.Meta.PaginationMode)
	require.True(t, envelope.Meta.HasMore)
	require.NotNil(t, envelope.Meta.NextCursor)

	var posts []models.DecoratedPost
	require.NoError(t, json.Unmarshal(envelope.Data, &posts))
	require.Len(t, posts, 1)
}

func TestListPostsLimitParam(t *testing.T) {
	router := setupPostsRouter(t)
	author := seedHandlerUser(t, "limit_author")
	seedHandlerPost(t, author.ID, "First question")
	seedHandlerPost(t, author.ID, "Second question")

	// Absent limit falls back to the default page size
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, services.DefaultPageLimit, envelope.Pagination.Limit)

	// An explicit zero is clamped up to one, not defaulted
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?limit=0", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 1, envelope.Pagination.Limit)
	require.Equal(t, int64(2), envelope.Pagination.Total)

	var posts []models.DecoratedPost
	require.NoError(t, json.Unmarshal(envelope.Data, &posts))
	require.Len(t, posts, 1)
}

func TestListPostsSearchTooLongCode(t *testing.T) {
	router := setupPostsRouter(t)

	long := strings.Repeat("a", 120)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?search="+long, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "SEARCH_QUERY_TOO_LONG", body["code"])
}

func TestListPostsCacheHeaders(t *testing.T) {
	router := setupPostsRouter(t)
	author := seedHandlerUser(t, "cache_author")
	seedHandlerPost(t, author.ID, "Cached question")

	// Anonymous unfiltered listings are publicly cacheable
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, "public, s-maxage=60, stale-while-revalidate=300", w.Header().Get("Cache-Control"))

	// A session makes the response private
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("X-User-ID", strconv.FormatInt(author.ID, 10))
	router.ServeHTTP(w, req)
	require.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	// So does a search, even without a session
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?search=question", nil))
	require.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	// And a scope filter
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?filter=following", nil))
	require.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
}

func TestListPostsEmptyFollowingScope(t *testing.T) {
	router := setupPostsRouter(t)
	author := seedHandlerUser(t, "scope_author")
	viewer := seedHandlerUser(t, "scope_viewer")
	seedHandlerPost(t, author.ID, "Out of scope")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?filter=following", nil)
	req.Header.Set("X-User-ID", strconv.FormatInt(viewer.ID, 10))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.Equal(t, int64(0), envelope.Pagination.Total)

	var posts []models.DecoratedPost
	require.NoError(t, json.Unmarshal(envelope.Data, &posts))
	require.Empty(t, posts)
}

func TestListPostsFallbackMeta(t *testing.T) {
	router := setupPostsRouter(t)
	author := seedHandlerUser(t, "fallback_author")
	seedHandlerPost(t, author.ID, "Popular question")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts?search=zzqqxx", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Meta.IsFallback)
	require.Equal(t, "no_matches", envelope.Meta.Reason)

	var posts []models.DecoratedPost
	require.NoError(t, json.Unmarshal(envelope.Data, &posts))
	require.Len(t, posts, 1)
}

func TestGetPostHandler(t *testing.T) {
	router := setupPostsRouter(t)
	author := seedHandlerUser(t, "get_author")
	post := seedHandlerPost(t, author.ID, "Single question")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                 `json:"success"`
		Data    models.DecoratedPost `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, post.ID, body.Data.ID)
	require.Equal(t, "Single question", body.Data.Title)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/999999", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/not-a-number", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
