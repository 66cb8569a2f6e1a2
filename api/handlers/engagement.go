package handlers

import (
	"errors"
	"log"
	"net/http"

	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

var engagementService = services.NewEngagementService()

// ToggleLike - POST /api/posts/:id/like
func ToggleLike(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	liked, likes, err := engagementService.ToggleLike(c.Request.Context(), *viewer, postID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			errorResponse(c, http.StatusNotFound, "Post not found", "")
			return
		}
		log.Printf("ToggleLike failed: %v", err)
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"liked": liked, "likes": likes})
}

// ToggleBookmark - POST /api/posts/:id/bookmark
func ToggleBookmark(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	bookmarked, err := engagementService.ToggleBookmark(c.Request.Context(), *viewer, postID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			errorResponse(c, http.StatusNotFound, "Post not found", "")
			return
		}
		log.Printf("ToggleBookmark failed: %v", err)
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"bookmarked": bookmarked})
}
