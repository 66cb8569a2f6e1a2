package handlers

import (
	"errors"
	"log"
	"net/http"

	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

var followService = services.NewFollowService()

// Follow - POST /api/follows/:id
func Follow(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := followService.Follow(c.Request.Context(), *viewer, targetID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFollow):
			errorResponse(c, http.StatusBadRequest, "Cannot follow yourself", "")
		case errors.Is(err, services.ErrAlreadyFollowing):
			errorResponse(c, http.StatusBadRequest, "Already following", "")
		case errors.Is(err, services.ErrUserNotFound):
			errorResponse(c, http.StatusNotFound, "User not found", "")
		default:
			log.Printf("Follow failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusOK, gin.H{"following": true})
}

// Unfollow - DELETE /api/follows/:id
func Unfollow(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := followService.Unfollow(c.Request.Context(), *viewer, targetID)
	if err != nil {
		if errors.Is(err, services.ErrNotFollowing) {
			errorResponse(c, http.StatusBadRequest, "Not following", "")
			return
		}
		log.Printf("Unfollow failed: %v", err)
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"following": false})
}

// ListFollowing - GET /api/follows
func ListFollowing(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	users, err := followService.Following(c.Request.Context(), *viewer)
	if err != nil {
		log.Printf("ListFollowing failed: %v", err)
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, users)
}
