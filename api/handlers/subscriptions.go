package handlers

import (
	"errors"
	"log"
	"net/http"

	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

var subscriptionService = services.NewSubscriptionService()

type subscriptionRequest struct {
	Category string `json:"category" binding:"required"`
}

// Subscribe - POST /api/subscriptions
func Subscribe(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request", "")
		return
	}

	err := subscriptionService.Subscribe(c.Request.Context(), *viewer, req.Category)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownCategory):
			errorResponse(c, http.StatusNotFound, "Unknown category", "")
		case errors.Is(err, services.ErrAlreadySubscribed):
			errorResponse(c, http.StatusBadRequest, "Already subscribed", "")
		default:
			log.Printf("Subscribe failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusOK, gin.H{"subscribed": true})
}

// Unsubscribe - DELETE /api/subscriptions/:slug
func Unsubscribe(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	err := subscriptionService.Unsubscribe(c.Request.Context(), *viewer, c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownCategory):
			errorResponse(c, http.StatusNotFound, "Unknown category", "")
		case errors.Is(err, services.ErrNotSubscribed):
			errorResponse(c, http.StatusBadRequest, "Not subscribed", "")
		default:
			log.Printf("Unsubscribe failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusOK, gin.H{"subscribed": false})
}

// ListSubscriptions - GET /api/subscriptions
func ListSubscriptions(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	slugs, err := subscriptionService.SubscribedSlugs(c.Request.Context(), *viewer)
	if err != nil {
		log.Printf("ListSubscriptions failed: %v", err)
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"categories": slugs})
}
