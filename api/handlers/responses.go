package handlers

import (
	"net/http"

	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

func successResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func errorResponse(c *gin.Context, status int, message, code string) {
	body := gin.H{
		"success": false,
		"error":   message,
	}
	if code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}

func serverErrorResponse(c *gin.Context) {
	errorResponse(c, http.StatusInternalServerError, "Internal server error", "")
}

func paginatedResponse(c *gin.Context, data interface{}, pagination services.Pagination, meta services.ListMeta) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination,
		"meta":       meta,
	})
}
