package handlers

import (
	"errors"
	"net/http"
	"strings"

	"vkconnect/models"
	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

var userService = services.NewUserService()

type RegisterRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

type LoginRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request", "")
		return
	}

	newUser := models.User{
		Nickname: req.Nickname,
		Name:     req.Name,
		Password: req.Password,
		Language: req.Language,
	}
	if newUser.Language == "" {
		newUser.Language = "vi"
	}

	userID, err := userService.Register(c.Request.Context(), &newUser)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			errorResponse(c, http.StatusBadRequest, "User already exists", "USER_EXISTS")
			return
		}
		errorResponse(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	successResponse(c, http.StatusCreated, gin.H{"userId": userID})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request", "")
		return
	}

	token, user, err := userService.Login(c.Request.Context(), req.Nickname, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			errorResponse(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
			return
		}
		serverErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, gin.H{
		"token":    token,
		"userId":   user.ID,
		"nickname": user.Nickname,
	})
}

func Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := userService.Logout(c.Request.Context(), token); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid token", "")
		return
	}
	successResponse(c, http.StatusOK, gin.H{"loggedOut": true})
}
