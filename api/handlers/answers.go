package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

var answerService = services.NewAnswerService()

type createAnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

type createCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	AnswerID *int64 `json:"answerId"`
	ParentID *int64 `json:"parentId"`
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid "+name, "")
		return 0, false
	}
	return id, true
}

// CreateAnswer - POST /api/posts/:id/answers
func CreateAnswer(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request", "")
		return
	}

	answer, err := answerService.CreateAnswer(c.Request.Context(), *viewer, postID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, services.ErrNotQuestionPost):
			errorResponse(c, http.StatusBadRequest, "Only questions accept answers", "NOT_A_QUESTION")
		default:
			log.Printf("CreateAnswer failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusCreated, answer)
}

// CreateComment - POST /api/posts/:id/comments
func CreateComment(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request", "")
		return
	}

	comment, err := answerService.CreateComment(c.Request.Context(), *viewer, postID, req.AnswerID, req.ParentID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, services.ErrAnswerNotFound):
			errorResponse(c, http.StatusNotFound, "Answer not found", "")
		case errors.Is(err, services.ErrAnswerPostsDiffer):
			errorResponse(c, http.StatusBadRequest, "Answer does not belong to this post", "")
		default:
			log.Printf("CreateComment failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusCreated, comment)
}

// AdoptAnswer - POST /api/posts/:id/answers/:answerId/adopt
func AdoptAnswer(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		errorResponse(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	answerID, ok := pathID(c, "answerId")
	if !ok {
		return
	}

	err := answerService.AdoptAnswer(c.Request.Context(), *viewer, postID, answerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, services.ErrAnswerNotFound):
			errorResponse(c, http.StatusNotFound, "Answer not found", "")
		case errors.Is(err, services.ErrNotPostAuthor):
			errorResponse(c, http.StatusForbidden, "Only the author can adopt an answer", "")
		case errors.Is(err, services.ErrAnswerPostsDiffer):
			errorResponse(c, http.StatusBadRequest, "Answer does not belong to this post", "")
		default:
			log.Printf("AdoptAnswer failed: %v", err)
			serverErrorResponse(c)
		}
		return
	}

	successResponse(c, http.StatusOK, gin.H{"adopted": true})
}
